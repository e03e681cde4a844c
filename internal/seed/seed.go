// Package seed fills an empty database with the ingredient catalogue, the
// starter menu and an administrator account. Every step is safe to re-run.
package seed

import (
	"context"
	"fmt"
	"strings"

	"sushishop/internal/model"
	"sushishop/internal/repository"
	"sushishop/internal/service"

	"github.com/rs/zerolog"
)

type ingredientSeed struct {
	name     string
	category string
	unit     string
	minStock float64
	price    float64
}

var ingredients = []ingredientSeed{
	{"Лосось", model.CategoryFish, "кг", 5, 800},
	{"Тунец", model.CategoryFish, "кг", 3, 1200},
	{"Угорь", model.CategoryFish, "кг", 2, 1500},

	{"Креветки", model.CategorySeafood, "кг", 3, 600},
	{"Краб (снежный)", model.CategorySeafood, "кг", 2, 2000},
	{"Икра (масаго)", model.CategorySeafood, "кг", 0.5, 1800},
	{"Икра (тобико)", model.CategorySeafood, "кг", 0.5, 2200},

	{"Рис для суши", model.CategoryRice, "кг", 20, 150},
	{"Рисовый уксус", model.CategoryRice, "л", 5, 300},

	{"Авокадо", model.CategoryVegetables, "кг", 5, 400},
	{"Огурец", model.CategoryVegetables, "кг", 10, 80},
	{"Манго", model.CategoryVegetables, "кг", 2, 500},

	{"Нори (листы)", model.CategorySeaweed, "упак", 50, 30},
	{"Чука салат", model.CategorySeaweed, "кг", 2, 600},

	{"Соевый соус", model.CategorySauces, "л", 5, 200},
	{"Соус Унаги", model.CategorySauces, "л", 3, 450},
	{"Соус Спайси", model.CategorySauces, "л", 3, 350},
	{"Васаби", model.CategorySauces, "кг", 1, 800},

	{"Сыр Филадельфия", model.CategoryCheese, "кг", 5, 500},
	{"Сливочный сыр", model.CategoryCheese, "кг", 3, 400},

	{"Имбирь маринованный", model.CategorySeasonings, "кг", 3, 300},
	{"Кунжут белый", model.CategorySeasonings, "кг", 2, 250},
	{"Кунжут черный", model.CategorySeasonings, "кг", 1, 300},

	{"Коробка для роллов", model.CategoryPackaging, "шт", 100, 15},
	{"Палочки для еды", model.CategoryPackaging, "пара", 200, 3},
	{"Контейнер для соусов", model.CategoryPackaging, "шт", 200, 2},
}

type productSeed struct {
	name, description, category, weight string
	price                               float64
}

var menu = []productSeed{
	{"Филадельфия Классик", "Лосось, сливочный сыр, огурец", "Классические роллы", "250г", 320},
	{"Калифорния", "Краб, авокадо, огурец, икра тобико", "Классические роллы", "230г", 280},
	{"Дракон", "Угорь, огурец, унаги соус", "Классические роллы", "260г", 380},
	{"Спайси Тунец", "Тунец, спайси соус, зеленый лук", "Классические роллы", "240г", 340},
	{"Запеченная Филадельфия", "Лосось, сливочный сыр, запеченный с соусом", "Запеченные роллы", "280г", 390},
	{"Запеченный Краб", "Краб, авокадо, запеченный с сыром", "Запеченные роллы", "270г", 350},
	{"Суши Лосось", "Классические суши с лососем", "Суши", "30г", 80},
	{"Суши Тунец", "Классические суши с тунцом", "Суши", "30г", 90},
	{"Суши Угорь", "Классические суши с угрем", "Суши", "30г", 95},
	{"Сет Классический", "Филадельфия, Калифорния, Дракон", "Сеты", "750г", 890},
	{"Сет Большой", "6 видов роллов для большой компании", "Сеты", "1.5кг", 1590},
}

var categories = []string{"Классические роллы", "Запеченные роллы", "Сеты", "Суши", "Горячие блюда"}

// Admin is the bootstrap administrator; an empty password skips it
type Admin struct {
	Name     string
	Email    string
	Password string
}

type Seeder struct {
	ingredients repository.IngredientRepository
	products    repository.ProductRepository
	users       repository.UserRepository
}

func New(
	ingredients repository.IngredientRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
) *Seeder {
	return &Seeder{ingredients: ingredients, products: products, users: users}
}

func (s *Seeder) Run(ctx context.Context, admin Admin) error {
	if err := s.Ingredients(ctx); err != nil {
		return err
	}
	if err := s.Menu(ctx); err != nil {
		return err
	}
	return s.Admin(ctx, admin)
}

// Ingredients inserts the catalogue by name with zero stock; existing rows are left untouched
func (s *Seeder) Ingredients(ctx context.Context) error {
	for _, seed := range ingredients {
		err := s.ingredients.CreateIfAbsent(ctx, &model.Ingredient{
			Name:          seed.name,
			Category:      seed.category,
			Unit:          seed.unit,
			MinStock:      seed.minStock,
			PurchasePrice: seed.price,
		})
		if err != nil {
			return fmt.Errorf("failed to seed ingredient %q: %w", seed.name, err)
		}
	}
	zerolog.Ctx(ctx).Info().Int("count", len(ingredients)).Msg("ingredients seeded")
	return nil
}

// Menu creates the categories and, on an empty menu only, the starter products
func (s *Seeder) Menu(ctx context.Context) error {
	ids := make(map[string]*model.Category, len(categories))
	for _, name := range categories {
		c, err := s.products.EnsureCategory(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", name, err)
		}
		ids[name] = c
	}

	existing, err := s.products.List(ctx, repository.ProductFilter{})
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, p := range menu {
		err := s.products.Create(ctx, &model.Product{
			Name:        p.name,
			Description: p.description,
			Price:       p.price,
			Weight:      p.weight,
			Available:   true,
			CategoryID:  ids[p.category].ID,
		})
		if err != nil {
			return fmt.Errorf("failed to seed product %q: %w", p.name, err)
		}
	}
	zerolog.Ctx(ctx).Info().Int("count", len(menu)).Msg("menu seeded")
	return nil
}

// Admin creates the administrator unless the email is already registered
func (s *Seeder) Admin(ctx context.Context, admin Admin) error {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		zerolog.Ctx(ctx).Warn().Msg("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin account")
		return nil
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !repository.IsNotFound(err) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := service.HashPassword(admin.Password)
	if err != nil {
		return err
	}
	name := admin.Name
	if name == "" {
		name = "Администратор"
	}
	if err := s.users.Create(ctx, &model.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     model.RoleAdmin,
	}); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	zerolog.Ctx(ctx).Info().Str("email", email).Msg("admin account created")
	return nil
}
