package repository

import (
	"context"
	"strings"

	"sushishop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IngredientRepository interface {
	CreateIfAbsent(ctx context.Context, ingredient *model.Ingredient) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Ingredient, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Ingredient, error)
	FindByNameForUpdate(ctx context.Context, name string) (*model.Ingredient, error)
	UpdateAggregate(ctx context.Context, id uuid.UUID, currentStock, purchasePrice float64) error
	ListWithStockItems(ctx context.Context, search string) ([]model.Ingredient, error)
	ListLowStock(ctx context.Context) ([]model.Ingredient, error)
}

type ingredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

// CreateIfAbsent inserts the ingredient unless one with the same name exists.
// The caller must re-read by name: on conflict the struct is not populated from the row.
func (r *ingredientRepository) CreateIfAbsent(ctx context.Context, ingredient *model.Ingredient) error {
	return GetDB(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(ingredient).Error
}

func (r *ingredientRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	if err := GetDB(ctx, r.db).First(&ingredient, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&ingredient).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) FindByNameForUpdate(ctx context.Context, name string) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).First(&ingredient).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) UpdateAggregate(ctx context.Context, id uuid.UUID, currentStock, purchasePrice float64) error {
	res := GetDB(ctx, r.db).Model(&model.Ingredient{}).Where("id = ?", id).Updates(map[string]interface{}{
		"current_stock":  currentStock,
		"purchase_price": purchasePrice,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ingredientRepository) ListWithStockItems(ctx context.Context, search string) ([]model.Ingredient, error) {
	var ingredients []model.Ingredient

	db := GetDB(ctx, r.db).Model(&model.Ingredient{})
	if search = strings.TrimSpace(search); search != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	err := db.Preload("StockItems", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("received_date desc")
	}).Order("updated_at desc").Find(&ingredients).Error
	return ingredients, err
}

func (r *ingredientRepository) ListLowStock(ctx context.Context) ([]model.Ingredient, error) {
	var ingredients []model.Ingredient
	err := GetDB(ctx, r.db).
		Where("current_stock <= min_stock").
		Order("category asc, name asc").
		Find(&ingredients).Error
	return ingredients, err
}
