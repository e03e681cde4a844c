package repository

import (
	"context"

	"sushishop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows the menu listing
type ProductFilter struct {
	CategoryID    *uuid.UUID
	OnlyAvailable bool
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	EnsureCategory(ctx context.Context, name string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(product).Error
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	var products []model.Product

	db := GetDB(ctx, r.db).Model(&model.Product{}).Preload("Category")
	if filter.CategoryID != nil {
		db = db.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.OnlyAvailable {
		db = db.Where("available = ?", true)
	}

	err := db.Order("name asc").Find(&products).Error
	return products, err
}

func (r *productRepository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := GetDB(ctx, r.db).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// EnsureCategory returns the category with the given name, creating it if needed.
func (r *productRepository) EnsureCategory(ctx context.Context, name string) (*model.Category, error) {
	category := model.Category{Name: name}
	db := GetDB(ctx, r.db)
	if err := db.Where(model.Category{Name: name}).FirstOrCreate(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *productRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := GetDB(ctx, r.db).Order("name asc").Find(&categories).Error
	return categories, err
}
