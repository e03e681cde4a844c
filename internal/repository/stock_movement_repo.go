package repository

import (
	"context"

	"sushishop/internal/model"

	"gorm.io/gorm"
)

const (
	DefaultMovementLimit = 100
	MaxMovementLimit     = 500
)

// MovementFilter narrows the movement log listing
type MovementFilter struct {
	Type           string
	IngredientName string
	Limit          int
}

// StockMovementRepository is append-only: there is deliberately no Update or Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *model.StockMovement) error
	List(ctx context.Context, filter MovementFilter) ([]model.StockMovement, error)
}

type stockMovementRepository struct {
	db *gorm.DB
}

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) Create(ctx context.Context, movement *model.StockMovement) error {
	return GetDB(ctx, r.db).Create(movement).Error
}

// List returns the most recent movements first.
func (r *stockMovementRepository) List(ctx context.Context, filter MovementFilter) ([]model.StockMovement, error) {
	limit := filter.Limit
	if limit < 1 {
		limit = DefaultMovementLimit
	}
	if limit > MaxMovementLimit {
		limit = MaxMovementLimit
	}

	db := GetDB(ctx, r.db).Model(&model.StockMovement{})
	if filter.Type != "" {
		db = db.Where("type = ?", filter.Type)
	}
	if filter.IngredientName != "" {
		db = db.Where("ingredient_name = ?", filter.IngredientName)
	}

	var movements []model.StockMovement
	err := db.Order("created_at desc").Limit(limit).Find(&movements).Error
	return movements, err
}
