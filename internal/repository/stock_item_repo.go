package repository

import (
	"context"

	"sushishop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockItemRepository interface {
	Create(ctx context.Context, item *model.StockItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockItem, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StockItem, error)
	Update(ctx context.Context, item *model.StockItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type stockItemRepository struct {
	db *gorm.DB
}

func NewStockItemRepository(db *gorm.DB) StockItemRepository {
	return &stockItemRepository{db: db}
}

func (r *stockItemRepository) Create(ctx context.Context, item *model.StockItem) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(item).Error
}

func (r *stockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.StockItem, error) {
	var item model.StockItem
	if err := GetDB(ctx, r.db).Preload("Ingredient").First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *stockItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StockItem, error) {
	var item model.StockItem
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update writes every column of the batch, including cleared optional fields.
func (r *stockItemRepository) Update(ctx context.Context, item *model.StockItem) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(item).Error
}

func (r *stockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.StockItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
