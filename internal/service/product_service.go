package service

import (
	"context"
	"fmt"
	"strings"

	"sushishop/internal/apperror"
	"sushishop/internal/model"
	"sushishop/internal/repository"

	"github.com/google/uuid"
)

type ProductRequest struct {
	Name         string  `json:"name" validate:"required,max=255"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" validate:"gt=0"`
	Weight       string  `json:"weight" validate:"max=50"`
	ImageURL     string  `json:"image_url" validate:"omitempty,url,max=500"`
	Available    *bool   `json:"available"`
	CategoryID   string  `json:"category_id" validate:"omitempty,uuid"`
	CategoryName string  `json:"category_name" validate:"max=100"`
}

type ProductService interface {
	ListMenu(ctx context.Context, categoryID string) ([]model.Product, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateProduct(ctx context.Context, actor *model.Actor, req ProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, actor *model.Actor, id string, req ProductRequest) (*model.Product, error)
}

type productService struct {
	repo      repository.ProductRepository
	txManager repository.TransactionManager
	audit     AuditRecorder
	stats     StatisticsService
}

func NewProductService(
	repo repository.ProductRepository,
	txManager repository.TransactionManager,
	audit AuditRecorder,
	stats StatisticsService,
) ProductService {
	return &productService{repo: repo, txManager: txManager, audit: audit, stats: stats}
}

// ListMenu returns the storefront menu: available products only.
func (s *productService) ListMenu(ctx context.Context, categoryID string) ([]model.Product, error) {
	filter := repository.ProductFilter{OnlyAvailable: true}
	if categoryID != "" {
		id, err := uuid.Parse(categoryID)
		if err != nil {
			return nil, apperror.Validation(map[string]string{"category_id": "Некорректная категория"})
		}
		filter.CategoryID = &id
	}

	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *productService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *productService) CreateProduct(ctx context.Context, actor *model.Actor, req ProductRequest) (*model.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	product := model.Product{Available: true}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.applyProduct(txCtx, &product, req); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, &product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return s.audit.Record(txCtx, AuditEntry{
			ActorID:    &actor.UserID,
			Action:     model.ActionCreateProduct,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
			Details:    req,
		})
	})
	if err != nil {
		return nil, err
	}

	s.stats.Invalidate(ctx)
	return &product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, actor *model.Actor, id string, req ProductRequest) (*model.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	productID, err := parseID(id, "Товар не найден")
	if err != nil {
		return nil, err
	}

	var product *model.Product
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err = s.repo.FindByID(txCtx, productID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperror.NotFound("Товар не найден")
			}
			return fmt.Errorf("failed to load product: %w", err)
		}
		if err := s.applyProduct(txCtx, product, req); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return s.audit.Record(txCtx, AuditEntry{
			ActorID:    &actor.UserID,
			Action:     model.ActionUpdateProduct,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
			Details:    req,
		})
	})
	if err != nil {
		return nil, err
	}

	s.stats.Invalidate(ctx)
	return product, nil
}

// applyProduct copies the request onto product, resolving the category by id or by name.
func (s *productService) applyProduct(ctx context.Context, product *model.Product, req ProductRequest) error {
	product.Name = strings.TrimSpace(req.Name)
	product.Description = strings.TrimSpace(req.Description)
	product.Price = req.Price
	product.Weight = strings.TrimSpace(req.Weight)
	product.ImageURL = strings.TrimSpace(req.ImageURL)
	if req.Available != nil {
		product.Available = *req.Available
	}

	switch {
	case req.CategoryID != "":
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return apperror.Validation(map[string]string{"category_id": "Некорректная категория"})
		}
		category, err := s.repo.FindCategoryByID(ctx, categoryID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperror.Validation(map[string]string{"category_id": "Категория не найдена"})
			}
			return fmt.Errorf("failed to load category: %w", err)
		}
		product.CategoryID = category.ID
		product.Category = category
	case strings.TrimSpace(req.CategoryName) != "":
		category, err := s.repo.EnsureCategory(ctx, strings.TrimSpace(req.CategoryName))
		if err != nil {
			return fmt.Errorf("failed to resolve category: %w", err)
		}
		product.CategoryID = category.ID
		product.Category = category
	case product.CategoryID == uuid.Nil:
		return apperror.Validation(map[string]string{"category_id": "Укажите категорию"})
	}
	return nil
}
