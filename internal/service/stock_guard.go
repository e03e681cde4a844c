package service

import (
	"context"

	"sushishop/internal/apperror"
	"sushishop/internal/model"
)

// adminStockService gates every ledger write behind the administrator role.
// Reads are delegated unchanged through the embedded service.
type adminStockService struct {
	StockService
}

func NewAdminStockService(inner StockService) StockService {
	return &adminStockService{StockService: inner}
}

func requireAdmin(actor *model.Actor) error {
	if actor == nil {
		return apperror.Unauthenticated("Необходима авторизация")
	}
	if !actor.IsAdmin() {
		return apperror.Forbidden("Недостаточно прав")
	}
	return nil
}

func (s *adminStockService) RecordIntake(ctx context.Context, actor *model.Actor, req IntakeRequest) (*model.StockItem, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.StockService.RecordIntake(ctx, actor, req)
}

func (s *adminStockService) AdjustStockItem(ctx context.Context, actor *model.Actor, id string, req AdjustRequest) (*model.StockItem, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.StockService.AdjustStockItem(ctx, actor, id, req)
}

func (s *adminStockService) DeleteStockItem(ctx context.Context, actor *model.Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.StockService.DeleteStockItem(ctx, actor, id)
}
