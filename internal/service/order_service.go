package service

import (
	"context"
	"fmt"
	"strings"

	"sushishop/internal/apperror"
	"sushishop/internal/model"
	"sushishop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type CheckoutItem struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"min=1,max=99"`
}

type CheckoutRequest struct {
	Items           []CheckoutItem `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress string         `json:"delivery_address" validate:"required"`
	Phone           string         `json:"phone" validate:"required,max=20"`
	Notes           string         `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderResponse struct {
	model.Order
	StatusLabel string `json:"status_label"`
}

type OrderService interface {
	Checkout(ctx context.Context, actor *model.Actor, req CheckoutRequest) (*OrderResponse, error)
	ListOwnOrders(ctx context.Context, actor *model.Actor, page, limit int) ([]OrderResponse, int64, error)
	ListOrders(ctx context.Context, status string, page, limit int) ([]OrderResponse, int64, error)
	UpdateStatus(ctx context.Context, actor *model.Actor, id string, status string) (*OrderResponse, error)
}

type orderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	txManager repository.TransactionManager
	audit     AuditRecorder
	stats     StatisticsService
	notifier  Notifier
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	txManager repository.TransactionManager,
	audit AuditRecorder,
	stats StatisticsService,
	notifier Notifier,
) OrderService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &orderService{
		orders:    orders,
		products:  products,
		txManager: txManager,
		audit:     audit,
		stats:     stats,
		notifier:  notifier,
	}
}

func toOrderResponse(o model.Order) OrderResponse {
	return OrderResponse{Order: o, StatusLabel: model.OrderStatusLabel(o.Status)}
}

// Checkout prices every line from the current menu; client-side prices are never trusted.
func (s *orderService) Checkout(ctx context.Context, actor *model.Actor, req CheckoutRequest) (*OrderResponse, error) {
	if actor == nil {
		return nil, apperror.Unauthenticated("Необходима авторизация")
	}

	quantities := make(map[uuid.UUID]int, len(req.Items))
	ids := make([]uuid.UUID, 0, len(req.Items))
	for i, item := range req.Items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil || item.Quantity < 1 {
			return nil, apperror.Validation(map[string]string{
				fmt.Sprintf("items[%d]", i): "Некорректная позиция заказа",
			})
		}
		if _, seen := quantities[id]; !seen {
			ids = append(ids, id)
		}
		quantities[id] += item.Quantity
	}

	order := model.Order{
		UserID:          actor.UserID,
		Status:          model.OrderStatusPending,
		DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
		Phone:           strings.TrimSpace(req.Phone),
		Notes:           strings.TrimSpace(req.Notes),
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		products, err := s.products.FindByIDs(txCtx, ids)
		if err != nil {
			return fmt.Errorf("failed to load products: %w", err)
		}
		byID := make(map[uuid.UUID]model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		total := decimal.Zero
		for _, id := range ids {
			p, ok := byID[id]
			if !ok || !p.Available {
				return apperror.Validation(map[string]string{"items": "Товар недоступен для заказа"})
			}
			qty := quantities[id]
			order.Items = append(order.Items, model.OrderItem{
				ProductID: p.ID,
				Quantity:  qty,
				Price:     p.Price,
			})
			total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(qty))))
		}
		order.Total, _ = total.Round(2).Float64()

		if err := s.orders.Create(txCtx, &order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("order_id", order.ID.String()).
		Float64("total", order.Total).
		Msg("order placed")

	s.stats.Invalidate(ctx)
	s.notifier.Publish("order.created", map[string]interface{}{
		"order_id": order.ID.String(),
		"total":    order.Total,
	})

	res := toOrderResponse(order)
	return &res, nil
}

func (s *orderService) ListOwnOrders(ctx context.Context, actor *model.Actor, page, limit int) ([]OrderResponse, int64, error) {
	if actor == nil {
		return nil, 0, apperror.Unauthenticated("Необходима авторизация")
	}
	uid := actor.UserID
	return s.list(ctx, repository.OrderFilter{UserID: &uid, Page: page, Limit: limit})
}

func (s *orderService) ListOrders(ctx context.Context, status string, page, limit int) ([]OrderResponse, int64, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != "" && !model.IsValidOrderStatus(status) {
		return nil, 0, apperror.Validation(map[string]string{"status": "Неизвестный статус заказа"})
	}
	return s.list(ctx, repository.OrderFilter{Status: status, Page: page, Limit: limit})
}

func (s *orderService) list(ctx context.Context, filter repository.OrderFilter) ([]OrderResponse, int64, error) {
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	res := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		res = append(res, toOrderResponse(o))
	}
	return res, total, nil
}

// UpdateStatus sets any status from the fixed set; transitions are not restricted.
func (s *orderService) UpdateStatus(ctx context.Context, actor *model.Actor, id string, status string) (*OrderResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	orderID, err := parseID(id, "Заказ не найден")
	if err != nil {
		return nil, err
	}
	status = strings.ToUpper(strings.TrimSpace(status))
	if !model.IsValidOrderStatus(status) {
		return nil, apperror.Validation(map[string]string{"status": "Неизвестный статус заказа"})
	}

	var order *model.Order
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err = s.orders.FindByID(txCtx, orderID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperror.NotFound("Заказ не найден")
			}
			return fmt.Errorf("failed to load order: %w", err)
		}
		previous := order.Status

		if err := s.orders.UpdateStatus(txCtx, orderID, status); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		order.Status = status

		return s.audit.Record(txCtx, AuditEntry{
			ActorID:  &actor.UserID,
			Action:   model.ActionUpdateOrderStatus,
			EntityID: order.ID.String(),
			Details:  map[string]string{"from": previous, "to": status},
		})
	})
	if err != nil {
		return nil, err
	}

	s.stats.Invalidate(ctx)
	s.notifier.Publish("order.status", map[string]string{
		"order_id": order.ID.String(),
		"status":   status,
	})

	res := toOrderResponse(*order)
	return &res, nil
}
