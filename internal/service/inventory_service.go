package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sushishop/internal/apperror"
	"sushishop/internal/ledger"
	"sushishop/internal/metrics"
	"sushishop/internal/model"
	"sushishop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultUnit = "кг"

// DTOs
type IntakeRequest struct {
	IngredientID          string   `json:"ingredient_id"`
	NewIngredientName     string   `json:"new_ingredient_name" validate:"max=255"`
	NewIngredientCategory string   `json:"new_ingredient_category"`
	Unit                  string   `json:"unit" validate:"max=20"`
	GrossWeight           *float64 `json:"gross_weight"`
	NetWeight             *float64 `json:"net_weight"`
	PurchasePrice         *float64 `json:"purchase_price"`
	TotalPrice            *float64 `json:"total_price"`
	Supplier              string   `json:"supplier" validate:"max=255"`
	ExpiryDate            string   `json:"expiry_date"`
	ReceivedDate          string   `json:"received_date"`
	Notes                 string   `json:"notes"`
}

// AdjustRequest is a partial update of a batch; nil fields are left untouched.
// An empty ExpiryDate clears the expiry, an empty Supplier or Notes clears that field.
type AdjustRequest struct {
	Quantity       *float64 `json:"quantity"`
	Unit           *string  `json:"unit" validate:"omitempty,max=20"`
	GrossWeight    *float64 `json:"gross_weight"`
	NetWeight      *float64 `json:"net_weight"`
	WastagePercent *float64 `json:"wastage_percent"`
	PurchasePrice  *float64 `json:"purchase_price"`
	TotalPrice     *float64 `json:"total_price"`
	Supplier       *string  `json:"supplier" validate:"omitempty,max=255"`
	ExpiryDate     *string  `json:"expiry_date"`
	ReceivedDate   *string  `json:"received_date"`
	Notes          *string  `json:"notes"`
}

type MovementQuery struct {
	Type           string
	IngredientName string
	Limit          int
}

type IngredientResponse struct {
	model.Ingredient
	CategoryLabel string `json:"category_label"`
	IsLowStock    bool   `json:"is_low_stock"`
}

type MovementResponse struct {
	model.StockMovement
	TypeLabel string `json:"type_label"`
}

// Websocket payload
type StockEvent struct {
	IngredientID   string  `json:"ingredient_id"`
	IngredientName string  `json:"ingredient_name"`
	StockItemID    string  `json:"stock_item_id"`
	CurrentStock   float64 `json:"current_stock"`
	PurchasePrice  float64 `json:"purchase_price"`
}

// StockService is the inventory ledger: batches in, aggregates updated, movements appended.
type StockService interface {
	RecordIntake(ctx context.Context, actor *model.Actor, req IntakeRequest) (*model.StockItem, error)
	AdjustStockItem(ctx context.Context, actor *model.Actor, id string, req AdjustRequest) (*model.StockItem, error)
	DeleteStockItem(ctx context.Context, actor *model.Actor, id string) error
	GetStockItem(ctx context.Context, id string) (*model.StockItem, error)
	ListIngredients(ctx context.Context, search string) ([]IngredientResponse, error)
	ListLowStock(ctx context.Context) ([]IngredientResponse, error)
	ListMovements(ctx context.Context, query MovementQuery) ([]MovementResponse, error)
}

type stockService struct {
	ingredients repository.IngredientRepository
	stockItems  repository.StockItemRepository
	movements   repository.StockMovementRepository
	txManager   repository.TransactionManager
	notifier    Notifier
	now         func() time.Time
}

// NewStockService builds the ledger without an authorization gate; wrap it with
// NewAdminStockService before exposing it to callers.
func NewStockService(
	ingredients repository.IngredientRepository,
	stockItems repository.StockItemRepository,
	movements repository.StockMovementRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) StockService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &stockService{
		ingredients: ingredients,
		stockItems:  stockItems,
		movements:   movements,
		txManager:   txManager,
		notifier:    notifier,
		now:         time.Now,
	}
}

// ingredientSelector is either useExisting or createNew
type ingredientSelector interface {
	selector()
}

type useExisting struct {
	id uuid.UUID
}

type createNew struct {
	name     string
	category string
}

func (useExisting) selector() {}
func (createNew) selector()   {}

// intake is a validated IntakeRequest
type intake struct {
	ingredient ingredientSelector
	unit       string
	gross      float64
	net        float64
	price      float64
	totalPrice *float64
	supplier   *string
	notes      string
	received   time.Time
	expiry     *time.Time
}

func (r IntakeRequest) validate(now time.Time) (*intake, error) {
	fields := make(map[string]string)
	in := &intake{
		unit:  strings.TrimSpace(r.Unit),
		notes: strings.TrimSpace(r.Notes),
	}
	if in.unit == "" {
		in.unit = defaultUnit
	}

	name := strings.TrimSpace(r.NewIngredientName)
	category := strings.ToUpper(strings.TrimSpace(r.NewIngredientCategory))
	switch {
	case name != "" && category != "":
		if !model.IsValidCategory(category) {
			fields["new_ingredient_category"] = "Неизвестная категория ингредиента"
		}
		in.ingredient = createNew{name: name, category: category}
	case strings.TrimSpace(r.IngredientID) != "":
		id, err := uuid.Parse(strings.TrimSpace(r.IngredientID))
		if err != nil {
			fields["ingredient_id"] = "Некорректный идентификатор ингредиента"
		}
		in.ingredient = useExisting{id: id}
	default:
		fields["ingredient_id"] = "Необходимо указать ингредиент"
	}

	requireAmount(fields, "gross_weight", r.GrossWeight, "Укажите вес брутто", &in.gross)
	requireAmount(fields, "net_weight", r.NetWeight, "Укажите вес нетто", &in.net)
	requireAmount(fields, "purchase_price", r.PurchasePrice, "Укажите цену закупки", &in.price)
	if _, bad := fields["net_weight"]; !bad && r.GrossWeight != nil && r.NetWeight != nil && *r.NetWeight > *r.GrossWeight {
		fields["net_weight"] = "Вес нетто не может превышать вес брутто"
	}

	if r.TotalPrice != nil {
		if *r.TotalPrice < 0 {
			fields["total_price"] = "Значение не может быть отрицательным"
		}
		in.totalPrice = r.TotalPrice
	}
	if s := strings.TrimSpace(r.Supplier); s != "" {
		in.supplier = &s
	}

	in.received = now
	if r.ReceivedDate != "" {
		t, err := parseDate(r.ReceivedDate)
		if err != nil {
			fields["received_date"] = "Некорректная дата"
		}
		in.received = t
	}
	if r.ExpiryDate != "" {
		t, err := parseDate(r.ExpiryDate)
		if err != nil {
			fields["expiry_date"] = "Некорректная дата"
		}
		in.expiry = &t
	}

	if len(fields) > 0 {
		return nil, apperror.Validation(fields)
	}
	return in, nil
}

func requireAmount(fields map[string]string, field string, v *float64, missing string, dst *float64) {
	switch {
	case v == nil:
		fields[field] = missing
	case *v < 0:
		fields[field] = "Значение не может быть отрицательным"
	default:
		*dst = *v
	}
}

// parseDate accepts RFC 3339 timestamps and plain calendar dates.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func (s *stockService) RecordIntake(ctx context.Context, actor *model.Actor, req IntakeRequest) (*model.StockItem, error) {
	in, err := req.validate(s.now())
	if err != nil {
		return nil, err
	}

	var (
		item       model.StockItem
		ingredient *model.Ingredient
		movement   *model.StockMovement
	)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		ingredient, err = s.resolveIngredient(txCtx, in)
		if err != nil {
			return err
		}

		wastage := ledger.WastagePercent(in.gross, in.net)
		// Only the processed (net) weight enters stock
		quantity := in.net

		totalPrice := in.totalPrice
		if totalPrice == nil {
			t := ledger.TotalPrice(in.gross, in.price)
			totalPrice = &t
		}
		gross, net, price := in.gross, in.net, in.price
		item = model.StockItem{
			IngredientID:   ingredient.ID,
			Quantity:       quantity,
			Unit:           in.unit,
			GrossWeight:    &gross,
			NetWeight:      &net,
			WastagePercent: wastage,
			PurchasePrice:  &price,
			TotalPrice:     totalPrice,
			Supplier:       in.supplier,
			ReceivedDate:   in.received,
			ExpiryDate:     in.expiry,
			Notes:          optionalString(in.notes),
		}
		if err := s.stockItems.Create(txCtx, &item); err != nil {
			return fmt.Errorf("failed to create stock item: %w", err)
		}

		newStock, newPrice := ledger.MergeStock(ingredient.CurrentStock, ingredient.PurchasePrice, quantity, in.price)
		if err := s.ingredients.UpdateAggregate(txCtx, ingredient.ID, newStock, newPrice); err != nil {
			return fmt.Errorf("failed to update ingredient stock: %w", err)
		}
		ingredient.CurrentStock = newStock
		ingredient.PurchasePrice = newPrice

		movement = newMovement(actor, model.MovementArrival, ingredient.Name, quantity, in.unit)
		movement.Price = &price
		movement.Supplier = in.supplier
		movement.Notes = ledger.ArrivalNotes(in.notes, wastage)
		if err := s.movements.Create(txCtx, movement); err != nil {
			return fmt.Errorf("failed to append stock movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	item.Ingredient = ingredient
	if item.WastagePercent != nil {
		metrics.ObserveWastage(*item.WastagePercent)
	}
	s.committed(ctx, "stock.intake", ingredient, item.ID, movement)
	return &item, nil
}

// resolveIngredient locks the target ingredient row for the rest of the transaction.
func (s *stockService) resolveIngredient(ctx context.Context, in *intake) (*model.Ingredient, error) {
	switch sel := in.ingredient.(type) {
	case useExisting:
		ingredient, err := s.ingredients.FindByIDForUpdate(ctx, sel.id)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, apperror.NotFound("Ингредиент не найден")
			}
			return nil, fmt.Errorf("failed to load ingredient: %w", err)
		}
		return ingredient, nil
	case createNew:
		candidate := &model.Ingredient{
			Name:          sel.name,
			Category:      sel.category,
			Unit:          in.unit,
			CurrentStock:  0,
			PurchasePrice: in.price,
		}
		if err := s.ingredients.CreateIfAbsent(ctx, candidate); err != nil {
			return nil, fmt.Errorf("failed to create ingredient: %w", err)
		}
		ingredient, err := s.ingredients.FindByNameForUpdate(ctx, sel.name)
		if err != nil {
			return nil, fmt.Errorf("failed to load ingredient %q: %w", sel.name, err)
		}
		return ingredient, nil
	default:
		return nil, fmt.Errorf("unknown ingredient selector %T", sel)
	}
}

func (s *stockService) AdjustStockItem(ctx context.Context, actor *model.Actor, id string, req AdjustRequest) (*model.StockItem, error) {
	itemID, err := parseID(id, "Складская позиция не найдена")
	if err != nil {
		return nil, err
	}

	var (
		item       *model.StockItem
		ingredient *model.Ingredient
		movement   *model.StockMovement
	)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, err = s.lockStockItem(txCtx, itemID)
		if err != nil {
			return err
		}
		oldQuantity := item.Quantity

		if err := req.apply(item); err != nil {
			return err
		}
		if err := s.stockItems.Update(txCtx, item); err != nil {
			return fmt.Errorf("failed to update stock item: %w", err)
		}

		ingredient, err = s.ingredients.FindByIDForUpdate(txCtx, item.IngredientID)
		if err != nil {
			return fmt.Errorf("failed to load ingredient: %w", err)
		}

		movementType, delta, changed := ledger.Delta(oldQuantity, item.Quantity)
		if !changed {
			return nil
		}

		newStock, newPrice := ingredient.CurrentStock, ingredient.PurchasePrice
		if movementType == model.MovementArrival {
			batchPrice := ingredient.PurchasePrice
			if item.PurchasePrice != nil {
				batchPrice = *item.PurchasePrice
			}
			newStock, newPrice = ledger.MergeStock(ingredient.CurrentStock, ingredient.PurchasePrice, delta, batchPrice)
		} else {
			var shortfall float64
			newStock, shortfall = ledger.WithdrawStock(ingredient.CurrentStock, delta)
			if shortfall > 0 {
				zerolog.Ctx(ctx).Warn().
					Str("ingredient", ingredient.Name).
					Float64("shortfall", shortfall).
					Msg("write-off exceeds ingredient balance, clamped at zero")
			}
		}
		if err := s.ingredients.UpdateAggregate(txCtx, ingredient.ID, newStock, newPrice); err != nil {
			return fmt.Errorf("failed to update ingredient stock: %w", err)
		}
		ingredient.CurrentStock = newStock
		ingredient.PurchasePrice = newPrice

		movement = newMovement(actor, movementType, ingredient.Name, delta, item.Unit)
		movement.Price = item.PurchasePrice
		notes := ledger.AdjustmentNotes(movementType)
		movement.Notes = &notes
		if err := s.movements.Create(txCtx, movement); err != nil {
			return fmt.Errorf("failed to append stock movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	item.Ingredient = ingredient
	s.committed(ctx, "stock.adjust", ingredient, item.ID, movement)
	return item, nil
}

// apply patches the batch in place and re-derives wastage from the resulting weights.
func (r AdjustRequest) apply(item *model.StockItem) error {
	fields := make(map[string]string)

	if r.Quantity != nil {
		if *r.Quantity < 0 {
			fields["quantity"] = "Значение не может быть отрицательным"
		}
		item.Quantity = *r.Quantity
	}
	if r.Unit != nil && strings.TrimSpace(*r.Unit) != "" {
		item.Unit = strings.TrimSpace(*r.Unit)
	}
	for field, v := range map[string]*float64{
		"gross_weight":   r.GrossWeight,
		"net_weight":     r.NetWeight,
		"purchase_price": r.PurchasePrice,
		"total_price":    r.TotalPrice,
	} {
		if v != nil && *v < 0 {
			fields[field] = "Значение не может быть отрицательным"
		}
	}
	if r.GrossWeight != nil {
		item.GrossWeight = copyFloat(r.GrossWeight)
	}
	if r.NetWeight != nil {
		item.NetWeight = copyFloat(r.NetWeight)
	}
	if r.PurchasePrice != nil {
		item.PurchasePrice = copyFloat(r.PurchasePrice)
	}
	if r.TotalPrice != nil {
		item.TotalPrice = copyFloat(r.TotalPrice)
	}
	if r.WastagePercent != nil {
		item.WastagePercent = copyFloat(r.WastagePercent)
	}
	if r.Supplier != nil {
		item.Supplier = optionalString(strings.TrimSpace(*r.Supplier))
	}
	if r.Notes != nil {
		item.Notes = optionalString(strings.TrimSpace(*r.Notes))
	}
	if r.ReceivedDate != nil && *r.ReceivedDate != "" {
		t, err := parseDate(*r.ReceivedDate)
		if err != nil {
			fields["received_date"] = "Некорректная дата"
		}
		item.ReceivedDate = t
	}
	if r.ExpiryDate != nil {
		if *r.ExpiryDate == "" {
			item.ExpiryDate = nil
		} else {
			t, err := parseDate(*r.ExpiryDate)
			if err != nil {
				fields["expiry_date"] = "Некорректная дата"
			}
			item.ExpiryDate = &t
		}
	}

	if item.GrossWeight != nil && item.NetWeight != nil {
		if *item.NetWeight > *item.GrossWeight {
			fields["net_weight"] = "Вес нетто не может превышать вес брутто"
		}
		// Derived wastage always wins over a supplied value; no positive gross, no wastage
		item.WastagePercent = ledger.WastagePercent(*item.GrossWeight, *item.NetWeight)
	}

	if len(fields) > 0 {
		return apperror.Validation(fields)
	}
	return nil
}

func (s *stockService) DeleteStockItem(ctx context.Context, actor *model.Actor, id string) error {
	itemID, err := parseID(id, "Складская позиция не найдена")
	if err != nil {
		return err
	}

	var (
		ingredient *model.Ingredient
		movement   *model.StockMovement
	)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, err := s.lockStockItem(txCtx, itemID)
		if err != nil {
			return err
		}
		ingredient, err = s.ingredients.FindByIDForUpdate(txCtx, item.IngredientID)
		if err != nil {
			return fmt.Errorf("failed to load ingredient: %w", err)
		}

		if err := s.stockItems.Delete(txCtx, item.ID); err != nil {
			return fmt.Errorf("failed to delete stock item: %w", err)
		}

		newStock, shortfall := ledger.WithdrawStock(ingredient.CurrentStock, item.Quantity)
		if shortfall > 0 {
			zerolog.Ctx(ctx).Warn().
				Str("ingredient", ingredient.Name).
				Float64("shortfall", shortfall).
				Msg("removed batch exceeds ingredient balance, clamped at zero")
		}
		if err := s.ingredients.UpdateAggregate(txCtx, ingredient.ID, newStock, ingredient.PurchasePrice); err != nil {
			return fmt.Errorf("failed to update ingredient stock: %w", err)
		}
		ingredient.CurrentStock = newStock

		movement = newMovement(actor, model.MovementWriteOff, ingredient.Name, item.Quantity, item.Unit)
		notes := ledger.RemovalNotes
		movement.Notes = &notes
		if err := s.movements.Create(txCtx, movement); err != nil {
			return fmt.Errorf("failed to append stock movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.committed(ctx, "stock.delete", ingredient, itemID, movement)
	return nil
}

func (s *stockService) lockStockItem(ctx context.Context, id uuid.UUID) (*model.StockItem, error) {
	item, err := s.stockItems.FindByIDForUpdate(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.NotFound("Складская позиция не найдена")
		}
		return nil, fmt.Errorf("failed to load stock item: %w", err)
	}
	return item, nil
}

func (s *stockService) GetStockItem(ctx context.Context, id string) (*model.StockItem, error) {
	itemID, err := parseID(id, "Складская позиция не найдена")
	if err != nil {
		return nil, err
	}
	item, err := s.stockItems.FindByID(ctx, itemID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.NotFound("Складская позиция не найдена")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return item, nil
}

func (s *stockService) ListIngredients(ctx context.Context, search string) ([]IngredientResponse, error) {
	ingredients, err := s.ingredients.ListWithStockItems(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return toIngredientResponses(ingredients), nil
}

func (s *stockService) ListLowStock(ctx context.Context) ([]IngredientResponse, error) {
	ingredients, err := s.ingredients.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}
	return toIngredientResponses(ingredients), nil
}

func (s *stockService) ListMovements(ctx context.Context, query MovementQuery) ([]MovementResponse, error) {
	movementType := strings.ToUpper(strings.TrimSpace(query.Type))
	if movementType != "" && !model.IsValidMovementType(movementType) {
		return nil, apperror.Validation(map[string]string{"type": "Неизвестный тип движения"})
	}

	movements, err := s.movements.List(ctx, repository.MovementFilter{
		Type:           movementType,
		IngredientName: strings.TrimSpace(query.IngredientName),
		Limit:          query.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}

	res := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		res = append(res, MovementResponse{StockMovement: m, TypeLabel: model.MovementTypeLabel(m.Type)})
	}
	return res, nil
}

// committed runs the post-commit side effects of a ledger write.
func (s *stockService) committed(ctx context.Context, event string, ingredient *model.Ingredient, itemID uuid.UUID, movement *model.StockMovement) {
	if movement != nil {
		metrics.RecordMovement(movement.Type, movement.Quantity)
	}
	metrics.SetIngredientStock(ingredient.Name, ingredient.CurrentStock)

	zerolog.Ctx(ctx).Info().
		Str("event", event).
		Str("ingredient", ingredient.Name).
		Str("stock_item_id", itemID.String()).
		Float64("current_stock", ingredient.CurrentStock).
		Msg("stock ledger updated")

	s.notifier.Publish(event, StockEvent{
		IngredientID:   ingredient.ID.String(),
		IngredientName: ingredient.Name,
		StockItemID:    itemID.String(),
		CurrentStock:   ingredient.CurrentStock,
		PurchasePrice:  ingredient.PurchasePrice,
	})
}

func newMovement(actor *model.Actor, movementType, ingredientName string, quantity float64, unit string) *model.StockMovement {
	m := &model.StockMovement{
		Type:           movementType,
		IngredientName: ingredientName,
		Quantity:       quantity,
		Unit:           unit,
	}
	if actor != nil {
		if actor.UserID != uuid.Nil {
			uid := actor.UserID
			m.CreatedByID = &uid
		}
		m.CreatedBy = actor.Email
	}
	return m
}

func toIngredientResponses(ingredients []model.Ingredient) []IngredientResponse {
	res := make([]IngredientResponse, 0, len(ingredients))
	for _, i := range ingredients {
		res = append(res, IngredientResponse{
			Ingredient:    i,
			CategoryLabel: model.CategoryLabel(i.Category),
			IsLowStock:    i.CurrentStock <= i.MinStock,
		})
	}
	return res
}

// parseID maps malformed ids to the same not-found error as missing rows.
func parseID(id, notFound string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, apperror.NotFound(notFound)
	}
	return parsed, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
