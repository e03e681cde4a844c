package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"sushishop/internal/model"
	"sushishop/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// stockStore is an in-memory stand-in for the inventory tables.
type stockStore struct {
	mu          sync.Mutex
	ingredients map[uuid.UUID]model.Ingredient
	items       map[uuid.UUID]model.StockItem
	movements   []model.StockMovement
	failOn      string
}

func newStockStore() *stockStore {
	return &stockStore{
		ingredients: make(map[uuid.UUID]model.Ingredient),
		items:       make(map[uuid.UUID]model.StockItem),
	}
}

var errInjected = errors.New("injected failure")

func (s *stockStore) fail(op string) error {
	if s.failOn == op {
		return errInjected
	}
	return nil
}

func (s *stockStore) addIngredient(name, category string, stock, price float64) model.Ingredient {
	ing := model.Ingredient{ID: uuid.New(), Name: name, Category: category, Unit: "кг", CurrentStock: stock, PurchasePrice: price}
	s.ingredients[ing.ID] = ing
	return ing
}

func (s *stockStore) addItem(ingredientID uuid.UUID, qty float64, price float64) model.StockItem {
	gross, net := qty, qty
	item := model.StockItem{
		ID:            uuid.New(),
		IngredientID:  ingredientID,
		Quantity:      qty,
		Unit:          "кг",
		GrossWeight:   &gross,
		NetWeight:     &net,
		PurchasePrice: &price,
	}
	s.items[item.ID] = item
	return item
}

func (s *stockStore) ingredientByName(name string) (model.Ingredient, bool) {
	for _, ing := range s.ingredients {
		if ing.Name == name {
			return ing, true
		}
	}
	return model.Ingredient{}, false
}

// snapshotTxManager restores the store when the transaction body fails.
type snapshotTxManager struct {
	store *stockStore
	calls int
}

func (m *snapshotTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	m.calls++
	m.store.mu.Lock()
	ingredients := make(map[uuid.UUID]model.Ingredient, len(m.store.ingredients))
	for k, v := range m.store.ingredients {
		ingredients[k] = v
	}
	items := make(map[uuid.UUID]model.StockItem, len(m.store.items))
	for k, v := range m.store.items {
		items[k] = v
	}
	movements := append([]model.StockMovement(nil), m.store.movements...)
	m.store.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.store.mu.Lock()
		m.store.ingredients = ingredients
		m.store.items = items
		m.store.movements = movements
		m.store.mu.Unlock()
		return err
	}
	return nil
}

type stubIngredientRepo struct{ store *stockStore }

var _ repository.IngredientRepository = (*stubIngredientRepo)(nil)

func (r *stubIngredientRepo) create(ingredient *model.Ingredient) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.ingredientByName(ingredient.Name); ok {
		return gorm.ErrDuplicatedKey
	}
	if ingredient.ID == uuid.Nil {
		ingredient.ID = uuid.New()
	}
	r.store.ingredients[ingredient.ID] = *ingredient
	return nil
}

func (r *stubIngredientRepo) CreateIfAbsent(_ context.Context, ingredient *model.Ingredient) error {
	if err := r.create(ingredient); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	return nil
}

func (r *stubIngredientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Ingredient, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	ing, ok := r.store.ingredients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &ing, nil
}

func (r *stubIngredientRepo) findByName(name string) (*model.Ingredient, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	ing, ok := r.store.ingredientByName(name)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &ing, nil
}

func (r *stubIngredientRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Ingredient, error) {
	return r.FindByID(ctx, id)
}

func (r *stubIngredientRepo) FindByNameForUpdate(_ context.Context, name string) (*model.Ingredient, error) {
	return r.findByName(name)
}

func (r *stubIngredientRepo) UpdateAggregate(_ context.Context, id uuid.UUID, currentStock, purchasePrice float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fail("UpdateAggregate"); err != nil {
		return err
	}
	ing, ok := r.store.ingredients[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	ing.CurrentStock = currentStock
	ing.PurchasePrice = purchasePrice
	r.store.ingredients[id] = ing
	return nil
}

func (r *stubIngredientRepo) ListWithStockItems(_ context.Context, search string) ([]model.Ingredient, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var res []model.Ingredient
	for _, ing := range r.store.ingredients {
		if search != "" && !strings.Contains(strings.ToLower(ing.Name), strings.ToLower(search)) {
			continue
		}
		for _, item := range r.store.items {
			if item.IngredientID == ing.ID {
				ing.StockItems = append(ing.StockItems, item)
			}
		}
		res = append(res, ing)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (r *stubIngredientRepo) ListLowStock(_ context.Context) ([]model.Ingredient, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var res []model.Ingredient
	for _, ing := range r.store.ingredients {
		if ing.CurrentStock <= ing.MinStock {
			res = append(res, ing)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

type stubStockItemRepo struct{ store *stockStore }

var _ repository.StockItemRepository = (*stubStockItemRepo)(nil)

func (r *stubStockItemRepo) Create(_ context.Context, item *model.StockItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.store.items[item.ID] = *item
	return nil
}

func (r *stubStockItemRepo) FindByID(_ context.Context, id uuid.UUID) (*model.StockItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	item, ok := r.store.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if ing, ok := r.store.ingredients[item.IngredientID]; ok {
		item.Ingredient = &ing
	}
	return &item, nil
}

func (r *stubStockItemRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.StockItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	item, ok := r.store.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}

func (r *stubStockItemRepo) Update(_ context.Context, item *model.StockItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored := *item
	stored.Ingredient = nil
	r.store.items[item.ID] = stored
	return nil
}

func (r *stubStockItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.store.items, id)
	return nil
}

type stubMovementRepo struct{ store *stockStore }

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

func (r *stubMovementRepo) Create(_ context.Context, movement *model.StockMovement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fail("CreateMovement"); err != nil {
		return err
	}
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	r.store.movements = append(r.store.movements, *movement)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]model.StockMovement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var res []model.StockMovement
	for i := len(r.store.movements) - 1; i >= 0; i-- {
		m := r.store.movements[i]
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if filter.IngredientName != "" && m.IngredientName != filter.IngredientName {
			continue
		}
		res = append(res, m)
	}
	return res, nil
}

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) Publish(event string, _ interface{}) {
	n.events = append(n.events, event)
}
