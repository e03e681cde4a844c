package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"sushishop/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredientRepository_CreateIfAbsent(t *testing.T) {
	db := newTestDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	first := &model.Ingredient{Name: "Угорь", Category: model.CategoryFish, Unit: "кг", PurchasePrice: 1200}
	require.NoError(t, repo.CreateIfAbsent(ctx, first))

	second := &model.Ingredient{Name: "Угорь", Category: model.CategoryOther, Unit: "шт", PurchasePrice: 1}
	require.NoError(t, repo.CreateIfAbsent(ctx, second))

	found, err := repo.FindByNameForUpdate(ctx, "Угорь")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, model.CategoryFish, found.Category)
	assert.InDelta(t, 1200.0, found.PurchasePrice, 1e-9)

	var count int64
	require.NoError(t, db.Model(&model.Ingredient{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIngredientRepository_CreateDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateIfAbsent(ctx, &model.Ingredient{Name: "Рис", Category: model.CategoryRice, Unit: "кг"}))
	err := db.WithContext(ctx).Create(&model.Ingredient{Name: "Рис", Category: model.CategoryRice, Unit: "кг"}).Error
	assert.True(t, IsUniqueViolation(err))
}

func TestIngredientRepository_UpdateAggregate(t *testing.T) {
	repo := NewIngredientRepository(newTestDB(t))
	ctx := context.Background()

	ing := &model.Ingredient{Name: "Лосось", Category: model.CategoryFish, Unit: "кг", CurrentStock: 5, PurchasePrice: 800}
	require.NoError(t, repo.CreateIfAbsent(ctx, ing))

	require.NoError(t, repo.UpdateAggregate(ctx, ing.ID, 14, 832.142857))

	got, err := repo.FindByIDForUpdate(ctx, ing.ID)
	require.NoError(t, err)
	assert.InDelta(t, 14.0, got.CurrentStock, 1e-9)
	assert.InDelta(t, 832.142857, got.PurchasePrice, 1e-6)

	err = repo.UpdateAggregate(ctx, uuid.New(), 1, 1)
	assert.True(t, IsNotFound(err))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, IsNotFound(err))
}

func TestIngredientRepository_Listings(t *testing.T) {
	db := newTestDB(t)
	ingredients := NewIngredientRepository(db)
	items := NewStockItemRepository(db)
	ctx := context.Background()

	salmon := &model.Ingredient{Name: "Лосось", Category: model.CategoryFish, Unit: "кг", CurrentStock: 1, MinStock: 3}
	rice := &model.Ingredient{Name: "Рис", Category: model.CategoryRice, Unit: "кг", CurrentStock: 20, MinStock: 5}
	nori := &model.Ingredient{Name: "Нори", Category: model.CategorySeaweed, Unit: "шт", CurrentStock: 0, MinStock: 0}
	for _, ing := range []*model.Ingredient{salmon, rice, nori} {
		require.NoError(t, ingredients.CreateIfAbsent(ctx, ing))
	}

	older := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, items.Create(ctx, &model.StockItem{IngredientID: salmon.ID, Quantity: 1, Unit: "кг", ReceivedDate: older}))
	require.NoError(t, items.Create(ctx, &model.StockItem{IngredientID: salmon.ID, Quantity: 2, Unit: "кг", ReceivedDate: newer}))

	all, err := ingredients.ListWithStockItems(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// sqlite only folds ASCII case, so search with an already lower-case fragment
	found, err := ingredients.ListWithStockItems(ctx, "осо")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Len(t, found[0].StockItems, 2)
	assert.InDelta(t, 2.0, found[0].StockItems[0].Quantity, 1e-9)
	assert.InDelta(t, 1.0, found[0].StockItems[1].Quantity, 1e-9)

	low, err := ingredients.ListLowStock(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(low))
	for _, ing := range low {
		names = append(names, ing.Name)
	}
	assert.Equal(t, []string{"Лосось", "Нори"}, names)
}

func TestStockItemRepository(t *testing.T) {
	db := newTestDB(t)
	ingredients := NewIngredientRepository(db)
	items := NewStockItemRepository(db)
	ctx := context.Background()

	tuna := &model.Ingredient{Name: "Тунец", Category: model.CategoryFish, Unit: "кг"}
	require.NoError(t, ingredients.CreateIfAbsent(ctx, tuna))

	supplier := "Океан"
	expiry := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	item := &model.StockItem{
		IngredientID: tuna.ID,
		Quantity:     3,
		Unit:         "кг",
		Supplier:     &supplier,
		ReceivedDate: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		ExpiryDate:   &expiry,
	}
	require.NoError(t, items.Create(ctx, item))

	got, err := items.FindByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Ingredient)
	assert.Equal(t, "Тунец", got.Ingredient.Name)
	require.NotNil(t, got.Supplier)
	assert.Equal(t, "Океан", *got.Supplier)

	locked, err := items.FindByIDForUpdate(ctx, item.ID)
	require.NoError(t, err)
	locked.Quantity = 2.5
	locked.ExpiryDate = nil
	locked.Supplier = nil
	require.NoError(t, items.Update(ctx, locked))

	got, err = items.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, got.Quantity, 1e-9)
	assert.Nil(t, got.ExpiryDate)
	assert.Nil(t, got.Supplier)

	require.NoError(t, items.Delete(ctx, item.ID))
	assert.True(t, IsNotFound(items.Delete(ctx, item.ID)))
	_, err = items.FindByID(ctx, item.ID)
	assert.True(t, IsNotFound(err))
}

func TestStockMovementRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewStockMovementRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []model.StockMovement{
		{Type: model.MovementArrival, IngredientName: "Лосось", Quantity: 9, Unit: "кг", CreatedAt: base},
		{Type: model.MovementWriteOff, IngredientName: "Тунец", Quantity: 3, Unit: "кг", CreatedAt: base.Add(time.Hour)},
		{Type: model.MovementArrival, IngredientName: "Тунец", Quantity: 7, Unit: "кг", CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range entries {
		require.NoError(t, repo.Create(ctx, &entries[i]))
	}

	all, err := repo.List(ctx, MovementFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.InDelta(t, 7.0, all[0].Quantity, 1e-9)
	assert.InDelta(t, 9.0, all[2].Quantity, 1e-9)

	arrivals, err := repo.List(ctx, MovementFilter{Type: model.MovementArrival})
	require.NoError(t, err)
	assert.Len(t, arrivals, 2)

	tuna, err := repo.List(ctx, MovementFilter{IngredientName: "Тунец", Limit: 1})
	require.NoError(t, err)
	require.Len(t, tuna, 1)
	assert.Equal(t, model.MovementArrival, tuna[0].Type)
}

func TestStockMovement_Immutable(t *testing.T) {
	db := newTestDB(t)
	repo := NewStockMovementRepository(db)
	ctx := context.Background()

	m := &model.StockMovement{Type: model.MovementArrival, IngredientName: "Рис", Quantity: 1, Unit: "кг"}
	require.NoError(t, repo.Create(ctx, m))

	err := db.Model(m).Update("quantity", 100).Error
	assert.True(t, errors.Is(err, model.ErrImmutableMovement))

	var stored model.StockMovement
	require.NoError(t, db.First(&stored, "id = ?", m.ID).Error)
	assert.InDelta(t, 1.0, stored.Quantity, 1e-9)
}

func TestTransactionManager_Rollback(t *testing.T) {
	db := newTestDB(t)
	tx := NewTransactionManager(db)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := repo.CreateIfAbsent(txCtx, &model.Ingredient{Name: "Имбирь", Category: model.CategoryVegetables, Unit: "кг"}); err != nil {
			return err
		}
		// nested call joins the outer transaction
		return tx.RunInTx(txCtx, func(inner context.Context) error {
			if err := repo.CreateIfAbsent(inner, &model.Ingredient{Name: "Васаби", Category: model.CategorySauces, Unit: "кг"}); err != nil {
				return err
			}
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&model.Ingredient{}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, tx.RunInTx(ctx, func(txCtx context.Context) error {
		return repo.CreateIfAbsent(txCtx, &model.Ingredient{Name: "Имбирь", Category: model.CategoryVegetables, Unit: "кг"})
	}))
	_, err = repo.FindByNameForUpdate(ctx, "Имбирь")
	assert.NoError(t, err)
}
