package repository

import (
	"context"
	"testing"
	"time"

	"sushishop/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createUser(t *testing.T, db *gorm.DB, email, role string, createdAt time.Time) *model.User {
	t.Helper()
	u := &model.User{Name: email, Email: email, Password: "x", Role: role, CreatedAt: createdAt}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	alice := createUser(t, db, "alice@sushi.local", model.RoleUser, now.Add(-time.Hour))
	createUser(t, db, "bob@sushi.local", model.RoleAdmin, now)

	err := repo.Create(ctx, &model.User{Name: "dup", Email: "alice@sushi.local", Password: "x", Role: model.RoleUser})
	assert.True(t, IsUniqueViolation(err))

	got, err := repo.GetByEmail(ctx, "alice@sushi.local")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	got.Phone = "+79990000000"
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "+79990000000", got.Phone)

	users, total, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, users, 1)
	assert.Equal(t, "bob@sushi.local", users[0].Email)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.True(t, IsNotFound(err))
}

func TestProductRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	rolls, err := repo.EnsureCategory(ctx, "Роллы")
	require.NoError(t, err)
	again, err := repo.EnsureCategory(ctx, "Роллы")
	require.NoError(t, err)
	assert.Equal(t, rolls.ID, again.ID)

	sets, err := repo.EnsureCategory(ctx, "Сеты")
	require.NoError(t, err)

	philly := &model.Product{Name: "Филадельфия", Price: 549.90, Available: true, CategoryID: rolls.ID}
	hidden := &model.Product{Name: "Архив", Price: 100, Available: true, CategoryID: rolls.ID}
	set := &model.Product{Name: "Сет Токио", Price: 1899, Available: true, CategoryID: sets.ID}
	for _, p := range []*model.Product{philly, hidden, set} {
		require.NoError(t, repo.Create(ctx, p))
	}
	// the column default would otherwise re-enable a zero-valued bool on insert
	hidden.Available = false
	require.NoError(t, repo.Update(ctx, hidden))

	menu, err := repo.List(ctx, ProductFilter{OnlyAvailable: true})
	require.NoError(t, err)
	require.Len(t, menu, 2)
	assert.Equal(t, "Сет Токио", menu[0].Name)
	require.NotNil(t, menu[1].Category)
	assert.Equal(t, "Роллы", menu[1].Category.Name)

	onlyRolls, err := repo.List(ctx, ProductFilter{CategoryID: &rolls.ID})
	require.NoError(t, err)
	assert.Len(t, onlyRolls, 2)

	byIDs, err := repo.FindByIDs(ctx, []uuid.UUID{philly.ID, set.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)

	empty, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	got, err := repo.FindByID(ctx, philly.ID)
	require.NoError(t, err)
	assert.InDelta(t, 549.90, got.Price, 1e-9)

	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)

	_, err = repo.FindCategoryByID(ctx, uuid.New())
	assert.True(t, IsNotFound(err))
}

func TestOrderRepository(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderRepository(db)
	products := NewProductRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	alice := createUser(t, db, "alice@sushi.local", model.RoleUser, now)
	bob := createUser(t, db, "bob@sushi.local", model.RoleUser, now)

	cat, err := products.EnsureCategory(ctx, "Роллы")
	require.NoError(t, err)
	philly := &model.Product{Name: "Филадельфия", Price: 549.90, Available: true, CategoryID: cat.ID}
	require.NoError(t, products.Create(ctx, philly))

	order := &model.Order{
		UserID:          alice.ID,
		Status:          model.OrderStatusPending,
		Total:           1099.80,
		DeliveryAddress: "ул. Ленина, 1",
		Phone:           "+79990000000",
		Items:           []model.OrderItem{{ProductID: philly.ID, Quantity: 2, Price: 549.90}},
		CreatedAt:       now.Add(-time.Minute),
	}
	require.NoError(t, orders.Create(ctx, order))
	require.NoError(t, orders.Create(ctx, &model.Order{
		UserID: bob.ID, Status: model.OrderStatusDelivered, Total: 10, DeliveryAddress: "x", Phone: "1", CreatedAt: now,
	}))

	got, err := orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, "Филадельфия", got.Items[0].Product.Name)
	require.NotNil(t, got.User)
	assert.Equal(t, "alice@sushi.local", got.User.Email)

	require.NoError(t, orders.UpdateStatus(ctx, order.ID, model.OrderStatusConfirmed))
	assert.True(t, IsNotFound(orders.UpdateStatus(ctx, uuid.New(), model.OrderStatusConfirmed)))

	own, total, err := orders.List(ctx, OrderFilter{UserID: &alice.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, own, 1)
	assert.Equal(t, model.OrderStatusConfirmed, own[0].Status)

	all, total, err := orders.List(ctx, OrderFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, bob.ID, all[0].UserID)

	delivered, total, err := orders.List(ctx, OrderFilter{Status: model.OrderStatusDelivered, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, delivered, 1)
}

func TestStatisticsRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewStatisticsRepository(db)
	ctx := context.Background()

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	active := createUser(t, db, "active@sushi.local", model.RoleUser, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	dormant := createUser(t, db, "dormant@sushi.local", model.RoleUser, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	createUser(t, db, "admin@sushi.local", model.RoleAdmin, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC))

	place := func(user uuid.UUID, status string, total float64, at time.Time) {
		require.NoError(t, db.Create(&model.Order{
			UserID: user, Status: status, Total: total, DeliveryAddress: "x", Phone: "1", CreatedAt: at,
		}).Error)
	}
	place(active.ID, model.OrderStatusDelivered, 1000, now.AddDate(0, 0, -1))
	place(active.ID, model.OrderStatusConfirmed, 500.5, now.AddDate(0, 0, -2))
	place(active.ID, model.OrderStatusPending, 300, now.AddDate(0, 0, -3))
	place(dormant.ID, model.OrderStatusCancelled, 700, now.AddDate(0, -3, 0))

	products := NewProductRepository(db)
	cat, err := products.EnsureCategory(ctx, "Роллы")
	require.NoError(t, err)
	require.NoError(t, products.Create(ctx, &model.Product{Name: "Калифорния", Price: 399, Available: true, CategoryID: cat.ID}))

	stats, err := repo.AdminStats(ctx, now)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(4), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.PendingOrders)
	assert.Equal(t, int64(1), stats.ActiveUsers)
	assert.Equal(t, int64(1), stats.NewUsersThisMonth)
	assert.Equal(t, int64(1), stats.AdminCount)
	assert.InDelta(t, 1500.5, stats.TotalRevenue, 1e-6)
}

func TestAuditRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	admin := createUser(t, db, "admin@sushi.local", model.RoleAdmin, time.Now().UTC())
	base := time.Now().UTC()
	require.NoError(t, repo.Log(ctx, &model.AuditLog{Action: model.ActionRegisterUser, EntityID: "1", CreatedAt: base}))
	require.NoError(t, repo.Log(ctx, &model.AuditLog{
		UserID: &admin.ID, Action: model.ActionUpdateOrderStatus, EntityID: "2", CreatedAt: base.Add(time.Second),
	}))

	logs, total, err := repo.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, logs, 2)
	assert.Equal(t, model.ActionUpdateOrderStatus, logs[0].Action)
	require.NotNil(t, logs[0].User)
	assert.Equal(t, "admin@sushi.local", logs[0].User.Email)
	assert.Nil(t, logs[1].User)
}
