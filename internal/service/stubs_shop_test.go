package service

import (
	"context"
	"sort"
	"time"

	"sushishop/internal/model"
	"sushishop/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// passthroughTx runs the body without any rollback behaviour.
type passthroughTx struct{ calls int }

func (p *passthroughTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

type stubUserRepo struct {
	users     map[uuid.UUID]model.User
	createErr error
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user *model.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) List(_ context.Context, page, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range r.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, int64(len(all)), nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *stubUserRepo) Update(_ context.Context, user *model.User) error {
	r.users[user.ID] = *user
	return nil
}

type stubAuditRepo struct {
	logs []model.AuditLog
}

var _ repository.AuditRepository = (*stubAuditRepo)(nil)

func (r *stubAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.logs = append(r.logs, *entry)
	return nil
}

func (r *stubAuditRepo) List(_ context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	return r.logs, int64(len(r.logs)), nil
}

type stubProductRepo struct {
	products   map[uuid.UUID]model.Product
	categories map[uuid.UUID]model.Category
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products:   make(map[uuid.UUID]model.Product),
		categories: make(map[uuid.UUID]model.Category),
	}
}

func (r *stubProductRepo) addCategory(name string) model.Category {
	c := model.Category{ID: uuid.New(), Name: name}
	r.categories[c.ID] = c
	return c
}

func (r *stubProductRepo) addProduct(name string, price float64, available bool, categoryID uuid.UUID) model.Product {
	p := model.Product{ID: uuid.New(), Name: name, Price: price, Available: available, CategoryID: categoryID}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) Create(_ context.Context, product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	stored := *product
	stored.Category = nil
	r.products[product.ID] = stored
	return nil
}

func (r *stubProductRepo) Update(_ context.Context, product *model.Product) error {
	stored := *product
	stored.Category = nil
	r.products[product.ID] = stored
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var res []model.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			res = append(res, p)
		}
	}
	return res, nil
}

func (r *stubProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	var res []model.Product
	for _, p := range r.products {
		if filter.OnlyAvailable && !p.Available {
			continue
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (r *stubProductRepo) FindCategoryByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *stubProductRepo) EnsureCategory(_ context.Context, name string) (*model.Category, error) {
	for _, c := range r.categories {
		if c.Name == name {
			return &c, nil
		}
	}
	c := r.addCategory(name)
	return &c, nil
}

func (r *stubProductRepo) ListCategories(_ context.Context) ([]model.Category, error) {
	var res []model.Category
	for _, c := range r.categories {
		res = append(res, c)
	}
	return res, nil
}

type stubOrderRepo struct {
	orders map[uuid.UUID]model.Order
}

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]model.Order)}
}

func (r *stubOrderRepo) Create(_ context.Context, order *model.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	r.orders[order.ID] = *order
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	r.orders[id] = o
	return nil
}

func (r *stubOrderRepo) List(_ context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	var res []model.Order
	for _, o := range r.orders {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		res = append(res, o)
	}
	return res, int64(len(res)), nil
}

type stubStatsRepo struct {
	calls int
	stats model.AdminStats
}

func (r *stubStatsRepo) AdminStats(_ context.Context, _ time.Time) (model.AdminStats, error) {
	r.calls++
	return r.stats, nil
}

// countingStats records invalidations without touching any cache.
type countingStats struct {
	invalidations int
}

func (s *countingStats) GetAdminStats(context.Context) (model.AdminStats, error) {
	return model.AdminStats{}, nil
}

func (s *countingStats) Invalidate(context.Context) { s.invalidations++ }
