package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/QJQnova/Eps-sub001/internal/repository"
)

type fakeCategoryRepo struct {
	byID   map[uint]*models.Category
	nextID uint
	counts map[uint]int
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{byID: map[uint]*models.Category{}, counts: map[uint]int{}}
}

func (f *fakeCategoryRepo) add(name, slug string) *models.Category {
	f.nextID++
	c := &models.Category{ID: f.nextID, Name: name, Slug: slug}
	f.byID[c.ID] = c
	return c
}

func (f *fakeCategoryRepo) FindAll(context.Context) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.byID {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCategoryRepo) FindByID(_ context.Context, id uint) (*models.Category, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCategoryRepo) FindByName(_ context.Context, name string) (*models.Category, error) {
	for _, c := range f.byID {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCategoryRepo) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	for _, c := range f.byID {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCategoryRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := f.FindBySlug(ctx, slug)
	return err == nil, nil
}

func (f *fakeCategoryRepo) Create(ctx context.Context, c *models.Category) error {
	if ok, _ := f.SlugExists(ctx, c.Slug); ok {
		return fmt.Errorf("insert: %w", repository.ErrDuplicate)
	}
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, id uint, updates map[string]interface{}) (*models.Category, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if v, ok := updates["name"].(string); ok {
		c.Name = v
	}
	if v, ok := updates["slug"].(string); ok {
		for _, other := range f.byID {
			if other.ID != id && other.Slug == v {
				return nil, repository.ErrDuplicate
			}
		}
		c.Slug = v
	}
	if v, ok := updates["icon"].(string); ok {
		c.Icon = v
	}
	return c, nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id uint) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeCategoryRepo) HasProducts(_ context.Context, id uint) (bool, error) {
	return f.counts[id] > 0, nil
}

func (f *fakeCategoryRepo) AdjustProductCount(_ context.Context, id uint, delta int) error {
	f.counts[id] += delta
	return nil
}

func (f *fakeCategoryRepo) RecountProducts(context.Context, []uint) error { return nil }

type fakeProductRepo struct {
	byID   map[uint]*models.Product
	nextID uint
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{byID: map[uint]*models.Product{}}
}

func (f *fakeProductRepo) add(p models.Product) *models.Product {
	f.nextID++
	p.ID = f.nextID
	f.byID[p.ID] = &p
	return &p
}

func (f *fakeProductRepo) Search(_ context.Context, p models.ProductSearchParams) ([]models.Product, int64, error) {
	var all []models.Product
	for _, prod := range f.byID {
		if prod.IsActive || p.IncludeInactive {
			all = append(all, *prod)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	start := (p.Page - 1) * p.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + p.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (f *fakeProductRepo) FindByID(_ context.Context, id uint) (*models.Product, error) {
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProductRepo) FindBySlug(_ context.Context, slug string) (*models.Product, error) {
	for _, p := range f.byID {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProductRepo) FindFeatured(context.Context, int) ([]models.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) FindByCategory(_ context.Context, id uint) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.byID {
		if p.CategoryID == id {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := f.FindBySlug(ctx, slug)
	return err == nil, nil
}

func (f *fakeProductRepo) ExistingSKUs(_ context.Context, skus []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, p := range f.byID {
		for _, s := range skus {
			if p.SKU == s {
				out[s] = true
			}
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Create(_ context.Context, p *models.Product) error {
	for _, other := range f.byID {
		if other.SKU == p.SKU || other.Slug == p.Slug {
			return fmt.Errorf("insert: %w", repository.ErrDuplicate)
		}
	}
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) Update(_ context.Context, id uint, updates map[string]interface{}) (*models.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if v, ok := updates["name"].(string); ok {
		p.Name = v
	}
	if v, ok := updates["category_id"].(uint); ok {
		p.CategoryID = v
	}
	if v, ok := updates["is_active"].(bool); ok {
		p.IsActive = v
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id uint) (*models.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(f.byID, id)
	return p, nil
}

func (f *fakeProductRepo) WriteBatch(context.Context, []models.Product, bool) (int64, error) {
	return 0, nil
}

type fakeCartRepo struct {
	products *fakeProductRepo
	items    map[uint]*models.CartItem
	nextID   uint
}

func newFakeCartRepo(products *fakeProductRepo) *fakeCartRepo {
	return &fakeCartRepo{products: products, items: map[uint]*models.CartItem{}}
}

func (f *fakeCartRepo) FindByCart(_ context.Context, cartID string) ([]models.CartItem, error) {
	var out []models.CartItem
	for id := uint(1); id <= f.nextID; id++ {
		it, ok := f.items[id]
		if !ok || it.CartID != cartID {
			continue
		}
		p, ok := f.products.byID[it.ProductID]
		if !ok {
			continue
		}
		cp := *it
		cp.Product = p
		out = append(out, cp)
	}
	return out, nil
}

func (f *fakeCartRepo) FindByID(_ context.Context, id uint) (*models.CartItem, error) {
	if it, ok := f.items[id]; ok {
		return it, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCartRepo) AddOrIncrement(_ context.Context, item *models.CartItem) error {
	for _, it := range f.items {
		if it.CartID == item.CartID && it.ProductID == item.ProductID {
			it.Quantity += item.Quantity
			item.ID, item.Quantity = it.ID, it.Quantity
			return nil
		}
	}
	f.nextID++
	item.ID = f.nextID
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeCartRepo) UpdateQuantity(_ context.Context, id uint, q int) (*models.CartItem, error) {
	it, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	it.Quantity = q
	return it, nil
}

func (f *fakeCartRepo) Delete(_ context.Context, id uint) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeCartRepo) Clear(_ context.Context, cartID string) error {
	for id, it := range f.items {
		if it.CartID == cartID {
			delete(f.items, id)
		}
	}
	return nil
}

type fakeOrderRepo struct {
	cart     *fakeCartRepo
	orders   map[uint]*models.Order
	nextID   uint
	failWith error
	lastQ    models.OrderSearchParams
}

func newFakeOrderRepo(cart *fakeCartRepo) *fakeOrderRepo {
	return &fakeOrderRepo{cart: cart, orders: map[uint]*models.Order{}}
}

func (f *fakeOrderRepo) Checkout(ctx context.Context, o *models.Order, cartID string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.nextID++
	o.ID = f.nextID
	o.CreatedAt = time.Now()
	f.orders[o.ID] = o
	return f.cart.Clear(ctx, cartID)
}

func (f *fakeOrderRepo) Search(_ context.Context, p models.OrderSearchParams) ([]models.Order, int64, error) {
	f.lastQ = p
	var out []models.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id uint) (*models.Order, error) {
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id uint, status string) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.Status = status
	return o, nil
}

type fakeUserRepo struct {
	users  map[string]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	if _, ok := f.users[u.Username]; ok {
		return repository.ErrDuplicate
	}
	f.nextID++
	u.ID = f.nextID
	f.users[u.Username] = u
	return nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakePublisher struct {
	mu       sync.Mutex
	topics   []string
	messages [][]byte
}

func (f *fakePublisher) Publish(_ context.Context, topic string, msg []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.messages = append(f.messages, msg)
	return nil
}

type fakeMetrics struct {
	mu     sync.Mutex
	counts map[string]float64
}

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{counts: map[string]float64{}} }

func (f *fakeMetrics) RecordCount(_ context.Context, name string, v float64, _ map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[name] += v
	return nil
}

func (f *fakeMetrics) RecordLatency(context.Context, string, time.Duration, map[string]string) error {
	return nil
}

type fakeCache struct{ invalidations int }

func (f *fakeCache) Invalidate(context.Context) error {
	f.invalidations++
	return nil
}
