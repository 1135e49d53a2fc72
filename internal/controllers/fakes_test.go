package controllers_test

import (
	"context"
	"time"

	apperrors "github.com/QJQnova/Eps-sub001/internal/errors"
	"github.com/QJQnova/Eps-sub001/internal/importer"
	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/QJQnova/Eps-sub001/internal/services"
	"github.com/shopspring/decimal"
)

type fakeCategoryService struct {
	categories []models.Category
	deleteErr  error
}

func (f *fakeCategoryService) List(context.Context) ([]models.Category, error) {
	return f.categories, nil
}

func (f *fakeCategoryService) Get(_ context.Context, id uint) (*models.Category, error) {
	for i := range f.categories {
		if f.categories[i].ID == id {
			return &f.categories[i], nil
		}
	}
	return nil, apperrors.New(404, "Category not found", nil)
}

func (f *fakeCategoryService) Create(_ context.Context, req models.CreateCategoryRequest) (*models.Category, error) {
	c := models.Category{ID: uint(len(f.categories) + 1), Name: req.Name, Slug: "new-slug", Icon: "tool"}
	f.categories = append(f.categories, c)
	return &c, nil
}

func (f *fakeCategoryService) Update(ctx context.Context, id uint, req models.UpdateCategoryRequest) (*models.Category, error) {
	return f.Get(ctx, id)
}

func (f *fakeCategoryService) Delete(context.Context, uint) error {
	return f.deleteErr
}

func (f *fakeCategoryService) Products(context.Context, uint) ([]models.Product, error) {
	return []models.Product{}, nil
}

type fakeProductService struct {
	searchCalls int
	lastParams  models.ProductSearchParams
	products    map[uint]*models.Product
	created     *models.ProductInput
}

func newFakeProductService() *fakeProductService {
	return &fakeProductService{products: map[uint]*models.Product{
		1: {ID: 1, SKU: "DR-1", Name: "Дрель", Slug: "drel", Price: decimal.RequireFromString("4999.90"), IsActive: true},
	}}
}

func (f *fakeProductService) Search(_ context.Context, p models.ProductSearchParams) (*models.ProductList, error) {
	f.searchCalls++
	f.lastParams = p
	list := []models.Product{*f.products[1]}
	return &models.ProductList{Products: list, Pagination: models.NewPagination(p.Page, p.Limit, 1)}, nil
}

func (f *fakeProductService) Featured(context.Context) ([]models.Product, error) {
	return []models.Product{}, nil
}

func (f *fakeProductService) Get(_ context.Context, id uint) (*models.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, apperrors.New(404, "Product not found", nil)
}

func (f *fakeProductService) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	for _, p := range f.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, apperrors.New(404, "Product not found", nil)
}

func (f *fakeProductService) Create(_ context.Context, in models.ProductInput) (*models.Product, error) {
	f.created = &in
	p := &models.Product{ID: 2, SKU: in.SKU, Name: in.Name, Slug: "new", Price: in.Price, CategoryID: in.CategoryID}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProductService) Update(ctx context.Context, id uint, _ models.ProductUpdate) (*models.Product, error) {
	return f.Get(ctx, id)
}

func (f *fakeProductService) Delete(_ context.Context, id uint) error {
	if _, ok := f.products[id]; !ok {
		return apperrors.New(404, "Product not found", nil)
	}
	delete(f.products, id)
	return nil
}

type fakeCartService struct {
	items map[uint]*models.CartItem
}

func (f *fakeCartService) Get(_ context.Context, cartID string) (*models.Cart, error) {
	cart := &models.Cart{Items: []models.CartItem{}}
	for _, it := range f.items {
		if it.CartID == cartID {
			cart.Items = append(cart.Items, *it)
			cart.ItemCount += it.Quantity
		}
	}
	return cart, nil
}

func (f *fakeCartService) Add(_ context.Context, req models.AddCartItemRequest) (*models.CartItem, error) {
	if req.ProductID != 1 {
		return nil, apperrors.New(404, "Product not found", nil)
	}
	if f.items == nil {
		f.items = map[uint]*models.CartItem{}
	}
	q := req.Quantity
	if q == 0 {
		q = 1
	}
	item := &models.CartItem{ID: uint(len(f.items) + 1), CartID: req.CartID, ProductID: req.ProductID, Quantity: q}
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeCartService) UpdateQuantity(_ context.Context, id uint, q int) (*models.CartItem, error) {
	it, ok := f.items[id]
	if !ok {
		return nil, apperrors.New(404, "Cart item not found", nil)
	}
	it.Quantity = q
	return it, nil
}

func (f *fakeCartService) Remove(_ context.Context, id uint) error {
	delete(f.items, id)
	return nil
}

func (f *fakeCartService) Clear(_ context.Context, cartID string) error {
	for id, it := range f.items {
		if it.CartID == cartID {
			delete(f.items, id)
		}
	}
	return nil
}

type fakeOrderService struct {
	lastSearch models.OrderSearchParams
	lastStatus string
}

func (f *fakeOrderService) Create(_ context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	if req.CartID == "empty" {
		return nil, apperrors.ErrEmptyCart
	}
	return &models.Order{ID: 10, CustomerName: req.CustomerName, Status: models.OrderStatusPending}, nil
}

func (f *fakeOrderService) Search(_ context.Context, p models.OrderSearchParams) (*models.OrderList, error) {
	f.lastSearch = p
	return &models.OrderList{Orders: []models.Order{}, Pagination: models.NewPagination(1, 10, 0)}, nil
}

func (f *fakeOrderService) Get(_ context.Context, id uint) (*models.Order, error) {
	if id != 10 {
		return nil, apperrors.New(404, "Order not found", nil)
	}
	return &models.Order{ID: 10}, nil
}

func (f *fakeOrderService) UpdateStatus(_ context.Context, id uint, status string) (*models.Order, error) {
	f.lastStatus = status
	return &models.Order{ID: id, Status: status}, nil
}

// fakeAuthService signs real tokens so the cookie works against RequireAuth.
type fakeAuthService struct {
	tokens *services.TokenService
	users  map[string]*models.User
}

func (f *fakeAuthService) Register(_ context.Context, req models.RegisterRequest) (*services.Session, error) {
	if _, ok := f.users[req.Username]; ok {
		return nil, apperrors.New(409, "Username already exists", nil)
	}
	u := &models.User{ID: uint(len(f.users) + 1), Username: req.Username}
	f.users[u.Username] = u
	tok, _ := f.tokens.Generate(u)
	return &services.Session{User: u, Token: tok}, nil
}

func (f *fakeAuthService) Login(_ context.Context, req models.LoginRequest) (*services.Session, error) {
	u, ok := f.users[req.Username]
	if !ok || req.Password != "secret1" {
		return nil, apperrors.ErrInvalidCredentials
	}
	tok, _ := f.tokens.Generate(u)
	return &services.Session{User: u, Token: tok}, nil
}

func (f *fakeAuthService) Me(_ context.Context, id uint) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.ErrUnauthorized
}

type fakeImportService struct {
	lastName    string
	lastData    []byte
	lastRecords []importer.Record
	lastOpts    importer.Options
	report      *importer.Report
	err         error
}

func (f *fakeImportService) ImportFile(_ context.Context, name string, data []byte, opts importer.Options) (*importer.Report, error) {
	f.lastName, f.lastData, f.lastOpts = name, data, opts
	return f.report, f.err
}

func (f *fakeImportService) ImportRecords(_ context.Context, name string, records []importer.Record, opts importer.Options) (*importer.Report, error) {
	f.lastName, f.lastRecords, f.lastOpts = name, records, opts
	return f.report, f.err
}

type fakeJobQueue struct {
	jobs map[string]*models.BulkImportJob
}

func (f *fakeJobQueue) Enqueue(_ context.Context, name string, _ []byte, opts importer.Options) (*models.BulkImportJob, error) {
	job := &models.BulkImportJob{
		ID: "job-1", Status: models.JobStatusPending, FileName: name,
		Mode: string(opts.Mode), DefaultCategory: opts.DefaultCategory,
	}
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeJobQueue) Get(_ context.Context, id string) (*models.BulkImportJob, error) {
	if job, ok := f.jobs[id]; ok {
		return job, nil
	}
	return nil, services.ErrJobNotFound
}

type fakePresigner struct {
	lastExpires time.Duration
}

func (f *fakePresigner) Key(sku, filename string) string { return "products/" + sku + "/" + filename }
func (f *fakePresigner) URL(key string) string            { return "https://cdn.example/" + key }

func (f *fakePresigner) PresignPut(_ context.Context, key, _ string, expires time.Duration) (string, map[string]string, error) {
	f.lastExpires = expires
	return "https://s3.example/" + key + "?sig=1", map[string]string{"Content-Type": "image/png"}, nil
}
