package controllers

import (
	"context"
	"time"

	"github.com/QJQnova/Eps-sub001/internal/importer"
	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/QJQnova/Eps-sub001/internal/services"
)

// Default configuration values
const (
	DefaultCacheTTL   = 10 * time.Minute
	jobStatusTimeout  = 5 * time.Second
	defaultPresignTTL = 900
	maxPresignTTL     = 3600
)

// CategoryServiceAPI defines the category operations used by the handlers.
type CategoryServiceAPI interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id uint) (*models.Category, error)
	Create(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error)
	Update(ctx context.Context, id uint, req models.UpdateCategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, id uint) error
	Products(ctx context.Context, id uint) ([]models.Product, error)
}

// ProductServiceAPI defines the interface for product service operations
type ProductServiceAPI interface {
	Search(ctx context.Context, params models.ProductSearchParams) (*models.ProductList, error)
	Featured(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id uint) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Create(ctx context.Context, in models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id uint, upd models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id uint) error
}

type CartServiceAPI interface {
	Get(ctx context.Context, cartID string) (*models.Cart, error)
	Add(ctx context.Context, req models.AddCartItemRequest) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, id uint, quantity int) (*models.CartItem, error)
	Remove(ctx context.Context, id uint) error
	Clear(ctx context.Context, cartID string) error
}

type OrderServiceAPI interface {
	Create(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error)
	Search(ctx context.Context, params models.OrderSearchParams) (*models.OrderList, error)
	Get(ctx context.Context, id uint) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error)
}

type AuthServiceAPI interface {
	Register(ctx context.Context, req models.RegisterRequest) (*services.Session, error)
	Login(ctx context.Context, req models.LoginRequest) (*services.Session, error)
	Me(ctx context.Context, userID uint) (*models.User, error)
}

// ImportServiceAPI runs synchronous imports.
type ImportServiceAPI interface {
	ImportFile(ctx context.Context, name string, data []byte, opts importer.Options) (*importer.Report, error)
	ImportRecords(ctx context.Context, name string, records []importer.Record, opts importer.Options) (*importer.Report, error)
}

// JobQueueAPI queues uploads for the background worker.
type JobQueueAPI interface {
	Enqueue(ctx context.Context, fileName string, data []byte, opts importer.Options) (*models.BulkImportJob, error)
	Get(ctx context.Context, id string) (*models.BulkImportJob, error)
}

// ImagePresigner issues direct-upload URLs for product images.
type ImagePresigner interface {
	Key(sku, filename string) string
	URL(key string) string
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, map[string]string, error)
}
