package importer

import (
	"context"
	"errors"

	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/QJQnova/Eps-sub001/internal/repository"
	"gorm.io/gorm"
)

// Store is the persistence the import pipeline needs.
type Store interface {
	// FindCategoryByName returns nil, nil when no category has that name.
	FindCategoryByName(ctx context.Context, name string) (*models.Category, error)
	// CreateCategory wraps repository.ErrDuplicate on a slug collision.
	CreateCategory(ctx context.Context, category *models.Category) error
	ProductSlugExists(ctx context.Context, slug string) (bool, error)
	ExistingSKUs(ctx context.Context, skus []string) (map[string]bool, error)
	WriteProducts(ctx context.Context, products []models.Product, upsert bool) (int64, error)
	RecountCategories(ctx context.Context, ids []uint) error
	LoadCursor(ctx context.Context, sourceKey string) (int, error)
	SaveCursor(ctx context.Context, sourceKey string, offset int) error
}

// GormStore implements Store on top of the gorm repositories.
type GormStore struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	cursors    repository.CursorRepository
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		categories: repository.NewGormCategoryRepository(db),
		products:   repository.NewGormProductRepository(db),
		cursors:    repository.NewGormCursorRepository(db),
	}
}

func (s *GormStore) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	c, err := s.categories.FindByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return c, err
}

func (s *GormStore) CreateCategory(ctx context.Context, category *models.Category) error {
	return s.categories.Create(ctx, category)
}

func (s *GormStore) ProductSlugExists(ctx context.Context, slug string) (bool, error) {
	return s.products.SlugExists(ctx, slug)
}

func (s *GormStore) ExistingSKUs(ctx context.Context, skus []string) (map[string]bool, error) {
	return s.products.ExistingSKUs(ctx, skus)
}

func (s *GormStore) WriteProducts(ctx context.Context, products []models.Product, upsert bool) (int64, error) {
	return s.products.WriteBatch(ctx, products, upsert)
}

func (s *GormStore) RecountCategories(ctx context.Context, ids []uint) error {
	return s.categories.RecountProducts(ctx, ids)
}

func (s *GormStore) LoadCursor(ctx context.Context, sourceKey string) (int, error) {
	return s.cursors.Get(ctx, sourceKey)
}

func (s *GormStore) SaveCursor(ctx context.Context, sourceKey string, offset int) error {
	return s.cursors.Save(ctx, sourceKey, offset)
}
