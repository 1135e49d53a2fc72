package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/QJQnova/Eps-sub001/internal/errors"
	"github.com/QJQnova/Eps-sub001/internal/importer"
	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/QJQnova/Eps-sub001/internal/repository"
	"go.uber.org/zap"
)

const (
	DefaultProductLimit = 12
	MaxProductLimit     = 100
	featuredLimit       = 8
)

var (
	errProductNotFound = apperrors.New(http.StatusNotFound, "Product not found", nil)
	errProductConflict = apperrors.New(http.StatusConflict, "Product with this SKU or slug already exists", nil)
	errUnknownCategory = apperrors.New(http.StatusBadRequest, "Category does not exist", nil)
	errInvalidPrice    = apperrors.New(http.StatusBadRequest, "Price must be greater than zero", nil)
)

type ProductService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
}

func NewProductService(products repository.ProductRepository, categories repository.CategoryRepository) *ProductService {
	return &ProductService{products: products, categories: categories}
}

// NormalizeSearch applies paging defaults and bounds.
func NormalizeSearch(p models.ProductSearchParams) models.ProductSearchParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultProductLimit
	}
	if p.Limit > MaxProductLimit {
		p.Limit = MaxProductLimit
	}
	switch p.Sort {
	case models.SortFeatured, models.SortPriceLow, models.SortPriceHigh, models.SortNewest, models.SortPopular:
	default:
		p.Sort = models.SortFeatured
	}
	p.Query = strings.TrimSpace(p.Query)
	return p
}

func (s *ProductService) Search(ctx context.Context, params models.ProductSearchParams) (*models.ProductList, error) {
	params = NormalizeSearch(params)
	products, total, err := s.products.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return &models.ProductList{
		Products:   products,
		Pagination: models.NewPagination(params.Page, params.Limit, total),
	}, nil
}

func (s *ProductService) Featured(ctx context.Context) ([]models.Product, error) {
	return s.products.FindFeatured(ctx, featuredLimit)
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, errProductNotFound)
	}
	return p, nil
}

func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	p, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return nil, mapNotFound(err, errProductNotFound)
	}
	return p, nil
}

// Create stores an admin-entered product and bumps its category counter.
func (s *ProductService) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if !in.Price.IsPositive() {
		return nil, errInvalidPrice
	}
	if err := s.requireCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		var err error
		dedupe := importer.NewDeduper(s.products.SlugExists)
		if slug, err = dedupe.UniqueSlug(ctx, importer.Slugify(in.Name)); err != nil {
			return nil, err
		}
	}

	p := &models.Product{
		SKU:              strings.TrimSpace(in.SKU),
		Name:             strings.TrimSpace(in.Name),
		Slug:             slug,
		Description:      in.Description,
		ShortDescription: in.ShortDescription,
		Price:            in.Price.Round(2),
		OriginalPrice:    in.OriginalPrice,
		ImageURL:         in.ImageURL,
		CategoryID:       in.CategoryID,
		IsActive:         true,
		Tag:              in.Tag,
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}

	if err := s.products.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errProductConflict.Wrap(err)
		}
		return nil, err
	}
	s.adjustCount(ctx, p.CategoryID, 1)
	return p, nil
}

// Update applies the non-nil fields of upd. Moving a product to another
// category moves one unit of product_count with it.
func (s *ProductService) Update(ctx context.Context, id uint, upd models.ProductUpdate) (*models.Product, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	setString := func(col string, v *string) {
		if v != nil {
			updates[col] = strings.TrimSpace(*v)
		}
	}
	setString("sku", upd.SKU)
	setString("name", upd.Name)
	setString("slug", upd.Slug)
	if upd.Description != nil {
		updates["description"] = *upd.Description
	}
	if upd.ShortDescription != nil {
		updates["short_description"] = *upd.ShortDescription
	}
	if upd.Price != nil {
		if !upd.Price.IsPositive() {
			return nil, errInvalidPrice
		}
		updates["price"] = upd.Price.Round(2)
	}
	if upd.OriginalPrice != nil {
		updates["original_price"] = *upd.OriginalPrice
	}
	if upd.ImageURL != nil {
		updates["image_url"] = *upd.ImageURL
	}
	if upd.Stock != nil {
		updates["stock"] = *upd.Stock
	}
	if upd.CategoryID != nil && *upd.CategoryID != current.CategoryID {
		if err := s.requireCategory(ctx, *upd.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *upd.CategoryID
	}
	if upd.IsActive != nil {
		updates["is_active"] = *upd.IsActive
	}
	if upd.IsFeatured != nil {
		updates["is_featured"] = *upd.IsFeatured
	}
	if upd.Tag != nil {
		updates["tag"] = *upd.Tag
	}

	p, err := s.products.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errProductConflict.Wrap(err)
		}
		return nil, mapNotFound(err, errProductNotFound)
	}
	if p.CategoryID != current.CategoryID {
		s.adjustCount(ctx, current.CategoryID, -1)
		s.adjustCount(ctx, p.CategoryID, 1)
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.products.Delete(ctx, id)
	if err != nil {
		return mapNotFound(err, errProductNotFound)
	}
	s.adjustCount(ctx, deleted.CategoryID, -1)
	return nil
}

func (s *ProductService) requireCategory(ctx context.Context, id uint) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return mapNotFound(err, errUnknownCategory)
	}
	return nil
}

// adjustCount keeps the denormalised counter in step. A failure only logs:
// the next import recount repairs it.
func (s *ProductService) adjustCount(ctx context.Context, categoryID uint, delta int) {
	if err := s.categories.AdjustProductCount(ctx, categoryID, delta); err != nil {
		zap.L().Warn("Failed to adjust category product count",
			zap.Uint("category_id", categoryID),
			zap.Int("delta", delta),
			zap.Error(err),
		)
	}
}
