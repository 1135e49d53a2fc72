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
)

var (
	errCategoryNotFound  = apperrors.New(http.StatusNotFound, "Category not found", nil)
	errCategorySlugTaken = apperrors.New(http.StatusConflict, "Category with this slug already exists", nil)
)

type CategoryService struct {
	repo     repository.CategoryRepository
	products repository.ProductRepository
}

func NewCategoryService(repo repository.CategoryRepository, products repository.ProductRepository) *CategoryService {
	return &CategoryService{repo: repo, products: products}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.repo.FindAll(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, errCategoryNotFound)
	}
	return c, nil
}

// Create stores a new category. The slug is derived from the name when the
// request leaves it out.
func (s *CategoryService) Create(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error) {
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = importer.Slugify(req.Name)
	}
	icon := req.Icon
	if icon == "" {
		icon = importer.IconFor(req.Name)
	}

	category := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		Icon:        icon,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errCategorySlugTaken.Wrap(err)
		}
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, req models.UpdateCategoryRequest) (*models.Category, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		updates["slug"] = strings.TrimSpace(*req.Slug)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}

	c, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errCategorySlugTaken.Wrap(err)
		}
		return nil, mapNotFound(err, errCategoryNotFound)
	}
	return c, nil
}

// Delete refuses to remove a category that still has products.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	hasProducts, err := s.repo.HasProducts(ctx, id)
	if err != nil {
		return err
	}
	if hasProducts {
		return apperrors.ErrCategoryHasProducts
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapNotFound(err, errCategoryNotFound)
	}
	return nil
}

// Products lists the active products of a category.
func (s *CategoryService) Products(ctx context.Context, id uint) ([]models.Product, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.products.FindByCategory(ctx, id)
}

// mapNotFound turns a repository miss into appErr and passes other errors
// through.
func mapNotFound(err error, appErr *apperrors.Error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return appErr.Wrap(err)
	}
	return err
}
