package repository

import (
	"context"

	"github.com/QJQnova/Eps-sub001/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines data access for products.
type ProductRepository interface {
	Search(ctx context.Context, params models.ProductSearchParams) ([]models.Product, int64, error)
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	FindFeatured(ctx context.Context, limit int) ([]models.Product, error)
	FindByCategory(ctx context.Context, categoryID uint) ([]models.Product, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ExistingSKUs(ctx context.Context, skus []string) (map[string]bool, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Product, error)
	Delete(ctx context.Context, id uint) (*models.Product, error)
	WriteBatch(ctx context.Context, products []models.Product, upsert bool) (int64, error)
}

// upsertColumns are refreshed when an import row matches an existing SKU.
// Slug is left alone so product URLs stay stable.
var upsertColumns = []string{
	"name", "description", "short_description", "price", "image_url", "category_id", "stock",
}

// GormProductRepository implements ProductRepository using GORM.
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Search(ctx context.Context, p models.ProductSearchParams) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if !p.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if p.Query != "" {
		like := "%" + p.Query + "%"
		query = query.Where("(name ILIKE ? OR description ILIKE ?)", like, like)
	}
	if p.CategoryID > 0 {
		query = query.Where("category_id = ?", p.CategoryID)
	}
	if p.MinPrice != nil {
		query = query.Where("price >= ?", *p.MinPrice)
	}
	if p.MaxPrice != nil {
		query = query.Where("price <= ?", *p.MaxPrice)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (p.Page - 1) * p.Limit
	if err := query.
		Order(sortClause(p.Sort)).
		Offset(offset).
		Limit(p.Limit).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func sortClause(sort string) string {
	switch sort {
	case models.SortPriceLow:
		return "price ASC, id ASC"
	case models.SortPriceHigh:
		return "price DESC, id ASC"
	case models.SortNewest:
		return "id DESC"
	case models.SortPopular:
		return "is_featured DESC, review_count DESC, id DESC"
	default:
		return "is_featured DESC, name ASC"
	}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) FindFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("is_featured = ? AND is_active = ?", true, true).
		Order("id DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *GormProductRepository) FindByCategory(ctx context.Context, categoryID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *GormProductRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// ExistingSKUs returns the subset of skus already stored.
func (r *GormProductRepository) ExistingSKUs(ctx context.Context, skus []string) (map[string]bool, error) {
	found := make(map[string]bool, len(skus))
	if len(skus) == 0 {
		return found, nil
	}
	var rows []string
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("sku IN ?", skus).Pluck("sku", &rows).Error; err != nil {
		return nil, err
	}
	for _, s := range rows {
		found[s] = true
	}
	return found, nil
}

func (r *GormProductRepository) Create(ctx context.Context, product *models.Product) error {
	return translate(r.db.WithContext(ctx).Create(product).Error)
}

func (r *GormProductRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Product, error) {
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes the product and returns the deleted row.
func (r *GormProductRepository) Delete(ctx context.Context, id uint) (*models.Product, error) {
	var deleted []models.Product
	result := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(&deleted)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 || len(deleted) == 0 {
		return nil, ErrNotFound
	}
	return &deleted[0], nil
}

// WriteBatch stores products with one multi-row INSERT. Without upsert,
// rows that collide on any unique key are left untouched; with upsert, rows
// matching an existing SKU have upsertColumns refreshed. It returns the
// number of rows the statement affected.
func (r *GormProductRepository) WriteBatch(ctx context.Context, products []models.Product, upsert bool) (int64, error) {
	if len(products) == 0 {
		return 0, nil
	}
	onConflict := clause.OnConflict{DoNothing: true}
	if upsert {
		onConflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "sku"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}
	}
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{SkipHooks: true}).
		Clauses(onConflict).
		CreateInBatches(products, len(products))
	if result.Error != nil {
		return 0, translate(result.Error)
	}
	return result.RowsAffected, nil
}
