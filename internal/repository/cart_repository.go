package repository

import (
	"context"

	"github.com/QJQnova/Eps-sub001/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository defines data access for cart lines.
type CartRepository interface {
	FindByCart(ctx context.Context, cartID string) ([]models.CartItem, error)
	FindByID(ctx context.Context, id uint) (*models.CartItem, error)
	AddOrIncrement(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, id uint, quantity int) (*models.CartItem, error)
	Delete(ctx context.Context, id uint) error
	Clear(ctx context.Context, cartID string) error
}

type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByCart returns the cart lines with their products. Lines whose product
// no longer exists are dropped.
func (r *GormCartRepository) FindByCart(ctx context.Context, cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Joins("Product").
		Where("cart_items.cart_id = ?", cartID).
		Order("cart_items.added_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for _, it := range items {
		if it.Product != nil && it.Product.ID != 0 {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *GormCartRepository) FindByID(ctx context.Context, id uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// AddOrIncrement inserts the line, or adds its quantity to the existing line
// for the same cart and product.
func (r *GormCartRepository) AddOrIncrement(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
			}),
		}, clause.Returning{}).
		Create(item).Error
}

func (r *GormCartRepository) UpdateQuantity(ctx context.Context, id uint, quantity int) (*models.CartItem, error) {
	result := r.db.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", id).Update("quantity", quantity)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *GormCartRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.CartItem{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear empties the cart. Clearing an empty cart is not an error.
func (r *GormCartRepository) Clear(ctx context.Context, cartID string) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
