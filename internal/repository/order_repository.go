package repository

import (
	"context"

	"github.com/QJQnova/Eps-sub001/internal/models"
	"gorm.io/gorm"
)

// OrderRepository defines data access for orders.
type OrderRepository interface {
	Checkout(ctx context.Context, order *models.Order, cartID string) error
	Search(ctx context.Context, params models.OrderSearchParams) ([]models.Order, int64, error)
	FindByID(ctx context.Context, id uint) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error)
}

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Checkout stores the order with its items and empties the cart in one
// transaction.
func (r *GormOrderRepository) Checkout(ctx context.Context, order *models.Order, cartID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
	})
}

func (r *GormOrderRepository) Search(ctx context.Context, p models.OrderSearchParams) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if p.Query != "" {
		like := "%" + p.Query + "%"
		query = query.Where("(customer_name ILIKE ? OR customer_email ILIKE ? OR customer_phone ILIKE ?)", like, like, like)
	}
	if p.Status != "" && p.Status != "all" {
		query = query.Where("status = ?", p.Status)
	}
	if p.StartDate != nil {
		query = query.Where("created_at >= ?", *p.StartDate)
	}
	if p.EndDate != nil {
		query = query.Where("created_at <= ?", *p.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (p.Page - 1) * p.Limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(p.Limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items.Product").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	result := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
