package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// ValidOrderStatus reports whether s is a status an order may be set to.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        *uint           `gorm:"index" json:"userId"`
	CustomerName  string          `gorm:"type:text;not null" json:"customerName"`
	CustomerEmail string          `gorm:"type:text;not null" json:"customerEmail"`
	CustomerPhone string          `gorm:"type:text;not null" json:"customerPhone"`
	Address       string          `gorm:"type:text;not null" json:"address"`
	City          string          `gorm:"type:text;not null" json:"city"`
	PostalCode    string          `gorm:"type:text" json:"postalCode"`
	PaymentMethod string          `gorm:"type:text;not null" json:"paymentMethod"`
	PaymentStatus string          `gorm:"type:varchar(20);not null;default:'pending'" json:"paymentStatus"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Notes         *string         `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"createdAt"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem snapshots the product name and price at checkout time.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"not null;index" json:"orderId"`
	ProductID    uint            `gorm:"not null" json:"productId"`
	ProductName  string          `gorm:"type:text;not null" json:"productName"`
	ProductPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"productPrice"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalPrice"`
	Product      *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	CartID        string  `json:"cartId" binding:"required"`
	CustomerName  string  `json:"customerName" binding:"required,min=2,max=200"`
	CustomerEmail string  `json:"customerEmail" binding:"required,email"`
	CustomerPhone string  `json:"customerPhone" binding:"required,min=5,max=30"`
	Address       string  `json:"address" binding:"required,min=5"`
	City          string  `json:"city" binding:"required,min=2"`
	PostalCode    string  `json:"postalCode" binding:"omitempty,max=20"`
	PaymentMethod string  `json:"paymentMethod" binding:"required"`
	Notes         *string `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
}

// OrderSearchParams are the query parameters of GET /api/orders.
type OrderSearchParams struct {
	Query     string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

type OrderList struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// OrderCreatedEvent is published to SNS after checkout.
type OrderCreatedEvent struct {
	OrderID       uint            `json:"order_id"`
	CustomerEmail string          `json:"customer_email"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ItemCount     int             `json:"item_count"`
}
