package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one product line of an anonymous cart identified by CartID.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    string    `gorm:"type:text;not null;index:idx_cart_product,unique" json:"cartId"`
	ProductID uint      `gorm:"not null;index:idx_cart_product,unique" json:"productId"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	AddedAt   time.Time `gorm:"autoCreateTime" json:"addedAt"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

type AddCartItemRequest struct {
	CartID    string `json:"cartId" binding:"required,max=100"`
	ProductID uint   `json:"productId" binding:"required,gte=1"`
	Quantity  int    `json:"quantity" binding:"omitempty,gte=1,lte=1000"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gte=1,lte=1000"`
}

// Cart is the GET /api/cart/:cartId response.
type Cart struct {
	Items     []CartItem      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"itemCount"`
}
