package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item. SKU and Slug are unique across the table.
type Product struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	SKU              string           `gorm:"column:sku;type:text;uniqueIndex;not null" json:"sku"`
	Name             string           `gorm:"type:text;not null" json:"name"`
	Slug             string           `gorm:"type:text;uniqueIndex;not null" json:"slug"`
	Description      *string          `gorm:"type:text" json:"description"`
	ShortDescription *string          `gorm:"type:text" json:"shortDescription"`
	Price            decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	OriginalPrice    *decimal.Decimal `gorm:"type:decimal(10,2)" json:"originalPrice"`
	ImageURL         *string          `gorm:"column:image_url;type:text" json:"imageUrl"`
	Stock            int              `gorm:"not null;default:0" json:"stock"`
	CategoryID       uint             `gorm:"not null;index" json:"categoryId"`
	Rating           decimal.Decimal  `gorm:"type:decimal(3,1);not null;default:0" json:"rating"`
	ReviewCount      int              `gorm:"not null;default:0" json:"reviewCount"`
	IsActive         bool             `gorm:"not null;default:true" json:"isActive"`
	IsFeatured       bool             `gorm:"not null;default:false" json:"isFeatured"`
	Tag              *string          `gorm:"type:text" json:"tag"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"createdAt"`
}

// ProductInput is the admin create payload. Price accepts a JSON number or a
// numeric string.
type ProductInput struct {
	SKU              string           `json:"sku" binding:"required,max=100"`
	Name             string           `json:"name" binding:"required,min=1,max=500"`
	Slug             string           `json:"slug" binding:"omitempty,max=100"`
	Description      *string          `json:"description"`
	ShortDescription *string          `json:"shortDescription"`
	Price            decimal.Decimal  `json:"price" binding:"required"`
	OriginalPrice    *decimal.Decimal `json:"originalPrice"`
	ImageURL         *string          `json:"imageUrl"`
	Stock            *int             `json:"stock" binding:"omitempty,gte=0"`
	CategoryID       uint             `json:"categoryId" binding:"required,gte=1"`
	IsActive         *bool            `json:"isActive"`
	IsFeatured       *bool            `json:"isFeatured"`
	Tag              *string          `json:"tag"`
}

// ProductUpdate is the admin PATCH payload; nil fields are left unchanged.
type ProductUpdate struct {
	SKU              *string          `json:"sku" binding:"omitempty,max=100"`
	Name             *string          `json:"name" binding:"omitempty,min=1,max=500"`
	Slug             *string          `json:"slug" binding:"omitempty,max=100"`
	Description      *string          `json:"description"`
	ShortDescription *string          `json:"shortDescription"`
	Price            *decimal.Decimal `json:"price"`
	OriginalPrice    *decimal.Decimal `json:"originalPrice"`
	ImageURL         *string          `json:"imageUrl"`
	Stock            *int             `json:"stock" binding:"omitempty,gte=0"`
	CategoryID       *uint            `json:"categoryId" binding:"omitempty,gte=1"`
	IsActive         *bool            `json:"isActive"`
	IsFeatured       *bool            `json:"isFeatured"`
	Tag              *string          `json:"tag"`
}

// Sort orders accepted by product search.
const (
	SortFeatured  = "featured"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortNewest    = "newest"
	SortPopular   = "popular"
)

// ProductSearchParams are the query parameters of GET /api/products.
type ProductSearchParams struct {
	Query           string           `json:"query,omitempty"`
	CategoryID      uint             `json:"categoryId,omitempty"`
	MinPrice        *decimal.Decimal `json:"minPrice,omitempty"`
	MaxPrice        *decimal.Decimal `json:"maxPrice,omitempty"`
	Sort            string           `json:"sort,omitempty"`
	Page            int              `json:"page"`
	Limit           int              `json:"limit"`
	IncludeInactive bool             `json:"includeInactive,omitempty"`
}

// Pagination is returned next to every paged list.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination computes TotalPages for total rows split into pages of limit.
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// ProductList is the response body of a product search.
type ProductList struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}
