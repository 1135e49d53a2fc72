package models

// Category groups products in the catalog. ProductCount is maintained by the
// product service and the import pipeline.
type Category struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Name         string  `gorm:"type:text;not null;index" json:"name"`
	Slug         string  `gorm:"type:text;uniqueIndex;not null" json:"slug"`
	Description  *string `gorm:"type:text" json:"description"`
	Icon         string  `gorm:"type:text;default:'tool'" json:"icon"`
	ProductCount int     `gorm:"not null;default:0" json:"productCount"`
}

// CreateCategoryRequest is the payload for POST /api/categories.
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=200"`
	Slug        string  `json:"slug" binding:"omitempty,max=100"`
	Description *string `json:"description"`
	Icon        string  `json:"icon" binding:"omitempty,max=50"`
}

// UpdateCategoryRequest is the payload for PATCH /api/categories/:id.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=200"`
	Slug        *string `json:"slug" binding:"omitempty,max=100"`
	Description *string `json:"description"`
	Icon        *string `json:"icon" binding:"omitempty,max=50"`
}
