package controllers

import (
	"net/http"

	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CategoryController struct {
	categories CategoryServiceAPI
}

func NewCategoryController(categories CategoryServiceAPI) *CategoryController {
	return &CategoryController{categories: categories}
}

// GetCategories lists every category ordered by name.
func (cc *CategoryController) GetCategories(c *gin.Context) {
	categories, err := cc.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (cc *CategoryController) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	category, err := cc.categories.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// GetCategoryProducts lists the active products of one category.
func (cc *CategoryController) GetCategoryProducts(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	products, err := cc.categories.Products(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	category, err := cc.categories.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	zap.L().Info("Category created", zap.Uint("category_id", category.ID), zap.String("slug", category.Slug))
	c.JSON(http.StatusCreated, category)
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	category, err := cc.categories.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := cc.categories.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	zap.L().Info("Category deleted", zap.Uint("category_id", id))
	c.Status(http.StatusNoContent)
}
