package controllers

import (
	"net/http"
	"strings"

	"github.com/QJQnova/Eps-sub001/internal/middleware"
	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/QJQnova/Eps-sub001/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProductController struct {
	products  ProductServiceAPI
	cache     *CacheManager
	validator *RequestValidator
}

func NewProductController(products ProductServiceAPI, cache *CacheManager, validator *RequestValidator) *ProductController {
	return &ProductController{products: products, cache: cache, validator: validator}
}

// GetProducts searches the catalog. Only admins may see inactive products;
// the flag is silently dropped for everyone else.
func (pc *ProductController) GetProducts(c *gin.Context) {
	params, err := pc.validator.ParseProductSearch(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if params.IncludeInactive {
		if claims := middleware.ClaimsFrom(c); claims == nil || !claims.IsAdmin() {
			params.IncludeInactive = false
		}
	}
	params = services.NormalizeSearch(params)

	ctx := c.Request.Context()
	if list, ok := pc.cache.GetProductList(ctx, params); ok {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, list)
		return
	}

	list, err := pc.products.Search(ctx, params)
	if err != nil {
		respondError(c, err)
		return
	}
	pc.cache.SetProductListAsync(params, list)

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, list)
}

func (pc *ProductController) GetFeaturedProducts(c *gin.Context) {
	products, err := pc.products.Featured(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if p, ok := pc.cache.GetProduct(ctx, id); ok {
		c.JSON(http.StatusOK, p)
		return
	}
	product, err := pc.products.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	pc.cache.SetProductAsync(product)
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) GetProductBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		badRequest(c, "Slug is required")
		return
	}
	product, err := pc.products.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	var in models.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindingError(c, err)
		return
	}
	ctx := c.Request.Context()
	product, err := pc.products.Create(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := pc.cache.Invalidate(ctx); err != nil {
		zap.L().Error("Failed to invalidate cache after create", zap.Error(err))
	}
	zap.L().Info("Product created", zap.Uint("product_id", product.ID), zap.String("sku", product.SKU))
	c.JSON(http.StatusCreated, product)
}

func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var upd models.ProductUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		bindingError(c, err)
		return
	}
	ctx := c.Request.Context()
	product, err := pc.products.Update(ctx, id, upd)
	if err != nil {
		respondError(c, err)
		return
	}
	pc.cache.InvalidateProduct(ctx, id)
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := pc.products.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	pc.cache.InvalidateProduct(ctx, id)
	zap.L().Info("Product deleted", zap.Uint("product_id", id))
	c.Status(http.StatusNoContent)
}
