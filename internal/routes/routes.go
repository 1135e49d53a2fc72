package routes

import (
	"net/http"

	"github.com/QJQnova/Eps-sub001/internal/controllers"
	"github.com/QJQnova/Eps-sub001/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the controllers mounted under /api.
type Handlers struct {
	Categories *controllers.CategoryController
	Products   *controllers.ProductController
	BulkImport *controllers.BulkImportHandler
	Presign    *controllers.PresignedURLHandler
	Cart       *controllers.CartController
	Orders     *controllers.OrderController
	Auth       *controllers.AuthController
}

func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
}

func RegisterCategoryRoutes(api *gin.RouterGroup, h *controllers.CategoryController, admin gin.HandlerFunc) {
	categoryRoutes := api.Group("/categories")
	{
		categoryRoutes.GET("", h.GetCategories)
		categoryRoutes.GET("/:id", h.GetCategory)
		categoryRoutes.GET("/:id/products", h.GetCategoryProducts)
		categoryRoutes.POST("", admin, h.CreateCategory)
		categoryRoutes.PATCH("/:id", admin, h.UpdateCategory)
		categoryRoutes.DELETE("/:id", admin, h.DeleteCategory)
	}
}

func RegisterProductRoutes(api *gin.RouterGroup, h Handlers, optional, admin gin.HandlerFunc) {
	productRoutes := api.Group("/products")
	{
		productRoutes.GET("", optional, h.Products.GetProducts)
		productRoutes.GET("/featured", h.Products.GetFeaturedProducts)
		productRoutes.GET("/slug/:slug", h.Products.GetProductBySlug)
		productRoutes.GET("/:id", h.Products.GetProduct)
		productRoutes.POST("", admin, h.Products.CreateProduct)
		productRoutes.PATCH("/:id", admin, h.Products.UpdateProduct)
		productRoutes.DELETE("/:id", admin, h.Products.DeleteProduct)

		productRoutes.POST("/bulk-import", admin, h.BulkImport.CreateBulkProducts)
		productRoutes.GET("/bulk-import/jobs/:id", admin, h.BulkImport.GetBulkImportJobStatus)
		productRoutes.POST("/images/presign", admin, h.Presign.PresignUpload)
	}
}

func RegisterCartRoutes(api *gin.RouterGroup, h *controllers.CartController) {
	cartRoutes := api.Group("/cart")
	{
		cartRoutes.GET("/:cartId", h.GetCart)
		cartRoutes.DELETE("/:cartId", h.ClearCart)
		cartRoutes.POST("/items", h.AddItem)
		cartRoutes.PATCH("/items/:id", h.UpdateItem)
		cartRoutes.DELETE("/items/:id", h.RemoveItem)
	}
}

func RegisterOrderRoutes(api *gin.RouterGroup, h *controllers.OrderController, admin gin.HandlerFunc) {
	orderRoutes := api.Group("/orders")
	{
		orderRoutes.POST("", h.CreateOrder)
		orderRoutes.GET("", admin, h.GetOrders)
		orderRoutes.GET("/:id", admin, h.GetOrder)
		orderRoutes.PATCH("/:id/status", admin, h.UpdateOrderStatus)
	}
}

func RegisterAuthRoutes(api *gin.RouterGroup, h *controllers.AuthController, auth gin.HandlerFunc) {
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
		authRoutes.POST("/logout", h.Logout)
		authRoutes.GET("/me", auth, h.Me)
	}
	api.POST("/simple-login", h.Login)
}

// Register mounts /health and every /api route on r.
func Register(r *gin.Engine, h Handlers, tokens middleware.TokenValidator) {
	admin := middleware.RequireAdmin(tokens)

	RegisterHealthRoutes(r)

	api := r.Group("/api")
	RegisterCategoryRoutes(api, h.Categories, admin)
	RegisterProductRoutes(api, h, middleware.OptionalAuth(tokens), admin)
	RegisterCartRoutes(api, h.Cart)
	RegisterOrderRoutes(api, h.Orders, admin)
	RegisterAuthRoutes(api, h.Auth, middleware.RequireAuth(tokens))
}
