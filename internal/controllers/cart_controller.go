package controllers

import (
	"net/http"
	"strings"

	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/gin-gonic/gin"
)

// CartController serves anonymous carts keyed by a client-generated cartId.
type CartController struct {
	carts CartServiceAPI
}

func NewCartController(carts CartServiceAPI) *CartController {
	return &CartController{carts: carts}
}

func cartIDParam(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("cartId"))
	if id == "" || len(id) > 100 {
		badRequest(c, "Invalid cart ID")
		return "", false
	}
	return id, true
}

func (cc *CartController) GetCart(c *gin.Context) {
	cartID, ok := cartIDParam(c)
	if !ok {
		return
	}
	cart, err := cc.carts.Get(c.Request.Context(), cartID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (cc *CartController) AddItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	item, err := cc.carts.Add(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (cc *CartController) UpdateItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	item, err := cc.carts.UpdateQuantity(c.Request.Context(), id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := cc.carts.Remove(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (cc *CartController) ClearCart(c *gin.Context) {
	cartID, ok := cartIDParam(c)
	if !ok {
		return
	}
	if err := cc.carts.Clear(c.Request.Context(), cartID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
