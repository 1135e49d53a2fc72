package services

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/QJQnova/Eps-sub001/internal/errors"
	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/QJQnova/Eps-sub001/internal/repository"
	"github.com/shopspring/decimal"
)

var errCartItemNotFound = apperrors.New(http.StatusNotFound, "Cart item not found", nil)

type CartService struct {
	items    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(items repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{items: items, products: products}
}

// Get returns the cart with its subtotal at current product prices.
func (s *CartService) Get(ctx context.Context, cartID string) (*models.Cart, error) {
	items, err := s.items.FindByCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return summarize(items), nil
}

func summarize(items []models.CartItem) *models.Cart {
	cart := &models.Cart{Items: items, Subtotal: decimal.Zero}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	for _, it := range items {
		if it.Product == nil {
			continue
		}
		cart.Subtotal = cart.Subtotal.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		cart.ItemCount += it.Quantity
	}
	return cart
}

// Add puts a product into the cart, merging with an existing line for the
// same product.
func (s *CartService) Add(ctx context.Context, req models.AddCartItemRequest) (*models.CartItem, error) {
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, mapNotFound(err, errProductNotFound)
	}
	qty := req.Quantity
	if qty < 1 {
		qty = 1
	}
	item := &models.CartItem{
		CartID:    strings.TrimSpace(req.CartID),
		ProductID: product.ID,
		Quantity:  qty,
	}
	if err := s.items.AddOrIncrement(ctx, item); err != nil {
		return nil, err
	}
	item.Product = product
	return item, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, id uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, apperrors.ErrValidation
	}
	item, err := s.items.UpdateQuantity(ctx, id, quantity)
	if err != nil {
		return nil, mapNotFound(err, errCartItemNotFound)
	}
	return item, nil
}

func (s *CartService) Remove(ctx context.Context, id uint) error {
	return mapNotFound(s.items.Delete(ctx, id), errCartItemNotFound)
}

func (s *CartService) Clear(ctx context.Context, cartID string) error {
	return s.items.Clear(ctx, cartID)
}
