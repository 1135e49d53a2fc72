package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	aws_pkg "github.com/QJQnova/Eps-sub001/internal/aws"
	apperrors "github.com/QJQnova/Eps-sub001/internal/errors"
	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/QJQnova/Eps-sub001/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultOrderLimit = 10
	MaxOrderLimit     = 100

	EventOrderCreated = "order.created"

	orderEventsDeadline = 5 * time.Second
)

var (
	errOrderNotFound = apperrors.New(http.StatusNotFound, "Order not found", nil)
	errInvalidStatus = apperrors.New(http.StatusBadRequest, "Invalid order status", nil)
)

type OrderService struct {
	orders  repository.OrderRepository
	cart    repository.CartRepository
	events  aws_pkg.SNSPublisher
	topic   string
	metrics aws_pkg.MetricsRecorder
}

// NewOrderService wires checkout. events and metrics may be nil.
func NewOrderService(orders repository.OrderRepository, cart repository.CartRepository, events aws_pkg.SNSPublisher, topic string, metrics aws_pkg.MetricsRecorder) *OrderService {
	return &OrderService{orders: orders, cart: cart, events: events, topic: topic, metrics: metrics}
}

// Create turns the cart into an order priced at current product prices and
// empties the cart in the same transaction.
func (s *OrderService) Create(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	items, err := s.cart.FindByCart(ctx, req.CartID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.ErrEmptyCart
	}

	order := &models.Order{
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Address:       strings.TrimSpace(req.Address),
		City:          strings.TrimSpace(req.City),
		PostalCode:    strings.TrimSpace(req.PostalCode),
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: "pending",
		Status:        models.OrderStatusPending,
		Notes:         req.Notes,
		TotalAmount:   decimal.Zero,
	}
	itemCount := 0
	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		line := models.OrderItem{
			ProductID:    it.ProductID,
			ProductName:  it.Product.Name,
			ProductPrice: it.Product.Price,
			Quantity:     it.Quantity,
			TotalPrice:   it.Product.Price.Mul(qty),
		}
		order.Items = append(order.Items, line)
		order.TotalAmount = order.TotalAmount.Add(line.TotalPrice)
		itemCount += it.Quantity
	}

	if err := s.orders.Checkout(ctx, order, req.CartID); err != nil {
		return nil, err
	}

	zap.L().Info("Order created",
		zap.Uint("order_id", order.ID),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.Int("items", itemCount),
	)
	s.afterCreate(ctx, order, itemCount)
	return order, nil
}

// afterCreate publishes the order event and metric. Neither affects the
// checkout result.
func (s *OrderService) afterCreate(ctx context.Context, order *models.Order, itemCount int) {
	evCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), orderEventsDeadline)
	defer cancel()

	event := models.OrderCreatedEvent{
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		TotalAmount:   order.TotalAmount,
		ItemCount:     itemCount,
	}
	if err := aws_pkg.PublishEvent(evCtx, s.events, s.topic, EventOrderCreated, event); err != nil {
		zap.L().Warn("Failed to publish order event", zap.Uint("order_id", order.ID), zap.Error(err))
	}
	if s.metrics != nil {
		if err := s.metrics.RecordCount(evCtx, aws_pkg.MetricOrdersCreated, 1, nil); err != nil {
			zap.L().Warn("Failed to record order metric", zap.Error(err))
		}
	}
}

func (s *OrderService) Search(ctx context.Context, params models.OrderSearchParams) (*models.OrderList, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = DefaultOrderLimit
	}
	if params.Limit > MaxOrderLimit {
		params.Limit = MaxOrderLimit
	}
	params.Query = strings.TrimSpace(params.Query)
	if params.Status != "" && params.Status != "all" && !models.ValidOrderStatus(params.Status) {
		return nil, errInvalidStatus
	}

	orders, total, err := s.orders.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &models.OrderList{
		Orders:     orders,
		Pagination: models.NewPagination(params.Page, params.Limit, total),
	}, nil
}

func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, errOrderNotFound)
	}
	return o, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, errInvalidStatus
	}
	o, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, mapNotFound(err, errOrderNotFound)
	}
	zap.L().Info("Order status updated", zap.Uint("order_id", id), zap.String("status", status))
	return o, nil
}
