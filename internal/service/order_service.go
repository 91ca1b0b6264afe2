package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookstore/internal/gateway"
	"bookstore/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	engine CartEngine
	orders gateway.OrderGateway
	logger zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(engine CartEngine, orders gateway.OrderGateway, logger zerolog.Logger) OrderService {
	return &orderService{
		engine: engine,
		orders: orders,
		logger: logger.With().Str("service", "order").Logger(),
	}
}

// Checkout places an order for the current cart. The cart is only priced once
// the startup price refresh has finished, so the order never carries stale
// prices that the backend has already changed.
func (s *orderService) Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.Order, error) {
	if err := s.validateCheckoutRequest(req); err != nil {
		return nil, err
	}

	if err := s.engine.WaitReady(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for cart refresh: %w", err)
	}

	view := s.engine.View()
	if len(view.Items) == 0 {
		s.logger.Warn().Msg("checkout attempted with empty cart")
		return nil, model.ErrEmptyCart
	}

	orderReq := buildOrderRequest(req, view)
	key := uuid.NewString()

	order, err := s.orders.CreateOrder(ctx, key, orderReq)
	if err != nil {
		s.logger.Error().Err(err).
			Str("idempotency_key", key).
			Int("item_count", len(orderReq.Items)).
			Msg("failed to submit order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// The order exists now; a failure to clear is reported but not returned.
	if err := s.engine.Clear(ctx); err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to clear cart after checkout")
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Int("item_count", len(orderReq.Items)).
		Int64("total", orderReq.Total).
		Msg("order placed successfully")

	return order, nil
}

// List returns the order history.
func (s *orderService) List(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves an order by its ID.
func (s *orderService) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if id <= 0 {
		return nil, model.ErrOrderNotFound
	}

	order, err := s.orders.GetOrder(ctx, id)
	if errors.Is(err, model.ErrOrderNotFound) {
		s.logger.Debug().Int64("order_id", id).Msg("order not found")
		return nil, err
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", id).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// validateCheckoutRequest checks required fields and defaults the payment method.
func (s *orderService) validateCheckoutRequest(req *model.CheckoutRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "Checkout request is required")
	}

	required := []struct {
		name  string
		value string
	}{
		{"customer_name", req.CustomerName},
		{"phone", req.Phone},
		{"address", req.Address},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			s.logger.Warn().Str("field", field.name).Msg("checkout field missing")
			return model.NewDomainError(model.ErrCodeMissingField, field.name+" is required")
		}
	}

	switch req.PaymentMethod {
	case "":
		req.PaymentMethod = model.PaymentCashOnDelivery
	case model.PaymentCashOnDelivery, model.PaymentBankTransfer:
	default:
		return model.NewDomainError(model.ErrCodeMissingField, "payment_method must be cod or bank_transfer")
	}

	return nil
}

func buildOrderRequest(req *model.CheckoutRequest, view model.CartView) *model.OrderRequest {
	items := make([]model.OrderItemRequest, len(view.Items))
	for i, item := range view.Items {
		items[i] = model.OrderItemRequest{
			ProductID: item.ID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	orderReq := &model.OrderRequest{
		CustomerName:  strings.TrimSpace(req.CustomerName),
		Phone:         strings.TrimSpace(req.Phone),
		Address:       strings.TrimSpace(req.Address),
		Email:         req.Email,
		Note:          req.Note,
		PaymentMethod: req.PaymentMethod,
		Items:         items,
		Subtotal:      view.Totals.Subtotal,
		Discount:      view.Totals.Discount,
		Shipping:      view.Totals.Shipping,
		Total:         view.Totals.Total,
	}
	if view.Coupon.Applied {
		code := view.Coupon.Code
		orderReq.CouponCode = &code
	}
	return orderReq
}
