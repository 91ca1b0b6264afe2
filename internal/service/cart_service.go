package service

import (
	"context"
	"errors"

	"bookstore/internal/gateway"
	"bookstore/internal/model"
	"bookstore/internal/notify"

	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	engine   CartEngine
	products gateway.ProductGateway
	notifier notify.Notifier
	logger   zerolog.Logger
}

// NewCartService creates a new cart service. The notifier receives failures
// that happen before the engine is reached, such as a failed product lookup.
func NewCartService(engine CartEngine, products gateway.ProductGateway, notifier notify.Notifier, logger zerolog.Logger) CartService {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &cartService{
		engine:   engine,
		products: products,
		notifier: notifier,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) View(_ context.Context) model.CartView {
	return s.engine.View()
}

func (s *cartService) Count(_ context.Context) int64 {
	return s.engine.Totals().ItemCount
}

// AddProduct fetches the current product data so the line is priced from the
// catalogue rather than from client input.
func (s *cartService) AddProduct(ctx context.Context, productID int64, quantity int) (model.CartView, error) {
	if productID <= 0 {
		s.notifier.Notify(notify.Error, model.ErrInvalidProduct.Message)
		return s.engine.View(), model.ErrInvalidProduct
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("product_id", productID).Msg("failed to look up product")
		s.notifier.Notify(notify.Error, lookupFailureMessage(err))
		return s.engine.View(), err
	}

	if err := s.engine.AddItem(ctx, *product, quantity); err != nil {
		return s.engine.View(), err
	}

	s.logger.Debug().
		Int64("product_id", productID).
		Int("quantity", quantity).
		Msg("product added to cart")

	return s.engine.View(), nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, productID int64, quantity int) (model.CartView, error) {
	err := s.engine.UpdateQuantity(ctx, productID, quantity)
	return s.engine.View(), err
}

func (s *cartService) Remove(ctx context.Context, productID int64) (model.CartView, error) {
	err := s.engine.RemoveItem(ctx, productID)
	return s.engine.View(), err
}

func (s *cartService) Clear(ctx context.Context) (model.CartView, error) {
	err := s.engine.Clear(ctx)
	return s.engine.View(), err
}

func (s *cartService) SetCoupon(_ context.Context, code string) model.CartView {
	s.engine.SetCouponCode(code)
	return s.engine.View()
}

func (s *cartService) ApplyCoupon(ctx context.Context, code *string) (model.CartView, error) {
	if code != nil {
		s.engine.SetCouponCode(*code)
	}
	err := s.engine.ApplyCoupon(ctx)
	return s.engine.View(), err
}

func lookupFailureMessage(err error) string {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "Could not add this book to your cart"
}
