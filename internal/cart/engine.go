// Package cart owns the shopping cart state: its items, the entered coupon
// and the totals derived from them.
package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"bookstore/internal/coupon"
	"bookstore/internal/model"
	"bookstore/internal/notify"
	"bookstore/internal/storage"

	"github.com/rs/zerolog"
)

// DefaultRefreshTimeout bounds the product refresh started by Load.
const DefaultRefreshTimeout = 10 * time.Second

// ErrAlreadyLoaded is returned when Load is called more than once.
var ErrAlreadyLoaded = errors.New("cart already loaded")

// ProductFetcher looks up current product data in one batched call. Ids with
// no matching product are absent from the result.
type ProductFetcher interface {
	GetProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
}

// Config tunes the engine.
type Config struct {
	Pricing        PricingRules
	RefreshTimeout time.Duration
}

// DefaultConfig returns the standard pricing rules and refresh timeout.
func DefaultConfig() Config {
	return Config{
		Pricing:        DefaultPricingRules(),
		RefreshTimeout: DefaultRefreshTimeout,
	}
}

// Engine is the authoritative cart for one session. All methods are safe for
// concurrent use; mutations are applied one at a time in call order.
//
// Every mutation writes through to the store before it changes memory, so a
// failed write leaves the cart as it was. Each mutation emits exactly one
// notification and also returns its error.
type Engine struct {
	store    storage.CartStore
	products ProductFetcher
	coupons  coupon.Validator
	notifier notify.Notifier
	config   Config
	logger   zerolog.Logger

	mu     sync.Mutex
	items  []model.CartItem
	coupon model.CouponState
	loaded bool

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates an engine with an empty cart. Call Load to restore the
// persisted snapshot.
func New(
	store storage.CartStore,
	products ProductFetcher,
	coupons coupon.Validator,
	notifier notify.Notifier,
	config Config,
	logger zerolog.Logger,
) *Engine {
	if notifier == nil {
		notifier = notify.Discard
	}
	if config.RefreshTimeout <= 0 {
		config.RefreshTimeout = DefaultRefreshTimeout
	}

	return &Engine{
		store:    store,
		products: products,
		coupons:  coupons,
		notifier: notifier,
		config:   config,
		logger:   logger.With().Str("component", "cart-engine").Logger(),
		ready:    make(chan struct{}),
	}
}

// AddItem puts quantity units of product in the cart. A product already in the
// cart has its quantity increased instead of getting a second line.
func (e *Engine) AddItem(ctx context.Context, product model.Product, quantity int) error {
	if product.ID <= 0 {
		return e.reject(model.ErrInvalidProduct)
	}
	if quantity < 1 {
		return e.reject(model.ErrInvalidQuantity)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := slices.Clone(e.items)
	if i := indexOf(next, product.ID); i >= 0 {
		next[i].Quantity += quantity
	} else {
		next = append(next, model.NewCartItem(product, quantity))
	}

	if err := e.store.WriteCart(ctx, next); err != nil {
		return e.failWrite("Could not add the item to your cart", err,
			e.logger.Error().Int64("product_id", product.ID).Int("quantity", quantity))
	}

	e.items = next
	e.notifier.Notify(notify.Success, fmt.Sprintf("Added %q to your cart", product.Name))
	return nil
}

// UpdateQuantity sets the quantity of a cart line. Quantities below one are
// rejected without touching the cart. An id that is not in the cart is a no-op.
func (e *Engine) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		return e.reject(model.ErrInvalidQuantity)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	i := indexOf(e.items, productID)
	if i < 0 {
		e.notifier.Notify(notify.Success, "Cart updated")
		return nil
	}

	next := slices.Clone(e.items)
	next[i].Quantity = quantity

	if err := e.store.WriteCart(ctx, next); err != nil {
		return e.failWrite("Could not update the quantity", err,
			e.logger.Error().Int64("product_id", productID).Int("quantity", quantity))
	}

	e.items = next
	e.notifier.Notify(notify.Success, "Cart updated")
	return nil
}

// RemoveItem deletes a cart line. Removing an id that is not in the cart is a no-op.
func (e *Engine) RemoveItem(ctx context.Context, productID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := indexOf(e.items, productID)
	if i < 0 {
		e.notifier.Notify(notify.Success, "Item removed from your cart")
		return nil
	}

	next := slices.Delete(slices.Clone(e.items), i, i+1)

	if err := e.store.WriteCart(ctx, next); err != nil {
		return e.failWrite("Could not remove the item", err,
			e.logger.Error().Int64("product_id", productID))
	}

	e.items = next
	e.notifier.Notify(notify.Success, "Item removed from your cart")
	return nil
}

// Clear empties the cart and deletes the persisted snapshot. The coupon is kept.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.DeleteCart(ctx); err != nil {
		return e.failWrite("Could not clear your cart", err, e.logger.Error())
	}

	e.items = nil
	e.notifier.Notify(notify.Success, "Cart cleared")
	return nil
}

// SetCouponCode records the code the customer typed without validating it.
// Changing to a different code withdraws a previously applied discount.
func (e *Engine) SetCouponCode(code string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if coupon.Normalize(code) != coupon.Normalize(e.coupon.Code) {
		e.coupon = model.CouponState{Code: code}
		return
	}
	e.coupon.Code = code
}

// ApplyCoupon validates the current coupon code. A recognised code is applied
// and persisted as entered; any other code is unapplied and its persisted
// entry removed, and ErrInvalidCoupon is returned.
func (e *Engine) ApplyCoupon(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	code := e.coupon.Code
	result := e.coupons.Validate(ctx, code)

	if !result.Valid {
		if err := e.store.DeleteCoupon(ctx); err != nil {
			return e.failWrite("Could not update your coupon", err,
				e.logger.Error().Str("coupon", code))
		}
		e.coupon = model.CouponState{Code: code}
		e.notifier.Notify(notify.Error, model.ErrInvalidCoupon.Message)
		return model.ErrInvalidCoupon
	}

	if err := e.store.WriteCoupon(ctx, code); err != nil {
		return e.failWrite("Could not apply your coupon", err,
			e.logger.Error().Str("coupon", code))
	}

	e.coupon = model.CouponState{Code: code, Applied: true, DiscountRate: result.DiscountRate}
	e.notifier.Notify(notify.Success,
		fmt.Sprintf("Coupon %s applied: %s%% off", result.Code, result.DiscountRate.Shift(2).String()))
	return nil
}

// Items returns a copy of the cart lines in insertion order.
func (e *Engine) Items() []model.CartItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	return slices.Clone(e.items)
}

// Coupon returns the current coupon state.
func (e *Engine) Coupon() model.CouponState {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.coupon
}

// Totals computes the cart amounts.
func (e *Engine) Totals() model.Totals {
	e.mu.Lock()
	defer e.mu.Unlock()

	return ComputeTotals(e.items, e.coupon, e.config.Pricing)
}

// View returns items, coupon and totals from a single consistent state.
func (e *Engine) View() model.CartView {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := slices.Clone(e.items)
	if items == nil {
		items = []model.CartItem{}
	}

	return model.CartView{
		Items:  items,
		Coupon: e.coupon,
		Totals: ComputeTotals(e.items, e.coupon, e.config.Pricing),
	}
}

// reject reports a validation failure.
func (e *Engine) reject(err *model.DomainError) error {
	e.notifier.Notify(notify.Error, err.Message)
	return err
}

// failWrite reports a store failure. Callers hold e.mu.
func (e *Engine) failWrite(message string, err error, event *zerolog.Event) error {
	event.Err(err).Msg(message)
	e.notifier.Notify(notify.Error, message)
	return fmt.Errorf("failed to persist cart: %w", err)
}

func indexOf(items []model.CartItem, productID int64) int {
	return slices.IndexFunc(items, func(item model.CartItem) bool {
		return item.ID == productID
	})
}
