package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"bookstore/internal/coupon"
	"bookstore/internal/model"
	"bookstore/internal/notify"
)

// Load restores the persisted cart and coupon. Saved items become visible
// immediately; their prices are then refreshed from the product service in
// the background, bounded by the configured refresh timeout. Ready is closed
// once that refresh has finished or was not needed.
//
// Storage failures are reported through the notifier and leave an empty cart.
// The returned error is informational: the engine is always usable afterwards.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	if e.loaded {
		e.mu.Unlock()
		return ErrAlreadyLoaded
	}
	e.loaded = true

	var errs []error

	items, found, err := e.store.ReadCart(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("Failed to read saved cart")
		e.notifier.Notify(notify.Error, "Could not restore your saved cart")
		errs = append(errs, fmt.Errorf("failed to read cart: %w", err))
		items, found = nil, false
	}

	var ids []int64
	if found && len(items) > 0 {
		e.items = slices.Clone(items)
		for _, item := range items {
			ids = append(ids, item.ID)
		}
	}

	code, found, err := e.store.ReadCoupon(ctx)
	switch {
	case err != nil:
		e.logger.Error().Err(err).Msg("Failed to read saved coupon")
		e.notifier.Notify(notify.Error, "Could not restore your coupon")
		errs = append(errs, fmt.Errorf("failed to read coupon: %w", err))
	case found && code != "":
		e.coupon = e.restoredCoupon(ctx, code)
	}
	e.mu.Unlock()

	e.logger.Info().
		Int("items", len(ids)).
		Bool("coupon_applied", e.Coupon().Applied).
		Msg("Cart restored")

	if len(ids) == 0 {
		e.markReady()
	} else {
		go e.refresh(context.WithoutCancel(ctx), ids)
	}

	return errors.Join(errs...)
}

// Ready returns a channel that is closed when the background refresh started
// by Load has completed.
func (e *Engine) Ready() <-chan struct{} {
	return e.ready
}

// WaitReady blocks until the background refresh has completed or ctx is done.
func (e *Engine) WaitReady(ctx context.Context) error {
	select {
	case <-e.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// restoredCoupon trusts a previously applied code. The rate comes from the
// validator when it still knows the code. Callers hold e.mu.
func (e *Engine) restoredCoupon(ctx context.Context, code string) model.CouponState {
	rate := coupon.DefaultRate
	if result := e.coupons.Validate(ctx, code); result.Valid {
		rate = result.DiscountRate
	}
	return model.CouponState{Code: code, Applied: true, DiscountRate: rate}
}

// refresh fetches fresh product data for ids and applies it to whatever lines
// are in the cart when the response arrives, keeping their quantities.
func (e *Engine) refresh(ctx context.Context, ids []int64) {
	defer e.markReady()

	fetchCtx, cancel := context.WithTimeout(ctx, e.config.RefreshTimeout)
	defer cancel()

	products, err := e.products.GetProductsByIDs(fetchCtx, ids)
	if err != nil {
		e.logger.Warn().Err(err).Int("items", len(ids)).Msg("Failed to refresh cart prices")
		e.notifier.Notify(notify.Error, "Could not refresh prices; showing your saved cart")
		return
	}

	fresh := make(map[int64]model.Product, len(products))
	for _, p := range products {
		fresh[p.ID] = p
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	refreshed := 0
	next := slices.Clone(e.items)
	for i := range next {
		if p, ok := fresh[next[i].ID]; ok {
			next[i].Refresh(p)
			refreshed++
		}
	}

	// Nothing matched, or the cart was cleared while the fetch was in
	// flight. Writing would turn an absent snapshot into an empty one.
	if refreshed == 0 {
		e.logger.Debug().Int("requested", len(ids)).Msg("No cart lines to refresh")
		return
	}

	// The refreshed prices are kept even if the write fails; the next
	// mutation persists them.
	e.items = next

	if err := e.store.WriteCart(ctx, next); err != nil {
		e.logger.Error().Err(err).Msg("Failed to save refreshed cart")
		e.notifier.Notify(notify.Error, "Could not save refreshed prices")
		return
	}

	e.logger.Debug().
		Int("requested", len(ids)).
		Int("refreshed", refreshed).
		Msg("Cart prices refreshed")
}

func (e *Engine) markReady() {
	e.readyOnce.Do(func() { close(e.ready) })
}
