// Package storage persists the cart snapshot and the applied coupon code under
// fixed keys in a key-value backend.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"bookstore/internal/model"

	"github.com/rs/zerolog"
)

// Well-known keys.
const (
	CartKey   = "cart"
	CouponKey = "coupon"
)

// KV is a string-keyed byte store.
type KV interface {
	// Get returns the value stored under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}

// CartStore is the durable snapshot of the cart and coupon.
type CartStore interface {
	// ReadCart returns the persisted items. found is false when no snapshot exists.
	ReadCart(ctx context.Context) (items []model.CartItem, found bool, err error)

	// WriteCart replaces the persisted snapshot.
	WriteCart(ctx context.Context, items []model.CartItem) error

	// DeleteCart removes the snapshot entirely.
	DeleteCart(ctx context.Context) error

	// ReadCoupon returns the persisted coupon code.
	ReadCoupon(ctx context.Context) (code string, found bool, err error)

	// WriteCoupon persists the raw coupon code.
	WriteCoupon(ctx context.Context, code string) error

	// DeleteCoupon removes the persisted coupon code.
	DeleteCoupon(ctx context.Context) error

	// Close releases the underlying backend.
	Close() error
}

// cartStore implements CartStore over a KV.
type cartStore struct {
	kv        KV
	namespace string
	logger    zerolog.Logger
}

// NewCartStore creates a cart store. A non-empty namespace prefixes both keys
// ("ns:cart") so several sessions can share one backend.
func NewCartStore(kv KV, namespace string, logger zerolog.Logger) CartStore {
	return &cartStore{
		kv:        kv,
		namespace: namespace,
		logger:    logger.With().Str("component", "cart-store").Str("namespace", namespace).Logger(),
	}
}

func (s *cartStore) key(base string) string {
	if s.namespace == "" {
		return base
	}
	return s.namespace + ":" + base
}

// ReadCart returns the persisted items.
func (s *cartStore) ReadCart(ctx context.Context) ([]model.CartItem, bool, error) {
	key := s.key(CartKey)

	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to read cart snapshot")
		return nil, false, fmt.Errorf("failed to read cart: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	var items []model.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("cart snapshot is corrupt")
		return nil, false, fmt.Errorf("failed to decode cart: %w", err)
	}
	if items == nil {
		items = []model.CartItem{}
	}

	return items, true, nil
}

// WriteCart replaces the persisted snapshot.
func (s *cartStore) WriteCart(ctx context.Context, items []model.CartItem) error {
	if items == nil {
		items = []model.CartItem{}
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	key := s.key(CartKey)
	if err := s.kv.Put(ctx, key, raw); err != nil {
		s.logger.Error().Err(err).Str("key", key).Int("items", len(items)).Msg("failed to write cart snapshot")
		return fmt.Errorf("failed to write cart: %w", err)
	}

	s.logger.Debug().Str("key", key).Int("items", len(items)).Msg("cart snapshot written")
	return nil
}

// DeleteCart removes the snapshot.
func (s *cartStore) DeleteCart(ctx context.Context) error {
	key := s.key(CartKey)
	if err := s.kv.Delete(ctx, key); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to delete cart snapshot")
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// ReadCoupon returns the persisted coupon code.
func (s *cartStore) ReadCoupon(ctx context.Context) (string, bool, error) {
	key := s.key(CouponKey)

	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to read coupon")
		return "", false, fmt.Errorf("failed to read coupon: %w", err)
	}
	if !found || len(raw) == 0 {
		return "", false, nil
	}

	return string(raw), true, nil
}

// WriteCoupon persists the raw coupon code.
func (s *cartStore) WriteCoupon(ctx context.Context, code string) error {
	key := s.key(CouponKey)
	if err := s.kv.Put(ctx, key, []byte(code)); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to write coupon")
		return fmt.Errorf("failed to write coupon: %w", err)
	}
	return nil
}

// DeleteCoupon removes the persisted coupon code.
func (s *cartStore) DeleteCoupon(ctx context.Context) error {
	key := s.key(CouponKey)
	if err := s.kv.Delete(ctx, key); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to delete coupon")
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	return nil
}

// Close releases the underlying backend.
func (s *cartStore) Close() error {
	return s.kv.Close()
}
