package coupon

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Result is the outcome of validating a coupon code.
type Result struct {
	// Code is the normalised code that was checked.
	Code string

	// Valid reports whether the code is recognised.
	Valid bool

	// DiscountRate is the fraction of the subtotal taken off, e.g. 0.10.
	// It is zero when Valid is false.
	DiscountRate decimal.Decimal
}

// Validator decides whether a coupon code applies and at what rate.
type Validator interface {
	// Validate checks a customer-entered code. Comparison is case-insensitive.
	Validate(ctx context.Context, code string) Result

	// Close releases resources held by the validator.
	Close() error
}

// CouponSet represents a set of coupon codes for fast lookup.
type CouponSet interface {
	// Lookup returns the rate recorded for a normalised code. A zero rate
	// with ok == true means the code carries no rate of its own.
	Lookup(code string) (rate decimal.Decimal, ok bool)

	// Contains checks if a normalised coupon code exists in the set.
	Contains(code string) bool

	// Size returns the number of coupons in the set.
	Size() int
}

// Loader defines the interface for loading coupon catalogue files.
type Loader interface {
	// Load reads a gzipped coupon file and returns a CouponSet.
	Load(ctx context.Context, filePath string) (CouponSet, error)
}

// Normalize returns the canonical form used to compare coupon codes.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
