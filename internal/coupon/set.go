package coupon

import "github.com/shopspring/decimal"

// mapCouponSet implements CouponSet using a map for O(1) lookups.
type mapCouponSet struct {
	coupons map[string]decimal.Decimal
}

// NewMapCouponSet creates a new map-based coupon set.
func NewMapCouponSet(capacity int) CouponSet {
	return &mapCouponSet{
		coupons: make(map[string]decimal.Decimal, capacity),
	}
}

// Lookup returns the rate stored for a code.
func (s *mapCouponSet) Lookup(code string) (decimal.Decimal, bool) {
	rate, exists := s.coupons[code]
	return rate, exists
}

// Contains checks if a coupon code exists in the set.
func (s *mapCouponSet) Contains(code string) bool {
	_, exists := s.coupons[code]
	return exists
}

// Size returns the number of coupons in the set.
func (s *mapCouponSet) Size() int {
	return len(s.coupons)
}

// Add adds a normalised coupon code with an optional rate (zero for none).
func (s *mapCouponSet) Add(code string, rate decimal.Decimal) {
	s.coupons[Normalize(code)] = rate
}
