package cart

import (
	"bookstore/internal/model"

	"github.com/shopspring/decimal"
)

// PricingRules holds the shipping policy applied to every cart.
type PricingRules struct {
	// FreeShippingThreshold is the subtotal that must be exceeded for free shipping.
	FreeShippingThreshold int64

	// ShippingFee is charged when the subtotal is at or below the threshold.
	ShippingFee int64
}

// DefaultPricingRules returns the storefront's standard shipping policy.
func DefaultPricingRules() PricingRules {
	return PricingRules{
		FreeShippingThreshold: 300000,
		ShippingFee:           30000,
	}
}

// ComputeTotals derives the cart amounts from its items and coupon. The
// discount is rounded half up to a whole currency unit.
func ComputeTotals(items []model.CartItem, coupon model.CouponState, rules PricingRules) model.Totals {
	var totals model.Totals
	for _, item := range items {
		totals.Subtotal += item.Price * int64(item.Quantity)
		totals.ItemCount += int64(item.Quantity)
	}

	if coupon.Applied && coupon.DiscountRate.IsPositive() {
		discount := decimal.NewFromInt(totals.Subtotal).Mul(coupon.DiscountRate).Round(0).IntPart()
		totals.Discount = min(discount, totals.Subtotal)
	}

	if totals.Subtotal <= rules.FreeShippingThreshold {
		totals.Shipping = rules.ShippingFee
	}

	totals.Total = totals.Subtotal - totals.Discount + totals.Shipping
	return totals
}
