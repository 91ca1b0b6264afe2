package model

import "github.com/shopspring/decimal"

// CartItem is one product line in the cart. Price is the unit price charged,
// OriginalPrice the list price shown struck through.
type CartItem struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Image         string `json:"image"`
	Price         int64  `json:"price"`
	OriginalPrice int64  `json:"original_price"`
	Author        string `json:"author"`
	Quantity      int    `json:"quantity"`
	CategoryID    int64  `json:"category_id"`
	CategoryName  string `json:"category_name"`
}

// NewCartItem builds a cart line from a product at its current effective price.
func NewCartItem(p Product, quantity int) CartItem {
	return CartItem{
		ID:            p.ID,
		Name:          p.Name,
		Image:         p.Image,
		Price:         p.EffectivePrice(),
		OriginalPrice: p.Price,
		Author:        p.Author,
		Quantity:      quantity,
		CategoryID:    p.CategoryID,
		CategoryName:  p.CategoryName,
	}
}

// Refresh copies the catalogue fields of p onto the item, keeping its quantity.
func (i *CartItem) Refresh(p Product) {
	i.Name = p.Name
	i.Image = p.Image
	i.Price = p.EffectivePrice()
	i.OriginalPrice = p.Price
}

// CouponState is the coupon code entered by the customer and whether it validated.
type CouponState struct {
	Code         string          `json:"code"`
	Applied      bool            `json:"applied"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
}

// Totals holds the amounts derived from the cart contents.
type Totals struct {
	Subtotal  int64 `json:"subtotal"`
	Discount  int64 `json:"discount"`
	Shipping  int64 `json:"shipping"`
	Total     int64 `json:"total"`
	ItemCount int64 `json:"item_count"`
}

// CartView is a consistent read of the cart for the storefront pages.
type CartView struct {
	Items  []CartItem  `json:"items"`
	Coupon CouponState `json:"coupon"`
	Totals Totals      `json:"totals"`
}
