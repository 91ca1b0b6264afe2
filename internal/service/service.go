package service

import (
	"context"

	"bookstore/internal/model"
)

// ProductService defines catalogue browsing operations.
type ProductService interface {
	// GetAll retrieves products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
}

// CartService defines the operations the cart page and navbar badge use.
type CartService interface {
	// View returns the items, coupon and totals.
	View(ctx context.Context) model.CartView

	// Count returns the number of units in the cart.
	Count(ctx context.Context) int64

	// AddProduct looks the product up and adds quantity units of it.
	AddProduct(ctx context.Context, productID int64, quantity int) (model.CartView, error)

	// UpdateQuantity sets the quantity of a cart line.
	UpdateQuantity(ctx context.Context, productID int64, quantity int) (model.CartView, error)

	// Remove deletes a cart line.
	Remove(ctx context.Context, productID int64) (model.CartView, error)

	// Clear empties the cart.
	Clear(ctx context.Context) (model.CartView, error)

	// SetCoupon records a coupon code without validating it.
	SetCoupon(ctx context.Context, code string) model.CartView

	// ApplyCoupon validates the coupon, first replacing the code when one is given.
	ApplyCoupon(ctx context.Context, code *string) (model.CartView, error)
}

// OrderService defines checkout and order history operations.
type OrderService interface {
	// Checkout places an order for the current cart and clears it.
	Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.Order, error)

	// List returns the order history.
	List(ctx context.Context) ([]model.Order, error)

	// GetByID retrieves an order by its ID.
	GetByID(ctx context.Context, id int64) (*model.Order, error)
}

// CartEngine is the cart state the services operate on.
type CartEngine interface {
	View() model.CartView
	Totals() model.Totals
	AddItem(ctx context.Context, product model.Product, quantity int) error
	UpdateQuantity(ctx context.Context, productID int64, quantity int) error
	RemoveItem(ctx context.Context, productID int64) error
	Clear(ctx context.Context) error
	SetCouponCode(code string)
	ApplyCoupon(ctx context.Context) error
	WaitReady(ctx context.Context) error
}
