package model

import "time"

// Payment methods accepted at checkout.
const (
	PaymentCashOnDelivery = "cod"
	PaymentBankTransfer   = "bank_transfer"
)

// CheckoutRequest is the checkout form submitted by the storefront.
type CheckoutRequest struct {
	CustomerName  string `json:"customer_name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Email         string `json:"email,omitempty"`
	Note          string `json:"note,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// OrderRequest is the order payload posted to the backend.
type OrderRequest struct {
	CustomerName  string             `json:"customer_name"`
	Phone         string             `json:"phone"`
	Address       string             `json:"address"`
	Email         string             `json:"email,omitempty"`
	Note          string             `json:"note,omitempty"`
	PaymentMethod string             `json:"payment_method"`
	CouponCode    *string            `json:"coupon_code,omitempty"`
	Items         []OrderItemRequest `json:"items"`
	Subtotal      int64              `json:"subtotal"`
	Discount      int64              `json:"discount"`
	Shipping      int64              `json:"shipping"`
	Total         int64              `json:"total"`
}

// OrderItemRequest is a single line of an order request.
type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	Price     int64 `json:"price"`
}

// Order is an order as stored by the backend.
type Order struct {
	ID            int64       `json:"id"`
	Status        string      `json:"status"`
	CustomerName  string      `json:"customer_name"`
	Address       string      `json:"address"`
	PaymentMethod string      `json:"payment_method"`
	CouponCode    *string     `json:"coupon_code,omitempty"`
	Total         int64       `json:"total"`
	Items         []OrderItem `json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
}

// OrderItem is a line of a stored order.
type OrderItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}
