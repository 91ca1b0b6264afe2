package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeInvalidCoupon      = "INVALID_COUPON"
	ErrCodeInvalidProduct     = "INVALID_PRODUCT"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	ErrCodeBackendRejected    = "BACKEND_REJECTED"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidCoupon      = NewDomainError(ErrCodeInvalidCoupon, "Coupon code is not valid")
	ErrInvalidProduct     = NewDomainError(ErrCodeInvalidProduct, "Product must have an identifier")
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidQuantity    = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be at least 1")
	ErrEmptyCart          = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrBackendUnavailable = NewDomainError(ErrCodeBackendUnavailable, "Bookstore backend is unavailable")
)
