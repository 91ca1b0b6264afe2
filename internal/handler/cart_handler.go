package handler

import (
	"errors"
	"io"
	"net/http"

	"bookstore/internal/model"
	"bookstore/internal/service"

	"github.com/rs/zerolog"
)

// AddItemRequest is the body of POST /api/cart/items. An omitted quantity
// means one unit.
type AddItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity"`
}

// UpdateItemRequest is the body of PUT /api/cart/items/{id}.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// CouponRequest is the body of the coupon endpoints. Code may be omitted when
// applying the code already entered.
type CouponRequest struct {
	Code *string `json:"code"`
}

// CountResponse is the navbar badge payload.
type CountResponse struct {
	ItemCount int64 `json:"item_count"`
}

// CartHandler handles the cart page and navbar badge requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.View(r.Context()))
}

// Count handles GET /api/cart/count.
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CountResponse{ItemCount: h.service.Count(r.Context())})
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Clear(r.Context())
	h.respond(w, view, err, "failed to clear cart")
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, err.Error(), h.logger)
		return
	}
	if req.ProductID <= 0 {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "product_id is required", h.logger)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	view, err := h.service.AddProduct(r.Context(), req.ProductID, quantity)
	h.respond(w, view, err, "failed to add item")
}

// UpdateItem handles PUT /api/cart/items/{id}.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, err.Error(), h.logger)
		return
	}

	view, err := h.service.UpdateQuantity(r.Context(), id, req.Quantity)
	h.respond(w, view, err, "failed to update item")
}

// RemoveItem handles DELETE /api/cart/items/{id}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	view, err := h.service.Remove(r.Context(), id)
	h.respond(w, view, err, "failed to remove item")
}

// SetCoupon handles PUT /api/cart/coupon.
func (h *CartHandler) SetCoupon(w http.ResponseWriter, r *http.Request) {
	var req CouponRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, err.Error(), h.logger)
		return
	}
	if req.Code == nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "code is required", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, h.service.SetCoupon(r.Context(), *req.Code))
}

// ApplyCoupon handles POST /api/cart/coupon. An empty body applies the code
// already entered.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req CouponRequest
	if err := decodeJSON(r, w, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, err.Error(), h.logger)
		return
	}

	view, err := h.service.ApplyCoupon(r.Context(), req.Code)
	h.respond(w, view, err, "failed to apply coupon")
}

func (h *CartHandler) itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r.URL.Path, "/api/cart/items/")
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidProduct, "product ID "+err.Error(), h.logger)
		return 0, false
	}
	return id, true
}

func (h *CartHandler) respond(w http.ResponseWriter, view model.CartView, err error, fallback string) {
	if err != nil {
		writeServiceError(w, err, fallback, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
