package handler

import (
	"net/http"

	"bookstore/internal/model"
	"bookstore/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles checkout and order history requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Checkout handles POST /api/checkout requests.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, h.logger)
		return
	}

	var req model.CheckoutRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, err.Error(), h.logger)
		return
	}

	order, err := h.service.Checkout(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, "failed to place order", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /api/orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, h.logger)
		return
	}

	orders, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to retrieve orders", h.logger)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, h.logger)
		return
	}

	id, err := pathID(r.URL.Path, "/api/orders/")
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeNotFound, "order ID "+err.Error(), h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to retrieve order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
