package router

import (
	"net/http"
	"strings"

	"bookstore/internal/handler"
	"bookstore/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Product      *handler.ProductHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	Notification *handler.NotificationHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	productRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if isCollection(r.URL.Path, "/api/products") {
			h.Product.GetAll(w, r)
			return
		}
		h.Product.GetByID(w, r)
	}
	mux.HandleFunc("/api/products", productRouteHandler)
	mux.HandleFunc("/api/products/", productRouteHandler)

	cartRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimSuffix(r.URL.Path, "/")
		switch {
		case path == "/api/cart":
			route(w, r, methods{http.MethodGet: h.Cart.Get, http.MethodDelete: h.Cart.Clear})
		case path == "/api/cart/count":
			route(w, r, methods{http.MethodGet: h.Cart.Count})
		case path == "/api/cart/items":
			route(w, r, methods{http.MethodPost: h.Cart.AddItem})
		case strings.HasPrefix(path, "/api/cart/items/"):
			route(w, r, methods{http.MethodPut: h.Cart.UpdateItem, http.MethodDelete: h.Cart.RemoveItem})
		case path == "/api/cart/coupon":
			route(w, r, methods{http.MethodPut: h.Cart.SetCoupon, http.MethodPost: h.Cart.ApplyCoupon})
		default:
			notFound(w)
		}
	}
	mux.HandleFunc("/api/cart", cartRouteHandler)
	mux.HandleFunc("/api/cart/", cartRouteHandler)

	mux.HandleFunc("/api/notifications", h.Notification.List)
	mux.HandleFunc("/api/checkout", h.Order.Checkout)

	orderRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if isCollection(r.URL.Path, "/api/orders") {
			h.Order.List(w, r)
			return
		}
		h.Order.GetByID(w, r)
	}
	mux.HandleFunc("/api/orders", orderRouteHandler)
	mux.HandleFunc("/api/orders/", orderRouteHandler)

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS -> APIKeyAuth
	var handler http.Handler = mux
	handler = middleware.APIKeyAuth(apiKey, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}

type methods map[string]http.HandlerFunc

func route(w http.ResponseWriter, r *http.Request, m methods) {
	if fn, ok := m[r.Method]; ok {
		fn(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	w.Write([]byte(`{"error": "METHOD_NOT_ALLOWED", "message": "method not allowed"}`))
}

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error": "NOT_FOUND", "message": "not found"}`))
}

func isCollection(path, base string) bool {
	return path == base || path == base+"/"
}
