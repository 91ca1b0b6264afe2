package handler

import (
	"net/http"

	"bookstore/internal/notify"

	"github.com/rs/zerolog"
)

// Drainer hands out pending notifications.
type Drainer interface {
	Drain() []notify.Notification
}

// NotificationHandler serves the storefront's toast poller.
type NotificationHandler struct {
	source Drainer
	logger zerolog.Logger
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(source Drainer, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		source: source,
		logger: logger.With().Str("handler", "notification").Logger(),
	}
}

// List handles GET /api/notifications. Returned notifications are removed.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, h.logger)
		return
	}

	notes := h.source.Drain()
	if notes == nil {
		notes = []notify.Notification{}
	}
	writeJSON(w, http.StatusOK, notes)
}
