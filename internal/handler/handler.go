package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"bookstore/internal/gateway"
	"bookstore/internal/model"

	"github.com/rs/zerolog"
)

// RequestIDHeader carries the request id set by the middleware.
const RequestIDHeader = "X-Request-ID"

// maxBodyBytes limits request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already sent; an encode failure only truncates the body.
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	correlationID := w.Header().Get(RequestIDHeader)
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("error", code).
		Str("message", message).
		Int("status", status).
		Str("request_id", correlationID).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: correlationID,
	})
}

// writeServiceError maps a service error to a response.
func writeServiceError(w http.ResponseWriter, err error, fallback string, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeError(w, statusForCode(domainErr.Code), domainErr.Code, domainErr.Message, logger)
		return
	}

	var statusErr *gateway.StatusError
	if errors.As(err, &statusErr) {
		logger.Warn().Err(err).Int("backend_status", statusErr.StatusCode).Msg(fallback)
		if statusErr.StatusCode >= http.StatusInternalServerError {
			writeError(w, http.StatusBadGateway, model.ErrCodeBackendUnavailable, model.ErrBackendUnavailable.Message, logger)
			return
		}
		writeError(w, http.StatusBadGateway, model.ErrCodeBackendRejected, "Bookstore backend rejected the request", logger)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		writeError(w, http.StatusGatewayTimeout, model.ErrCodeBackendUnavailable, "Request timed out", logger)
		return
	}

	logger.Error().Err(err).Msg(fallback)
	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, fallback, logger)
}

func statusForCode(code string) int {
	switch code {
	case model.ErrCodeProductNotFound, model.ErrCodeOrderNotFound, model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeBackendUnavailable:
		return http.StatusBadGateway
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, w http.ResponseWriter, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// pathID extracts the positive integer id that follows prefix in path.
func pathID(path, prefix string) (int64, error) {
	raw := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if raw == "" || strings.Contains(raw, "/") {
		return 0, fmt.Errorf("id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func methodNotAllowed(w http.ResponseWriter, logger zerolog.Logger) {
	writeError(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", logger)
}
