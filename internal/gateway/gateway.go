// Package gateway is the HTTP client for the bookstore REST backend.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"bookstore/internal/config"
	"bookstore/internal/model"

	"github.com/rs/zerolog"
)

// maxErrorBody caps how much of an error response is kept for the error message.
const maxErrorBody = 512

// ProductGateway reads catalogue data.
type ProductGateway interface {
	// GetProductsByIDs fetches the given products in one call. Ids the backend
	// does not know are absent from the result.
	GetProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	// ListProducts returns one page of the catalogue.
	ListProducts(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetProduct returns a single product or model.ErrProductNotFound.
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
}

// OrderGateway submits and reads orders.
type OrderGateway interface {
	// CreateOrder submits an order. The backend deduplicates on idempotencyKey.
	CreateOrder(ctx context.Context, idempotencyKey string, req *model.OrderRequest) (*model.Order, error)

	// ListOrders returns the customer's order history.
	ListOrders(ctx context.Context) ([]model.Order, error)

	// GetOrder returns a single order or model.ErrOrderNotFound.
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
}

// Gateway combines catalogue and order access.
type Gateway interface {
	ProductGateway
	OrderGateway
}

// StatusError is returned for non-2xx backend responses.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// httpGateway implements Gateway over net/http.
type httpGateway struct {
	baseURL string
	token   string
	client  *http.Client
	logger  zerolog.Logger
}

// New creates a gateway for the backend described by cfg.
func New(cfg config.BackendConfig, logger zerolog.Logger) Gateway {
	return NewWithClient(cfg, &http.Client{Timeout: cfg.TimeoutDuration()}, logger)
}

// NewWithClient creates a gateway that sends requests through client.
func NewWithClient(cfg config.BackendConfig, client *http.Client, logger zerolog.Logger) Gateway {
	return &httpGateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  client,
		logger:  logger.With().Str("component", "backend-gateway").Logger(),
	}
}

func (g *httpGateway) GetProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	unique := dedupe(ids)
	if len(unique) == 0 {
		return []model.Product{}, nil
	}

	parts := make([]string, len(unique))
	for i, id := range unique {
		parts[i] = strconv.FormatInt(id, 10)
	}
	query := url.Values{"ids": {strings.Join(parts, ",")}}

	var products []model.Product
	if err := g.do(ctx, http.MethodGet, "/products/batch", query, nil, nil, &products); err != nil {
		return nil, fmt.Errorf("failed to fetch products by ids: %w", err)
	}

	g.logger.Debug().
		Int("requested", len(unique)).
		Int("found", len(products)).
		Msg("Fetched product batch")

	return products, nil
}

func (g *httpGateway) ListProducts(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}

	var products []model.Product
	if err := g.do(ctx, http.MethodGet, "/products", query, nil, nil, &products); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (g *httpGateway) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := g.do(ctx, http.MethodGet, "/products/"+strconv.FormatInt(id, 10), nil, nil, nil, &product)
	if isNotFound(err) {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &product, nil
}

func (g *httpGateway) CreateOrder(ctx context.Context, idempotencyKey string, req *model.OrderRequest) (*model.Order, error) {
	header := http.Header{}
	if idempotencyKey != "" {
		header.Set("Idempotency-Key", idempotencyKey)
	}

	var order model.Order
	if err := g.do(ctx, http.MethodPost, "/orders", nil, header, req, &order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	g.logger.Info().
		Int64("order_id", order.ID).
		Str("idempotency_key", idempotencyKey).
		Int64("total", order.Total).
		Msg("Order created")

	return &order, nil
}

func (g *httpGateway) ListOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := g.do(ctx, http.MethodGet, "/orders", nil, nil, nil, &orders); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (g *httpGateway) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := g.do(ctx, http.MethodGet, "/orders/"+strconv.FormatInt(id, 10), nil, nil, nil, &order)
	if isNotFound(err) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}
	return &order, nil
}

// do sends one request and decodes a 2xx JSON body into out.
func (g *httpGateway) do(ctx context.Context, method, path string, query url.Values, header http.Header, in, out any) error {
	target := g.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	for key, values := range header {
		req.Header[key] = values
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("Backend request failed")
		return fmt.Errorf("%w: %w", model.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		g.logger.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("Backend returned an error")
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// dedupe drops duplicate and non-positive ids, keeping first-seen order.
func dedupe(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id > 0 && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
