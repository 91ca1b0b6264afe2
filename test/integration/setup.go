package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"bookstore/internal/config"
	"bookstore/internal/model"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SetupTestDB starts a PostgreSQL test container and returns settings that
// point the postgres cart store at it.
func SetupTestDB(t *testing.T) config.DatabaseConfig {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	return config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  5,
		MinConnections:  1,
		MaxConnLifetime: 300,
	}
}

// FakeBackend is an in-process stand-in for the bookstore REST backend.
type FakeBackend struct {
	Server *httptest.Server

	mu       sync.Mutex
	products map[int64]model.Product
	orders   []model.Order
	keys     map[string]int64
	batches  int
}

// NewFakeBackend starts a backend serving the given products.
func NewFakeBackend(t *testing.T, products ...model.Product) *FakeBackend {
	t.Helper()

	b := &FakeBackend{
		products: make(map[int64]model.Product),
		keys:     make(map[string]int64),
	}
	for _, p := range products {
		b.products[p.ID] = p
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/products/batch", b.batch)
	mux.HandleFunc("/products/", b.product)
	mux.HandleFunc("/orders", b.createOrListOrders)
	mux.HandleFunc("/orders/", b.order)
	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Server.Close)

	return b
}

// SetProduct replaces a product, e.g. to change its price.
func (b *FakeBackend) SetProduct(p model.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.products[p.ID] = p
}

// Orders returns the orders received so far.
func (b *FakeBackend) Orders() []model.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Order(nil), b.orders...)
}

// Batches returns how many batch lookups were served.
func (b *FakeBackend) Batches() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.batches
}

func (b *FakeBackend) batch(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batches++

	found := []model.Product{}
	for _, raw := range strings.Split(r.URL.Query().Get("ids"), ",") {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		if p, ok := b.products[id]; ok {
			found = append(found, p)
		}
	}
	writeJSON(w, http.StatusOK, found)
}

func (b *FakeBackend) product(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/products/"), 10, 64)
	p, ok := b.products[id]
	if err != nil || !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *FakeBackend) order(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/orders/"), 10, 64)
	for _, o := range b.orders {
		if o.ID == id {
			writeJSON(w, http.StatusOK, o)
			return
		}
	}
	http.NotFound(w, r)
}

func (b *FakeBackend) createOrListOrders(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, b.orders)
		return
	}

	key := r.Header.Get("Idempotency-Key")
	if _, err := uuid.Parse(key); err != nil {
		http.Error(w, "idempotency key required", http.StatusBadRequest)
		return
	}

	var req model.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	order := model.Order{
		ID:            int64(len(b.orders) + 1),
		Status:        "pending",
		CustomerName:  req.CustomerName,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		CouponCode:    req.CouponCode,
		Total:         req.Total,
		CreatedAt:     time.Now().UTC(),
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, model.OrderItem{
			ProductID: item.ProductID,
			Name:      b.products[item.ProductID].Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	b.orders = append(b.orders, order)
	b.keys[key] = order.ID

	writeJSON(w, http.StatusCreated, order)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
