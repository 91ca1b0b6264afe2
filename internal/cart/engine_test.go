package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bookstore/internal/coupon"
	"bookstore/internal/model"
	"bookstore/internal/notify"
	"bookstore/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCartStore is a mock implementation of storage.CartStore.
type MockCartStore struct {
	mock.Mock
}

func (m *MockCartStore) ReadCart(ctx context.Context) ([]model.CartItem, bool, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Bool(1), args.Error(2)
}

func (m *MockCartStore) WriteCart(ctx context.Context, items []model.CartItem) error {
	return m.Called(ctx, items).Error(0)
}

func (m *MockCartStore) DeleteCart(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCartStore) ReadCoupon(ctx context.Context) (string, bool, error) {
	args := m.Called(ctx)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockCartStore) WriteCoupon(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockCartStore) DeleteCoupon(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCartStore) Close() error {
	return m.Called().Error(0)
}

// stubFetcher returns fixed products. When gate is set, calls block until it
// is closed or the context ends.
type stubFetcher struct {
	mu       sync.Mutex
	products []model.Product
	err      error
	gate     chan struct{}
	calls    [][]int64
}

func (f *stubFetcher) GetProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ids)
	f.mu.Unlock()

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.products, f.err
}

func (f *stubFetcher) Calls() [][]int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func ptr(v int64) *int64 { return &v }

func newMemoryStore() storage.CartStore {
	return storage.NewCartStore(storage.NewMemoryKV(), "", zerolog.Nop())
}

func newTestEngine(store storage.CartStore, fetcher ProductFetcher) (*Engine, *notify.Buffer) {
	if fetcher == nil {
		fetcher = &stubFetcher{}
	}
	buffer := notify.NewBuffer(32)
	validator := coupon.NewStaticValidator(zerolog.Nop(), coupon.DefaultRule())
	return New(store, fetcher, validator, buffer, DefaultConfig(), zerolog.Nop()), buffer
}

func kinds(notes []notify.Notification) []notify.Kind {
	out := make([]notify.Kind, len(notes))
	for i, n := range notes {
		out[i] = n.Kind
	}
	return out
}

func TestEngine_EndToEnd(t *testing.T) {
	ctx := context.Background()
	engine, buffer := newTestEngine(newMemoryStore(), nil)
	require.NoError(t, engine.Load(ctx))

	require.NoError(t, engine.AddItem(ctx, model.Product{ID: 1, Name: "Dune", Price: 50000}, 1))
	require.NoError(t, engine.AddItem(ctx, model.Product{ID: 2, Name: "Emma", Price: 20000}, 2))

	totals := engine.Totals()
	assert.Equal(t, int64(90000), totals.Subtotal)
	assert.Equal(t, int64(30000), totals.Shipping)

	engine.SetCouponCode("DISCOUNT10")
	require.NoError(t, engine.ApplyCoupon(ctx))

	totals = engine.Totals()
	assert.Equal(t, int64(9000), totals.Discount)
	assert.Equal(t, int64(111000), totals.Total)
	assert.Equal(t, int64(3), totals.ItemCount)

	assert.Equal(t, []notify.Kind{notify.Success, notify.Success, notify.Success}, kinds(buffer.Drain()))
}

func TestEngine_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Merges repeated adds", func(t *testing.T) {
		engine, _ := newTestEngine(newMemoryStore(), nil)
		p := model.Product{ID: 7, Name: "Emma", Price: 20000}

		require.NoError(t, engine.AddItem(ctx, p, 2))
		require.NoError(t, engine.AddItem(ctx, p, 3))

		items := engine.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 5, items[0].Quantity)
	})

	t.Run("Uses sale price", func(t *testing.T) {
		engine, _ := newTestEngine(newMemoryStore(), nil)

		require.NoError(t, engine.AddItem(ctx, model.Product{ID: 5, Price: 12000, SalePrice: ptr(9000)}, 1))

		items := engine.Items()
		require.Len(t, items, 1)
		assert.Equal(t, int64(9000), items[0].Price)
		assert.Equal(t, int64(12000), items[0].OriginalPrice)
	})

	t.Run("Writes through", func(t *testing.T) {
		store := newMemoryStore()
		engine, _ := newTestEngine(store, nil)

		require.NoError(t, engine.AddItem(ctx, model.Product{ID: 3, Price: 100}, 4))

		saved, found, err := store.ReadCart(ctx)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, engine.Items(), saved)
	})

	t.Run("Rejects invalid input", func(t *testing.T) {
		engine, buffer := newTestEngine(newMemoryStore(), nil)

		err := engine.AddItem(ctx, model.Product{Price: 100}, 1)
		assert.ErrorIs(t, err, model.ErrInvalidProduct)

		err = engine.AddItem(ctx, model.Product{ID: 1, Price: 100}, 0)
		assert.ErrorIs(t, err, model.ErrInvalidQuantity)

		assert.Empty(t, engine.Items())
		assert.Equal(t, []notify.Kind{notify.Error, notify.Error}, kinds(buffer.Drain()))
	})

	t.Run("Failed write leaves state unchanged", func(t *testing.T) {
		store := new(MockCartStore)
		store.On("WriteCart", mock.Anything, mock.Anything).Return(errors.New("disk full"))
		engine, buffer := newTestEngine(store, nil)

		err := engine.AddItem(ctx, model.Product{ID: 1, Price: 100}, 1)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.Empty(t, engine.Items())
		assert.Equal(t, []notify.Kind{notify.Error}, kinds(buffer.Drain()))
		store.AssertExpectations(t)
	})
}

func TestEngine_UpdateQuantity(t *testing.T) {
	ctx := context.Background()

	newCart := func() (*Engine, *notify.Buffer) {
		engine, buffer := newTestEngine(newMemoryStore(), nil)
		require.NoError(t, engine.AddItem(ctx, model.Product{ID: 1, Price: 100}, 2))
		buffer.Drain()
		return engine, buffer
	}

	t.Run("Sets quantity", func(t *testing.T) {
		engine, buffer := newCart()

		require.NoError(t, engine.UpdateQuantity(ctx, 1, 6))

		assert.Equal(t, 6, engine.Items()[0].Quantity)
		assert.Equal(t, []notify.Kind{notify.Success}, kinds(buffer.Drain()))
	})

	for _, quantity := range []int{0, -1, -50} {
		t.Run("Ignores quantity below one", func(t *testing.T) {
			engine, buffer := newCart()

			err := engine.UpdateQuantity(ctx, 1, quantity)

			assert.ErrorIs(t, err, model.ErrInvalidQuantity)
			assert.Equal(t, 2, engine.Items()[0].Quantity)
			assert.Equal(t, []notify.Kind{notify.Error}, kinds(buffer.Drain()))
		})
	}

	t.Run("Unknown id is a no-op", func(t *testing.T) {
		engine, buffer := newCart()
		before := engine.Items()

		require.NoError(t, engine.UpdateQuantity(ctx, 99, 3))

		assert.Equal(t, before, engine.Items())
		assert.Equal(t, []notify.Kind{notify.Success}, kinds(buffer.Drain()))
	})
}

func TestEngine_RemoveItem(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	engine, buffer := newTestEngine(store, nil)
	require.NoError(t, engine.AddItem(ctx, model.Product{ID: 1, Price: 100}, 1))
	require.NoError(t, engine.AddItem(ctx, model.Product{ID: 2, Price: 200}, 1))
	buffer.Drain()

	t.Run("Absent id leaves cart unchanged", func(t *testing.T) {
		before := engine.Items()
		savedBefore, _, err := store.ReadCart(ctx)
		require.NoError(t, err)

		require.NoError(t, engine.RemoveItem(ctx, 42))

		savedAfter, _, err := store.ReadCart(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, engine.Items())
		assert.Equal(t, savedBefore, savedAfter)
		assert.Equal(t, []notify.Kind{notify.Success}, kinds(buffer.Drain()))
	})

	t.Run("Removes matching line", func(t *testing.T) {
		require.NoError(t, engine.RemoveItem(ctx, 1))

		items := engine.Items()
		require.Len(t, items, 1)
		assert.Equal(t, int64(2), items[0].ID)

		saved, _, err := store.ReadCart(ctx)
		require.NoError(t, err)
		assert.Equal(t, items, saved)
	})
}

func TestEngine_Clear(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	engine, buffer := newTestEngine(store, nil)
	require.NoError(t, engine.AddItem(ctx, model.Product{ID: 1, Price: 100}, 1))
	buffer.Drain()

	require.NoError(t, engine.Clear(ctx))

	assert.Empty(t, engine.Items())
	_, found, err := store.ReadCart(ctx)
	require.NoError(t, err)
	assert.False(t, found, "clear must delete the snapshot")
	assert.Equal(t, []notify.Kind{notify.Success}, kinds(buffer.Drain()))
}

func TestEngine_Clear_Failure(t *testing.T) {
	ctx := context.Background()
	store := new(MockCartStore)
	store.On("WriteCart", mock.Anything, mock.Anything).Return(nil)
	store.On("DeleteCart", mock.Anything).Return(errors.New("unavailable"))
	engine, buffer := newTestEngine(store, nil)
	require.NoError(t, engine.AddItem(ctx, model.Product{ID: 1, Price: 100}, 1))
	buffer.Drain()

	require.Error(t, engine.Clear(ctx))

	assert.Len(t, engine.Items(), 1)
	assert.Equal(t, []notify.Kind{notify.Error}, kinds(buffer.Drain()))
}

func TestEngine_Coupon(t *testing.T) {
	ctx := context.Background()

	t.Run("Round trip", func(t *testing.T) {
		store := newMemoryStore()
		engine, buffer := newTestEngine(store, nil)

		engine.SetCouponCode("discount10")
		require.NoError(t, engine.ApplyCoupon(ctx))

		state := engine.Coupon()
		assert.True(t, state.Applied)
		assert.Equal(t, "discount10", state.Code)
		assert.True(t, coupon.DefaultRate.Equal(state.DiscountRate))

		code, found, err := store.ReadCoupon(ctx)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "discount10", code)

		engine.SetCouponCode("BOGUS")
		err = engine.ApplyCoupon(ctx)
		assert.ErrorIs(t, err, model.ErrInvalidCoupon)

		assert.False(t, engine.Coupon().Applied)
		_, found, err = store.ReadCoupon(ctx)
		require.NoError(t, err)
		assert.False(t, found)

		assert.Equal(t, []notify.Kind{notify.Success, notify.Error}, kinds(buffer.Drain()))
	})

	t.Run("Set does not validate", func(t *testing.T) {
		store := new(MockCartStore)
		engine, buffer := newTestEngine(store, nil)

		engine.SetCouponCode("DISCOUNT10")

		assert.False(t, engine.Coupon().Applied)
		assert.Equal(t, 0, buffer.Len())
		store.AssertNotCalled(t, "WriteCoupon", mock.Anything, mock.Anything)
	})

	t.Run("Changing code withdraws discount", func(t *testing.T) {
		engine, _ := newTestEngine(newMemoryStore(), nil)
		require.NoError(t, engine.AddItem(ctx, model.Product{ID: 1, Price: 100000}, 1))
		engine.SetCouponCode("DISCOUNT10")
		require.NoError(t, engine.ApplyCoupon(ctx))

		engine.SetCouponCode(" discount10 ")
		assert.True(t, engine.Coupon().Applied)

		engine.SetCouponCode("OTHER")
		assert.False(t, engine.Coupon().Applied)
		assert.Equal(t, int64(0), engine.Totals().Discount)
	})

	t.Run("Failed persist keeps previous state", func(t *testing.T) {
		store := new(MockCartStore)
		store.On("WriteCoupon", mock.Anything, "DISCOUNT10").Return(errors.New("read-only"))
		engine, buffer := newTestEngine(store, nil)

		engine.SetCouponCode("DISCOUNT10")
		require.Error(t, engine.ApplyCoupon(ctx))

		assert.False(t, engine.Coupon().Applied)
		assert.Equal(t, []notify.Kind{notify.Error}, kinds(buffer.Drain()))
	})
}

func TestEngine_View(t *testing.T) {
	engine, _ := newTestEngine(newMemoryStore(), nil)

	view := engine.View()
	assert.NotNil(t, view.Items)
	assert.Empty(t, view.Items)
	assert.Equal(t, int64(30000), view.Totals.Total)

	require.NoError(t, engine.AddItem(context.Background(), model.Product{ID: 1, Price: 400000}, 1))
	view = engine.View()
	assert.Len(t, view.Items, 1)
	assert.Equal(t, int64(400000), view.Totals.Total)
}

func TestEngine_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(newMemoryStore(), nil)
	p := model.Product{ID: 1, Price: 10}

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = engine.AddItem(ctx, p, 1)
		}()
	}
	wg.Wait()

	items := engine.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 50, items[0].Quantity)
}

func TestEngine_ItemsReturnsCopy(t *testing.T) {
	engine, _ := newTestEngine(newMemoryStore(), nil)
	require.NoError(t, engine.AddItem(context.Background(), model.Product{ID: 1, Price: 10}, 1))

	items := engine.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, engine.Items()[0].Quantity)
}

func waitReady(t *testing.T, engine *Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, engine.WaitReady(ctx))
}
