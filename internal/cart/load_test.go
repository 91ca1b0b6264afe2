package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookstore/internal/coupon"
	"bookstore/internal/model"
	"bookstore/internal/notify"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyStore(t *testing.T) {
	fetcher := &stubFetcher{}
	engine, buffer := newTestEngine(newMemoryStore(), fetcher)

	require.NoError(t, engine.Load(context.Background()))
	waitReady(t, engine)

	assert.Empty(t, engine.Items())
	assert.False(t, engine.Coupon().Applied)
	assert.Empty(t, fetcher.Calls(), "nothing to refresh")
	assert.Equal(t, 0, buffer.Len())
}

func TestLoad_ReconcilesPrices(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	require.NoError(t, store.WriteCart(ctx, []model.CartItem{
		{ID: 5, Name: "Old name", Price: 10000, OriginalPrice: 10000, Quantity: 3},
		{ID: 8, Name: "Gone", Price: 500, OriginalPrice: 500, Quantity: 1},
	}))

	fetcher := &stubFetcher{products: []model.Product{
		{ID: 5, Name: "New name", Price: 12000, SalePrice: ptr(9000)},
	}}
	engine, _ := newTestEngine(store, fetcher)

	require.NoError(t, engine.Load(ctx))
	waitReady(t, engine)

	items := engine.Items()
	require.Len(t, items, 2)
	assert.Equal(t, model.CartItem{ID: 5, Name: "New name", Price: 9000, OriginalPrice: 12000, Quantity: 3}, items[0])
	assert.Equal(t, int64(500), items[1].Price, "unmatched items stay as saved")

	assert.Equal(t, [][]int64{{5, 8}}, fetcher.Calls(), "one batched call")

	saved, _, err := store.ReadCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, items, saved)
}

func TestLoad_ShowsSavedItemsBeforeRefresh(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	require.NoError(t, store.WriteCart(ctx, []model.CartItem{{ID: 5, Price: 10000, Quantity: 3}}))

	fetcher := &stubFetcher{
		products: []model.Product{{ID: 5, Price: 12000}},
		gate:     make(chan struct{}),
	}
	engine, _ := newTestEngine(store, fetcher)

	require.NoError(t, engine.Load(ctx))

	select {
	case <-engine.Ready():
		t.Fatal("ready before refresh completed")
	default:
	}
	assert.Equal(t, int64(10000), engine.Items()[0].Price)

	// A line added while the refresh is in flight survives it.
	require.NoError(t, engine.AddItem(ctx, model.Product{ID: 9, Price: 700}, 1))

	close(fetcher.gate)
	waitReady(t, engine)

	items := engine.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(12000), items[0].Price)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, int64(9), items[1].ID)
}

func TestLoad_ClearDuringRefreshLeavesNoSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	require.NoError(t, store.WriteCart(ctx, []model.CartItem{{ID: 5, Price: 10000, Quantity: 3}}))

	fetcher := &stubFetcher{
		products: []model.Product{{ID: 5, Price: 12000}},
		gate:     make(chan struct{}),
	}
	engine, buffer := newTestEngine(store, fetcher)

	require.NoError(t, engine.Load(ctx))
	require.NoError(t, engine.Clear(ctx))

	close(fetcher.gate)
	waitReady(t, engine)

	assert.Empty(t, engine.Items())
	_, found, err := store.ReadCart(ctx)
	require.NoError(t, err)
	assert.False(t, found, "cleared cart must stay absent")
	assert.Equal(t, []notify.Kind{notify.Success}, kinds(buffer.Drain()))
}

func TestLoad_RefreshFailureKeepsSavedCart(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	saved := []model.CartItem{{ID: 5, Price: 10000, Quantity: 3}}
	require.NoError(t, store.WriteCart(ctx, saved))

	engine, buffer := newTestEngine(store, &stubFetcher{err: errors.New("connection refused")})

	require.NoError(t, engine.Load(ctx))
	waitReady(t, engine)

	assert.Equal(t, saved, engine.Items())
	assert.Equal(t, []notify.Kind{notify.Error}, kinds(buffer.Drain()))
}

func TestLoad_RefreshTimeout(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	require.NoError(t, store.WriteCart(ctx, []model.CartItem{{ID: 5, Price: 10000, Quantity: 3}}))

	fetcher := &stubFetcher{gate: make(chan struct{})}
	buffer := notify.NewBuffer(8)
	engine := New(store, fetcher, coupon.NewStaticValidator(zerolog.Nop(), coupon.DefaultRule()), buffer,
		Config{Pricing: DefaultPricingRules(), RefreshTimeout: 20 * time.Millisecond}, zerolog.Nop())

	require.NoError(t, engine.Load(ctx))
	waitReady(t, engine)

	assert.Equal(t, int64(10000), engine.Items()[0].Price)
	assert.Equal(t, []notify.Kind{notify.Error}, kinds(buffer.Drain()))
}

func TestLoad_RestoresCouponWithoutRevalidating(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		saved    string
		wantRate decimal.Decimal
	}{
		{name: "Known code keeps its rate", saved: "discount10", wantRate: coupon.DefaultRate},
		{name: "Retired code falls back to default rate", saved: "SUMMER25", wantRate: coupon.DefaultRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			require.NoError(t, store.WriteCoupon(ctx, tt.saved))
			engine, _ := newTestEngine(store, nil)

			require.NoError(t, engine.Load(ctx))

			state := engine.Coupon()
			assert.True(t, state.Applied)
			assert.Equal(t, tt.saved, state.Code)
			assert.True(t, tt.wantRate.Equal(state.DiscountRate))
		})
	}
}

func TestLoad_RestoredCouponUsesValidatorRate(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	require.NoError(t, store.WriteCoupon(ctx, "half"))

	validator := coupon.NewStaticValidator(zerolog.Nop(), coupon.Rule{Code: "HALF", Rate: decimal.NewFromFloat(0.5)})
	engine := New(store, &stubFetcher{}, validator, notify.Discard, DefaultConfig(), zerolog.Nop())

	require.NoError(t, engine.Load(ctx))

	assert.True(t, decimal.NewFromFloat(0.5).Equal(engine.Coupon().DiscountRate))
}

func TestLoad_StorageFailureFallsBackToEmptyCart(t *testing.T) {
	ctx := context.Background()
	store := new(MockCartStore)
	store.On("ReadCart", mock.Anything).Return(nil, false, errors.New("corrupt"))
	store.On("ReadCoupon", mock.Anything).Return("", false, errors.New("corrupt"))
	store.On("WriteCart", mock.Anything, mock.Anything).Return(nil)
	engine, buffer := newTestEngine(store, nil)

	err := engine.Load(ctx)

	require.Error(t, err)
	waitReady(t, engine)
	assert.Empty(t, engine.Items())
	assert.False(t, engine.Coupon().Applied)
	assert.Equal(t, []notify.Kind{notify.Error, notify.Error}, kinds(buffer.Drain()))

	require.NoError(t, engine.AddItem(ctx, model.Product{ID: 1, Price: 100}, 1), "engine stays usable")
}

func TestLoad_OnlyOnce(t *testing.T) {
	engine, _ := newTestEngine(newMemoryStore(), nil)

	require.NoError(t, engine.Load(context.Background()))
	assert.ErrorIs(t, engine.Load(context.Background()), ErrAlreadyLoaded)
}

func TestWaitReady_ContextDone(t *testing.T) {
	engine, _ := newTestEngine(newMemoryStore(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, engine.WaitReady(ctx), context.Canceled)
}
