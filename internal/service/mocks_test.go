package service

import (
	"context"

	"bookstore/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockProductGateway is a mock implementation of gateway.ProductGateway.
type MockProductGateway struct {
	mock.Mock
}

func (m *MockProductGateway) GetProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductGateway) ListProducts(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductGateway) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockOrderGateway is a mock implementation of gateway.OrderGateway.
type MockOrderGateway struct {
	mock.Mock
}

func (m *MockOrderGateway) CreateOrder(ctx context.Context, key string, req *model.OrderRequest) (*model.Order, error) {
	args := m.Called(ctx, key, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderGateway) ListOrders(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderGateway) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockCartEngine is a mock implementation of CartEngine.
type MockCartEngine struct {
	mock.Mock
}

func (m *MockCartEngine) View() model.CartView {
	return m.Called().Get(0).(model.CartView)
}

func (m *MockCartEngine) Totals() model.Totals {
	return m.Called().Get(0).(model.Totals)
}

func (m *MockCartEngine) AddItem(ctx context.Context, product model.Product, quantity int) error {
	return m.Called(ctx, product, quantity).Error(0)
}

func (m *MockCartEngine) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	return m.Called(ctx, productID, quantity).Error(0)
}

func (m *MockCartEngine) RemoveItem(ctx context.Context, productID int64) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *MockCartEngine) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCartEngine) SetCouponCode(code string) {
	m.Called(code)
}

func (m *MockCartEngine) ApplyCoupon(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCartEngine) WaitReady(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
