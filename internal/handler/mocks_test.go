package handler

import (
	"context"

	"bookstore/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) View(ctx context.Context) model.CartView {
	return m.Called(ctx).Get(0).(model.CartView)
}

func (m *MockCartService) Count(ctx context.Context) int64 {
	return m.Called(ctx).Get(0).(int64)
}

func (m *MockCartService) AddProduct(ctx context.Context, productID int64, quantity int) (model.CartView, error) {
	args := m.Called(ctx, productID, quantity)
	return args.Get(0).(model.CartView), args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, productID int64, quantity int) (model.CartView, error) {
	args := m.Called(ctx, productID, quantity)
	return args.Get(0).(model.CartView), args.Error(1)
}

func (m *MockCartService) Remove(ctx context.Context, productID int64) (model.CartView, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(model.CartView), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context) (model.CartView, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.CartView), args.Error(1)
}

func (m *MockCartService) SetCoupon(ctx context.Context, code string) model.CartView {
	return m.Called(ctx, code).Get(0).(model.CartView)
}

func (m *MockCartService) ApplyCoupon(ctx context.Context, code *string) (model.CartView, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(model.CartView), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}
