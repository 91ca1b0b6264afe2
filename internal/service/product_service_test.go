package service

import (
	"context"
	"errors"
	"testing"

	"bookstore/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_GetAll(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	testProducts := []model.Product{
		{ID: 1, Name: "Dune", Price: 12000},
		{ID: 2, Name: "Emma", Price: 20000},
	}

	tests := []struct {
		name           string
		limit          int
		offset         int
		expectedLimit  int
		expectedOffset int
	}{
		{name: "Valid pagination", limit: 10, offset: 0, expectedLimit: 10, expectedOffset: 0},
		{name: "Zero limit defaults to 10", limit: 0, offset: 0, expectedLimit: 10, expectedOffset: 0},
		{name: "Negative limit defaults to 10", limit: -5, offset: 0, expectedLimit: 10, expectedOffset: 0},
		{name: "Limit exceeds max", limit: 150, offset: 0, expectedLimit: 100, expectedOffset: 0},
		{name: "Negative offset", limit: 10, offset: -5, expectedLimit: 10, expectedOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockGateway := new(MockProductGateway)
			service := NewProductService(mockGateway, logger)

			mockGateway.On("ListProducts", ctx, tt.expectedLimit, tt.expectedOffset).Return(testProducts, nil)

			products, err := service.GetAll(ctx, tt.limit, tt.offset)

			require.NoError(t, err)
			assert.Equal(t, testProducts, products)
			mockGateway.AssertExpectations(t)
		})
	}
}

func TestProductService_GetAll_Error(t *testing.T) {
	ctx := context.Background()
	mockGateway := new(MockProductGateway)
	service := NewProductService(mockGateway, zerolog.Nop())

	backendErr := errors.New("connection refused")
	mockGateway.On("ListProducts", ctx, 10, 0).Return(nil, backendErr)

	products, err := service.GetAll(ctx, 10, 0)

	require.Error(t, err)
	assert.ErrorIs(t, err, backendErr)
	assert.Nil(t, products)
}

func TestProductService_GetByID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		id          int64
		setup       func(*MockProductGateway)
		wantErr     error
		wantProduct bool
	}{
		{
			name: "Found",
			id:   1,
			setup: func(m *MockProductGateway) {
				m.On("GetProduct", ctx, int64(1)).Return(&model.Product{ID: 1, Name: "Dune"}, nil)
			},
			wantProduct: true,
		},
		{
			name: "Not found",
			id:   2,
			setup: func(m *MockProductGateway) {
				m.On("GetProduct", ctx, int64(2)).Return(nil, model.ErrProductNotFound)
			},
			wantErr: model.ErrProductNotFound,
		},
		{
			name:    "Invalid id skips backend",
			id:      0,
			setup:   func(*MockProductGateway) {},
			wantErr: model.ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockGateway := new(MockProductGateway)
			tt.setup(mockGateway)
			service := NewProductService(mockGateway, zerolog.Nop())

			product, err := service.GetByID(ctx, tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, product)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, product)
			}
			mockGateway.AssertExpectations(t)
		})
	}
}

func TestProductService_GetByIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty ids", func(t *testing.T) {
		mockGateway := new(MockProductGateway)
		service := NewProductService(mockGateway, zerolog.Nop())

		products, err := service.GetByIDs(ctx, nil)

		require.NoError(t, err)
		assert.Empty(t, products)
		mockGateway.AssertNotCalled(t, "GetProductsByIDs")
	})

	t.Run("Batch", func(t *testing.T) {
		mockGateway := new(MockProductGateway)
		service := NewProductService(mockGateway, zerolog.Nop())
		mockGateway.On("GetProductsByIDs", ctx, []int64{1, 2}).Return([]model.Product{{ID: 1}}, nil)

		products, err := service.GetByIDs(ctx, []int64{1, 2})

		require.NoError(t, err)
		assert.Len(t, products, 1)
		mockGateway.AssertExpectations(t)
	})
}
