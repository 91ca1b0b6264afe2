package service

import (
	"context"
	"errors"
	"fmt"

	"bookstore/internal/gateway"
	"bookstore/internal/model"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	products gateway.ProductGateway
	logger   zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(products gateway.ProductGateway, logger zerolog.Logger) ProductService {
	return &productService{
		products: products,
		logger:   logger.With().Str("service", "product").Logger(),
	}
}

// GetAll retrieves products with pagination.
func (s *productService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.products.ListProducts(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		s.logger.Warn().Int64("product_id", id).Msg("invalid product ID")
		return nil, model.ErrProductNotFound
	}

	product, err := s.products.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			s.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, err
		}
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (s *productService) GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	products, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to get products by IDs")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("requested", len(ids)).
		Int("found", len(products)).
		Msg("retrieved products by IDs")

	return products, nil
}
