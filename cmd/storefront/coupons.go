package main

import (
	"context"
	"fmt"

	"bookstore/internal/config"
	"bookstore/internal/coupon"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// newCouponValidator builds the configured rule, followed by the catalogue
// files when any are configured.
func newCouponValidator(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (coupon.Validator, error) {
	rate := decimal.NewFromFloat(cfg.Coupon.Rate)
	static := coupon.NewStaticValidator(logger, coupon.Rule{Code: cfg.Coupon.Code, Rate: rate})

	if len(cfg.Coupon.Files) == 0 {
		logger.Info().Str("code", cfg.Coupon.Code).Msg("using built-in coupon rule only")
		return static, nil
	}

	// Initialize coupon loader with S3 and local fallback
	fileLoader := coupon.NewFileLoader(logger)
	var loader coupon.Loader = fileLoader

	if cfg.S3.Enabled {
		s3Loader, err := coupon.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			loader = coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, true, logger)
		}
	} else {
		logger.Info().Msg("using local file system for coupon files (S3 disabled)")
	}

	catalogue, err := coupon.NewCatalogueValidator(ctx, &coupon.ValidatorConfig{
		FilePaths:     cfg.Coupon.Files,
		MinMatchCount: cfg.Coupon.MinMatchCount,
		DefaultRate:   rate,
	}, loader, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load coupon catalogue: %w", err)
	}

	return coupon.Chain(static, catalogue), nil
}
