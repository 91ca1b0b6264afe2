package coupon

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// catalogueValidator validates codes against coupon sets loaded from
// catalogue files. Sets are read-only after initialisation.
type catalogueValidator struct {
	couponSets    []CouponSet
	minMatchCount int
	defaultRate   decimal.Decimal
	logger        zerolog.Logger
}

// ValidatorConfig holds configuration for the catalogue validator.
type ValidatorConfig struct {
	// FilePaths is the list of coupon file paths to load.
	FilePaths []string

	// MinMatchCount is the minimum number of files a code must appear in.
	// Default: 1
	MinMatchCount int

	// DefaultRate applies to codes whose catalogue lines carry no rate.
	DefaultRate decimal.Decimal
}

// DefaultValidatorConfig returns the default validator configuration.
func DefaultValidatorConfig() *ValidatorConfig {
	return &ValidatorConfig{
		FilePaths:     []string{"data/coupons/catalogue.gz"},
		MinMatchCount: 1,
		DefaultRate:   DefaultRate,
	}
}

// NewCatalogueValidator creates a catalogue validator.
// It loads all coupon files at initialisation time.
func NewCatalogueValidator(ctx context.Context, config *ValidatorConfig, loader Loader, logger zerolog.Logger) (Validator, error) {
	if config == nil {
		config = DefaultValidatorConfig()
	}
	if config.MinMatchCount < 1 {
		config.MinMatchCount = 1
	}
	if config.MinMatchCount > len(config.FilePaths) {
		return nil, fmt.Errorf("min match count %d exceeds the %d configured coupon files", config.MinMatchCount, len(config.FilePaths))
	}
	if !config.DefaultRate.IsPositive() {
		config.DefaultRate = DefaultRate
	}

	logger = logger.With().Str("component", "coupon-validator").Logger()

	logger.Info().
		Int("file_count", len(config.FilePaths)).
		Int("min_match_count", config.MinMatchCount).
		Msg("initialising coupon validator")

	v := &catalogueValidator{
		couponSets:    make([]CouponSet, 0, len(config.FilePaths)),
		minMatchCount: config.MinMatchCount,
		defaultRate:   config.DefaultRate,
		logger:        logger,
	}

	type loadResult struct {
		index int
		set   CouponSet
		err   error
	}

	resultChan := make(chan loadResult, len(config.FilePaths))
	var wg sync.WaitGroup

	for i, filePath := range config.FilePaths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			set, err := loader.Load(ctx, path)
			resultChan <- loadResult{
				index: index,
				set:   set,
				err:   err,
			}
		}(i, filePath)
	}

	wg.Wait()
	close(resultChan)

	// Collect results in file order
	results := make([]loadResult, len(config.FilePaths))
	for result := range resultChan {
		results[result.index] = result
	}

	totalCoupons := 0
	for i, result := range results {
		if result.err != nil {
			logger.Error().
				Err(result.err).
				Str("file", config.FilePaths[i]).
				Msg("failed to load coupon file")
			return nil, fmt.Errorf("failed to load coupon file %s: %w", config.FilePaths[i], result.err)
		}
		v.couponSets = append(v.couponSets, result.set)
		totalCoupons += result.set.Size()
	}

	logger.Info().
		Int("total_coupons", totalCoupons).
		Msg("coupon validator initialised successfully")

	return v, nil
}

// Validate accepts a code present in at least MinMatchCount catalogue files.
func (v *catalogueValidator) Validate(ctx context.Context, code string) Result {
	normalized := Normalize(code)
	if normalized == "" {
		return Result{Code: normalized}
	}

	matchCount := v.countMatches(ctx, normalized)
	if matchCount < v.minMatchCount {
		v.logger.Debug().
			Str("code", normalized).
			Int("match_count", matchCount).
			Msg("coupon code not found in sufficient files")
		return Result{Code: normalized}
	}

	return Result{Code: normalized, Valid: true, DiscountRate: v.rateFor(normalized)}
}

// rateFor returns the first explicit rate recorded for code in file order,
// falling back to the default rate.
func (v *catalogueValidator) rateFor(code string) decimal.Decimal {
	for _, set := range v.couponSets {
		if rate, ok := set.Lookup(code); ok && rate.IsPositive() {
			return rate
		}
	}
	return v.defaultRate
}

// countMatches counts how many coupon sets contain the code, stopping as soon
// as the outcome is decided.
func (v *catalogueValidator) countMatches(ctx context.Context, code string) int {
	// Buffered so workers never block after early termination
	resultChan := make(chan bool, len(v.couponSets))
	doneChan := make(chan struct{})
	defer close(doneChan)

	for _, set := range v.couponSets {
		go func(s CouponSet) {
			select {
			case <-doneChan:
				return
			case <-ctx.Done():
				return
			default:
			}

			found := s.Contains(code)

			select {
			case resultChan <- found:
			case <-doneChan:
			case <-ctx.Done():
			}
		}(set)
	}

	matches := 0
	checked := 0

	for checked < len(v.couponSets) {
		select {
		case found := <-resultChan:
			checked++
			if found {
				matches++
				if matches >= v.minMatchCount {
					return matches
				}
			}
			remaining := len(v.couponSets) - checked
			if matches+remaining < v.minMatchCount {
				return matches
			}
		case <-ctx.Done():
			return matches
		}
	}

	return matches
}

// Close releases resources held by the validator.
func (v *catalogueValidator) Close() error {
	v.couponSets = nil

	v.logger.Info().Msg("coupon validator closed")

	return nil
}
