package coupon

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// fileLoader implements Loader for reading gzipped coupon files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based coupon loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "coupon-loader").Logger(),
	}
}

// Load reads a gzipped coupon file and returns a CouponSet.
// Each line holds a code, optionally followed by a comma and a discount rate.
func (l *fileLoader) Load(ctx context.Context, filePath string) (CouponSet, error) {
	l.logger.Info().Str("file", filePath).Msg("loading coupon file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open coupon file")
		return nil, fmt.Errorf("failed to open coupon file %s: %w", filePath, err)
	}
	defer file.Close()

	set, err := readCatalogue(ctx, file, filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read coupon file")
		return nil, err
	}

	l.logger.Info().
		Str("file", filePath).
		Int("coupons_loaded", set.Size()).
		Msg("coupon file loaded successfully")

	return set, nil
}

// readCatalogue parses a gzipped catalogue stream.
func readCatalogue(ctx context.Context, r io.Reader, source string) (CouponSet, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	set := NewMapCouponSet(1024).(*mapCouponSet)

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%100_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		code, rateText, hasRate := strings.Cut(line, ",")
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}

		rate := decimal.Zero
		if hasRate {
			rate, err = decimal.NewFromString(strings.TrimSpace(rateText))
			if err != nil || !rate.IsPositive() || rate.GreaterThan(decimal.NewFromInt(1)) {
				return nil, fmt.Errorf("invalid discount rate %q on line %d of %s", rateText, lineNo, source)
			}
		}
		set.Add(code, rate)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading coupon file %s: %w", source, err)
	}

	return set, nil
}
