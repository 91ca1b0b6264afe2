package coupon

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultCode is the discount code recognised out of the box.
const DefaultCode = "DISCOUNT10"

// DefaultRate is the rate of DefaultCode.
var DefaultRate = decimal.NewFromFloat(0.10)

// Rule binds a coupon code to a discount rate.
type Rule struct {
	Code string
	Rate decimal.Decimal
}

// DefaultRule returns the DISCOUNT10 rule.
func DefaultRule() Rule {
	return Rule{Code: DefaultCode, Rate: DefaultRate}
}

// staticValidator validates against a fixed rule table.
type staticValidator struct {
	rules  map[string]decimal.Decimal
	logger zerolog.Logger
}

// NewStaticValidator creates a validator over the given rules. Rules with an
// empty code or a non-positive rate are ignored.
func NewStaticValidator(logger zerolog.Logger, rules ...Rule) Validator {
	v := &staticValidator{
		rules:  make(map[string]decimal.Decimal, len(rules)),
		logger: logger.With().Str("component", "static-coupon-validator").Logger(),
	}
	for _, r := range rules {
		code := Normalize(r.Code)
		if code == "" || !r.Rate.IsPositive() {
			v.logger.Warn().Str("code", r.Code).Str("rate", r.Rate.String()).Msg("ignoring invalid coupon rule")
			continue
		}
		v.rules[code] = r.Rate
	}
	return v
}

// Validate looks the normalised code up in the rule table.
func (v *staticValidator) Validate(_ context.Context, code string) Result {
	normalized := Normalize(code)

	rate, ok := v.rules[normalized]
	if !ok {
		v.logger.Debug().Str("code", normalized).Msg("coupon code not recognised")
		return Result{Code: normalized}
	}

	return Result{Code: normalized, Valid: true, DiscountRate: rate}
}

// Close releases nothing.
func (v *staticValidator) Close() error {
	return nil
}

// chain consults validators in order.
type chain []Validator

// Chain returns a validator that accepts the first valid result of validators.
func Chain(validators ...Validator) Validator {
	return chain(validators)
}

func (c chain) Validate(ctx context.Context, code string) Result {
	for _, v := range c {
		if res := v.Validate(ctx, code); res.Valid {
			return res
		}
	}
	return Result{Code: Normalize(code)}
}

func (c chain) Close() error {
	var firstErr error
	for _, v := range c {
		if err := v.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
