package domain

import "github.com/shopspring/decimal"

// FeeConfig holds the portfolio-wide fee model. Percentage applies to
// every asset without a fee override; Flat is charged once per
// calculation.
type FeeConfig struct {
	Percentage decimal.Decimal `json:"percentage"`
	Flat       decimal.Decimal `json:"flat"`
}

func NewFeeConfig(percentage, flat decimal.Decimal) (FeeConfig, error) {
	if !isPercentage(percentage) {
		return FeeConfig{}, newValidationError(ErrCodeInvalidFeeConfig, "fees.percentage", "must be between 0 and 100, got %s", percentage)
	}
	if flat.IsNegative() {
		return FeeConfig{}, newValidationError(ErrCodeInvalidFeeConfig, "fees.flat", "cannot be negative, got %s", flat)
	}
	return FeeConfig{
		Percentage: percentage,
		Flat:       flat,
	}, nil
}
