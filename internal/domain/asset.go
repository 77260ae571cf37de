package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultSector = "Other"

// share quantities are carried with this many decimal places
const SharePrecision = 4

var hundred = decimal.NewFromInt(100)

// Asset is a single priced holding inside a snapshot. Assets are
// built through NewAsset and treated as read-only afterwards.
type Asset struct {
	Ticker        string           `json:"ticker"`
	BuyPrice      decimal.Decimal  `json:"buy_price"`
	Shares        decimal.Decimal  `json:"shares"`
	Sector        string           `json:"sector"`
	TakeProfitPct *decimal.Decimal `json:"take_profit_pct"`
	StopLossPct   *decimal.Decimal `json:"stop_loss_pct"`
	FeeOverride   *decimal.Decimal `json:"fee_override"`
}

// AssetInput is the unvalidated caller-facing shape of an asset
type AssetInput struct {
	Ticker        string           `json:"ticker"`
	BuyPrice      decimal.Decimal  `json:"buy_price"`
	Shares        decimal.Decimal  `json:"shares"`
	Sector        string           `json:"sector"`
	TakeProfitPct *decimal.Decimal `json:"take_profit_pct"`
	StopLossPct   *decimal.Decimal `json:"stop_loss_pct"`
	FeeOverride   *decimal.Decimal `json:"fee_override"`
}

func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// NewAsset validates in and returns the normalized asset. Errors carry
// the field name relative to the asset.
func NewAsset(in AssetInput) (Asset, error) {
	ticker := NormalizeTicker(in.Ticker)
	if ticker == "" {
		return Asset{}, newValidationError(ErrCodeInvalidAsset, "ticker", "is required")
	}
	if !in.BuyPrice.IsPositive() {
		return Asset{}, newValidationError(ErrCodeInvalidAsset, "buy_price", "must be greater than 0, got %s", in.BuyPrice)
	}
	if in.Shares.IsNegative() {
		return Asset{}, newValidationError(ErrCodeInvalidAsset, "shares", "cannot be negative, got %s", in.Shares)
	}
	if in.TakeProfitPct != nil && in.TakeProfitPct.IsNegative() {
		return Asset{}, newValidationError(ErrCodeInvalidAsset, "take_profit_pct", "must be >= 0, got %s", *in.TakeProfitPct)
	}
	if in.StopLossPct != nil && !isPercentage(*in.StopLossPct) {
		return Asset{}, newValidationError(ErrCodeInvalidAsset, "stop_loss_pct", "must be between 0 and 100, got %s", *in.StopLossPct)
	}
	if in.FeeOverride != nil && !isPercentage(*in.FeeOverride) {
		return Asset{}, newValidationError(ErrCodeInvalidAsset, "fee_override", "must be between 0 and 100, got %s", *in.FeeOverride)
	}

	sector := strings.TrimSpace(in.Sector)
	if sector == "" {
		sector = DefaultSector
	}

	return Asset{
		Ticker:        ticker,
		BuyPrice:      in.BuyPrice,
		Shares:        in.Shares.Round(SharePrecision),
		Sector:        sector,
		TakeProfitPct: copyDecimal(in.TakeProfitPct),
		StopLossPct:   copyDecimal(in.StopLossPct),
		FeeOverride:   copyDecimal(in.FeeOverride),
	}, nil
}

// Input converts the asset back to its caller-facing shape
func (a Asset) Input() AssetInput {
	return AssetInput{
		Ticker:        a.Ticker,
		BuyPrice:      a.BuyPrice,
		Shares:        a.Shares,
		Sector:        a.Sector,
		TakeProfitPct: copyDecimal(a.TakeProfitPct),
		StopLossPct:   copyDecimal(a.StopLossPct),
		FeeOverride:   copyDecimal(a.FeeOverride),
	}
}

// Value is the asset's invested value at its buy price
func (a Asset) Value() decimal.Decimal {
	return a.BuyPrice.Mul(a.Shares)
}

func isPercentage(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(hundred)
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	out := *d
	return &out
}
