package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Snapshot is the immutable portfolio state every analyzer consumes.
// Asset order is for display only.
type Snapshot struct {
	Capital decimal.Decimal `json:"capital"`
	Assets  []Asset         `json:"assets"`
	Fees    FeeConfig       `json:"fees"`
}

type SnapshotInput struct {
	Capital decimal.Decimal `json:"capital"`
	Assets  []AssetInput    `json:"assets"`
	Fees    FeeConfig       `json:"fees"`
}

// NewSnapshot validates capital, fees and every asset, in that order,
// and returns the first violation found. Tickers must be unique after
// normalization.
func NewSnapshot(in SnapshotInput) (*Snapshot, error) {
	if !in.Capital.IsPositive() {
		return nil, newValidationError(ErrCodeInvalidCapital, "capital", "must be greater than 0, got %s", in.Capital)
	}
	if len(in.Assets) == 0 {
		return nil, newValidationError(ErrCodeNoAssets, "assets", "at least one asset is required")
	}

	fees, err := NewFeeConfig(in.Fees.Percentage, in.Fees.Flat)
	if err != nil {
		return nil, err
	}

	seen := map[string]int{}
	assets := make([]Asset, 0, len(in.Assets))
	for i, assetInput := range in.Assets {
		asset, err := NewAsset(assetInput)
		if err != nil {
			ve := err.(ValidationError)
			ve.Field = fmt.Sprintf("assets[%d].%s", i, ve.Field)
			return nil, ve
		}
		if j, ok := seen[asset.Ticker]; ok {
			return nil, newValidationError(
				ErrCodeInvalidAsset,
				fmt.Sprintf("assets[%d].ticker", i),
				"duplicates assets[%d] (%s)", j, asset.Ticker,
			)
		}
		seen[asset.Ticker] = i
		assets = append(assets, asset)
	}

	return &Snapshot{
		Capital: in.Capital,
		Assets:  assets,
		Fees:    fees,
	}, nil
}

func (s Snapshot) Tickers() []string {
	tickers := make([]string, 0, len(s.Assets))
	for _, a := range s.Assets {
		tickers = append(tickers, a.Ticker)
	}
	return tickers
}

// Asset looks up a holding by ticker, normalizing the argument first
func (s Snapshot) Asset(ticker string) (Asset, bool) {
	ticker = NormalizeTicker(ticker)
	for _, a := range s.Assets {
		if a.Ticker == ticker {
			return a, true
		}
	}
	return Asset{}, false
}
