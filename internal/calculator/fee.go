package calculator

import (
	"portfoliocalc/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FeeRate is the percentage charged on asset, honoring its override
func FeeRate(asset domain.Asset, fees domain.FeeConfig) decimal.Decimal {
	if asset.FeeOverride != nil {
		return *asset.FeeOverride
	}
	return fees.Percentage
}

func AssetFee(asset domain.Asset, fees domain.FeeConfig) decimal.Decimal {
	return asset.Value().Mul(FeeRate(asset, fees)).Div(hundred)
}

// TotalFee sums every asset fee and adds the flat fee exactly once.
// Analyzers subtract this single figure from gross P/L.
func TotalFee(assets []domain.Asset, fees domain.FeeConfig) decimal.Decimal {
	total := fees.Flat
	for _, a := range assets {
		total = total.Add(AssetFee(a, fees))
	}
	return total
}
