package calculator

import (
	"portfoliocalc/internal/domain"

	"github.com/shopspring/decimal"
)

// BlendedExitPrice picks take-profit first, then stop-loss, then buy
// price.
func BlendedExitPrice(asset domain.Asset) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if asset.TakeProfitPct != nil {
		return asset.BuyPrice.Mul(one.Add(asset.TakeProfitPct.Div(hundred)))
	}
	if asset.StopLossPct != nil {
		return asset.BuyPrice.Mul(one.Sub(asset.StopLossPct.Div(hundred)))
	}
	return asset.BuyPrice
}

// Blended values the portfolio as if every asset hits its own plan at
// the same time.
func Blended(snapshot domain.Snapshot) *domain.ExitValuation {
	total := decimal.Zero
	for _, a := range snapshot.Assets {
		total = total.Add(a.Shares.Mul(BlendedExitPrice(a)))
	}
	return exitValuation(snapshot, total)
}
