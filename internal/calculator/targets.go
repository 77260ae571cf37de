package calculator

import (
	"fmt"
	"portfoliocalc/internal/domain"
	"sort"

	"github.com/shopspring/decimal"
)

// Targets values the portfolio as if every asset exits at its target
// price. Assets without a target exit at buy price. Stop-loss and
// take-profit settings on the assets are ignored.
func Targets(snapshot domain.Snapshot, targetPrices map[string]decimal.Decimal) (*domain.ExitValuation, error) {
	normalized := map[string]decimal.Decimal{}
	for _, ticker := range sortedKeys(targetPrices) {
		price := targetPrices[ticker]
		t := domain.NormalizeTicker(ticker)
		field := fmt.Sprintf("target_prices.%s", t)
		if _, ok := snapshot.Asset(t); !ok {
			return nil, domain.ValidationError{
				Code:    domain.ErrCodeInvalidAsset,
				Field:   field,
				Message: "has no matching asset",
			}
		}
		if _, ok := normalized[t]; ok {
			return nil, domain.ValidationError{
				Code:    domain.ErrCodeInvalidAsset,
				Field:   field,
				Message: "is given more than once",
			}
		}
		if price.IsNegative() {
			return nil, domain.ValidationError{
				Code:    domain.ErrCodeInvalidAsset,
				Field:   field,
				Message: fmt.Sprintf("cannot be negative, got %s", price),
			}
		}
		normalized[t] = price
	}

	total := decimal.Zero
	for _, a := range snapshot.Assets {
		exitPrice, ok := normalized[a.Ticker]
		if !ok {
			exitPrice = a.BuyPrice
		}
		total = total.Add(a.Shares.Mul(exitPrice))
	}

	return exitValuation(snapshot, total), nil
}

// DeriveTakeProfit expresses a target price as the take-profit
// percentage relative to buy price. The result is negative for targets
// below buy price.
func DeriveTakeProfit(asset domain.Asset, targetPrice decimal.Decimal) decimal.Decimal {
	return targetPrice.Sub(asset.BuyPrice).Div(asset.BuyPrice).Mul(hundred)
}

// TargetPriceFromTakeProfit is the inverse of DeriveTakeProfit
func TargetPriceFromTakeProfit(buyPrice, takeProfitPct decimal.Decimal) decimal.Decimal {
	return buyPrice.Mul(decimal.NewFromInt(1).Add(takeProfitPct.Div(hundred)))
}

// DefaultTargetPrices seeds a target price per asset from its own plan,
// the same selection the blended analyzer uses.
func DefaultTargetPrices(assets []domain.Asset) map[string]decimal.Decimal {
	out := map[string]decimal.Decimal{}
	for _, a := range assets {
		out[a.Ticker] = BlendedExitPrice(a)
	}
	return out
}

func exitValuation(snapshot domain.Snapshot, total decimal.Decimal) *domain.ExitValuation {
	pl := total.Sub(Invested(snapshot.Assets))
	return &domain.ExitValuation{
		Total: total,
		PL:    pl,
		PLNet: pl.Sub(TotalFee(snapshot.Assets, snapshot.Fees)),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
