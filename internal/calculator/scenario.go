package calculator

import (
	"portfoliocalc/internal/domain"

	"github.com/shopspring/decimal"
)

// Scenarios projects the portfolio under each uniform percentage move,
// one result per input in caller order. Percentages are not clamped.
func Scenarios(snapshot domain.Snapshot, scenarioPcts []decimal.Decimal) []domain.ScenarioResult {
	basis := NewBasis(snapshot)

	results := make([]domain.ScenarioResult, 0, len(scenarioPcts))
	for _, pct := range scenarioPcts {
		multiplier := decimal.NewFromInt(1).Add(pct.Div(hundred))

		positionValue := decimal.Zero
		for _, a := range snapshot.Assets {
			positionValue = positionValue.Add(a.Shares.Mul(a.BuyPrice).Mul(multiplier))
		}

		totalValue := basis.Cash.Add(positionValue)
		pl := totalValue.Sub(snapshot.Capital)
		results = append(results, domain.ScenarioResult{
			ScenarioPct: pct,
			TotalValue:  totalValue,
			PL:          pl,
			PLNet:       pl.Sub(basis.TotalFee),
		})
	}

	return results
}
