package calculator

import (
	"fmt"
	"portfoliocalc/internal/domain"

	"github.com/shopspring/decimal"
)

func Invested(assets []domain.Asset) decimal.Decimal {
	total := decimal.Zero
	for _, a := range assets {
		total = total.Add(a.Value())
	}
	return total
}

// Cash is the uninvested residual; negative when holdings cost more
// than the committed capital
func Cash(capital, invested decimal.Decimal) decimal.Decimal {
	return capital.Sub(invested)
}

// EntryValue is invested + cash, which equals capital by construction
func EntryValue(capital, invested decimal.Decimal) decimal.Decimal {
	return invested.Add(Cash(capital, invested))
}

// Basis bundles the valuation figures every analyzer starts from
type Basis struct {
	Capital  decimal.Decimal `json:"capital"`
	Invested decimal.Decimal `json:"invested"`
	Cash     decimal.Decimal `json:"cash"`
	TotalFee decimal.Decimal `json:"total_fee"`
}

func NewBasis(snapshot domain.Snapshot) Basis {
	invested := Invested(snapshot.Assets)
	return Basis{
		Capital:  snapshot.Capital,
		Invested: invested,
		Cash:     Cash(snapshot.Capital, invested),
		TotalFee: TotalFee(snapshot.Assets, snapshot.Fees),
	}
}

// CapitalWarnings reports the soft invested <= capital check
func CapitalWarnings(snapshot domain.Snapshot) []domain.Warning {
	invested := Invested(snapshot.Assets)
	if invested.LessThanOrEqual(snapshot.Capital) {
		return nil
	}
	return []domain.Warning{
		{
			Code: domain.ErrCodeInvestedExceedsCapital,
			Message: fmt.Sprintf(
				"invested amount %s exceeds capital %s",
				invested.StringFixed(2),
				snapshot.Capital.StringFixed(2),
			),
		},
	}
}
