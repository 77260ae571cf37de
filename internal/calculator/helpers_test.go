package calculator

import (
	"portfoliocalc/internal/domain"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

func noFees() domain.FeeConfig {
	return domain.FeeConfig{Percentage: decimal.Zero, Flat: decimal.Zero}
}

func asset(ticker, buyPrice, shares string) domain.AssetInput {
	return domain.AssetInput{
		Ticker:   ticker,
		BuyPrice: dec(buyPrice),
		Shares:   dec(shares),
	}
}

func newSnapshot(t *testing.T, capital string, fees domain.FeeConfig, assets ...domain.AssetInput) domain.Snapshot {
	t.Helper()
	snapshot, err := domain.NewSnapshot(domain.SnapshotInput{
		Capital: dec(capital),
		Assets:  assets,
		Fees:    fees,
	})
	require.NoError(t, err)
	return *snapshot
}
