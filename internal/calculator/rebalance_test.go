package calculator

import (
	"encoding/json"
	"portfoliocalc/internal/domain"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func weights(kv ...string) domain.TargetWeights {
	out := domain.TargetWeights{}
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = dec(kv[i+1])
	}
	return out
}

func TestValidateWeights(t *testing.T) {
	snapshot := newSnapshot(t, "10000", noFees(), asset("A", "100", "40"), asset("B", "100", "60"))

	t.Run("sum of 99.5 is rejected", func(t *testing.T) {
		_, err := ValidateWeights(snapshot, weights("A", "49.5", "B", "50"))
		require.ErrorIs(t, err, domain.ValidationError{Code: domain.ErrCodeInvalidWeights})
	})

	t.Run("sum of 100.005 is accepted", func(t *testing.T) {
		_, err := ValidateWeights(snapshot, weights("A", "50.005", "B", "50"))
		require.NoError(t, err)
	})

	t.Run("tolerance boundaries", func(t *testing.T) {
		_, err := ValidateWeights(snapshot, weights("A", "49.99", "B", "50"))
		require.NoError(t, err)
		_, err = ValidateWeights(snapshot, weights("A", "50.01", "B", "50"))
		require.NoError(t, err)
		_, err = ValidateWeights(snapshot, weights("A", "50.011", "B", "50"))
		require.Error(t, err)
	})

	t.Run("missing ticker", func(t *testing.T) {
		_, err := ValidateWeights(snapshot, weights("A", "100"))
		require.ErrorIs(t, err, domain.ValidationError{Code: domain.ErrCodeInvalidWeights})
		require.Equal(t, "target_weights.B", err.(domain.ValidationError).Field)
	})

	t.Run("weight out of range", func(t *testing.T) {
		_, err := ValidateWeights(snapshot, weights("A", "-10", "B", "110"))
		require.ErrorIs(t, err, domain.ValidationError{Code: domain.ErrCodeInvalidWeights})
	})

	t.Run("keys are case normalized and extras ignored", func(t *testing.T) {
		out, err := ValidateWeights(snapshot, weights("a", "50", "b", "50", "ZZZ", "30"))
		require.NoError(t, err)
		require.True(t, out["A"].Equal(dec("50")))
	})
}

func TestRebalance(t *testing.T) {
	t.Run("sell overweight to fund underweight", func(t *testing.T) {
		snapshot := newSnapshot(t, "10000", noFees(), asset("A", "100", "40"), asset("B", "100", "60"))

		orders, err := Rebalance(snapshot, weights("A", "50", "B", "50"))
		require.NoError(t, err)

		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.Order{
					{Ticker: "B", Side: domain.OrderSideSell, Qty: 10, Cost: dec("1000"), NewShares: dec("50")},
					{Ticker: "A", Side: domain.OrderSideBuy, Qty: 10, Cost: dec("1000"), NewShares: dec("50")},
				},
				orders,
				decimalComparer,
			),
		)
	})

	t.Run("already at target", func(t *testing.T) {
		snapshot := newSnapshot(t, "10000", noFees(), asset("A", "100", "50"), asset("B", "100", "50"))

		orders, err := Rebalance(snapshot, weights("A", "50", "B", "50"))
		require.NoError(t, err)
		require.Empty(t, orders)
	})

	t.Run("differences under one share are skipped", func(t *testing.T) {
		snapshot := newSnapshot(t, "1000", noFees(), asset("A", "100", "4"), asset("B", "300", "2"))

		orders, err := Rebalance(snapshot, weights("A", "45", "B", "55"))
		require.NoError(t, err)
		require.Empty(t, orders)
	})

	t.Run("fees reduce proceeds and raise costs", func(t *testing.T) {
		fees := domain.FeeConfig{Percentage: dec("1"), Flat: dec("0")}
		snapshot := newSnapshot(t, "10000", fees, asset("A", "100", "40"), asset("B", "100", "60"))

		orders, err := Rebalance(snapshot, weights("A", "50", "B", "50"))
		require.NoError(t, err)

		// 990 in proceeds only affords 9 shares at 101
		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.Order{
					{Ticker: "B", Side: domain.OrderSideSell, Qty: 10, Cost: dec("990"), NewShares: dec("50")},
					{Ticker: "A", Side: domain.OrderSideBuy, Qty: 9, Cost: dec("909"), NewShares: dec("49")},
				},
				orders,
				decimalComparer,
			),
		)
	})

	t.Run("largest underweight is funded first", func(t *testing.T) {
		fees := domain.FeeConfig{Percentage: dec("1"), Flat: dec("0")}
		snapshot := newSnapshot(t, "1000", fees, asset("B", "100", "0"), asset("A", "100", "0"))

		orders, err := Rebalance(snapshot, weights("A", "40", "B", "60"))
		require.NoError(t, err)

		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.Order{
					{Ticker: "B", Side: domain.OrderSideBuy, Qty: 6, Cost: dec("606"), NewShares: dec("6")},
					{Ticker: "A", Side: domain.OrderSideBuy, Qty: 3, Cost: dec("303"), NewShares: dec("3")},
				},
				orders,
				decimalComparer,
			),
		)
	})

	t.Run("ties are broken by ticker", func(t *testing.T) {
		fees := domain.FeeConfig{Percentage: dec("1"), Flat: dec("0")}
		snapshot := newSnapshot(t, "1000", fees, asset("B", "100", "0"), asset("A", "100", "0"))

		orders, err := Rebalance(snapshot, weights("A", "50", "B", "50"))
		require.NoError(t, err)

		require.Len(t, orders, 2)
		require.Equal(t, "A", orders[0].Ticker)
		require.Equal(t, int64(5), orders[0].Qty)
		require.Equal(t, "B", orders[1].Ticker)
		require.Equal(t, int64(4), orders[1].Qty)
	})

	t.Run("later buys can get nothing", func(t *testing.T) {
		snapshot := newSnapshot(t, "1000", noFees(), asset("A", "900", "0"), asset("B", "100", "0"))

		orders, err := Rebalance(snapshot, weights("A", "95", "B", "5"))
		require.NoError(t, err)

		// A takes 900 of 1000; B wants 50 which is under one share
		require.Len(t, orders, 1)
		require.Equal(t, "A", orders[0].Ticker)
	})

	t.Run("never sells more than held", func(t *testing.T) {
		snapshot := newSnapshot(t, "25", noFees(), asset("A", "10", "2.5"), asset("B", "5", "0"))

		orders, err := Rebalance(snapshot, weights("A", "0", "B", "100"))
		require.NoError(t, err)

		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.Order{
					{Ticker: "A", Side: domain.OrderSideSell, Qty: 2, Cost: dec("20"), NewShares: dec("0.5")},
					{Ticker: "B", Side: domain.OrderSideBuy, Qty: 4, Cost: dec("20"), NewShares: dec("4")},
				},
				orders,
				decimalComparer,
			),
		)
	})

	t.Run("sells repay negative cash before funding buys", func(t *testing.T) {
		fees := domain.FeeConfig{Percentage: dec("1"), Flat: dec("0")}
		snapshot := newSnapshot(t, "1000", fees, asset("A", "100", "15"), asset("B", "100", "0"))

		// cash starts at -500 so only 490 of the 990 proceeds is spendable
		orders, err := Rebalance(snapshot, weights("A", "50", "B", "50"))
		require.NoError(t, err)

		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.Order{
					{Ticker: "A", Side: domain.OrderSideSell, Qty: 10, Cost: dec("990"), NewShares: dec("5")},
					{Ticker: "B", Side: domain.OrderSideBuy, Qty: 4, Cost: dec("404"), NewShares: dec("4")},
				},
				orders,
				decimalComparer,
			),
		)
	})

	t.Run("invalid weights return no orders", func(t *testing.T) {
		snapshot := newSnapshot(t, "10000", noFees(), asset("A", "100", "40"), asset("B", "100", "60"))

		orders, err := Rebalance(snapshot, weights("A", "50", "B", "49.5"))
		require.Error(t, err)
		require.Nil(t, orders)
	})

	t.Run("repeated invocation is identical", func(t *testing.T) {
		fees := domain.FeeConfig{Percentage: dec("0.35"), Flat: dec("1")}
		snapshot := newSnapshot(
			t, "20000", fees,
			asset("A", "13.37", "100"),
			asset("B", "250", "10"),
			asset("C", "42", "33.3333"),
			asset("D", "7.5", "0"),
		)
		w := weights("A", "25", "B", "25", "C", "25", "D", "25")

		first, err := Rebalance(snapshot, w)
		require.NoError(t, err)
		second, err := Rebalance(snapshot, w)
		require.NoError(t, err)

		a, err := json.Marshal(first)
		require.NoError(t, err)
		b, err := json.Marshal(second)
		require.NoError(t, err)
		require.Equal(t, string(a), string(b))
	})
}

func TestRebalanceInvariants(t *testing.T) {
	feeConfigs := []domain.FeeConfig{
		noFees(),
		{Percentage: dec("0.5"), Flat: dec("2")},
		{Percentage: dec("3"), Flat: dec("0")},
	}
	snapshots := [][]domain.AssetInput{
		{asset("A", "100", "40"), asset("B", "100", "60")},
		{asset("A", "13.37", "100"), asset("B", "250", "10"), asset("C", "42", "33.3333")},
		{asset("A", "999", "1"), asset("B", "1", "5000"), asset("C", "55.55", "0")},
	}
	weightSets := []domain.TargetWeights{
		weights("A", "10", "B", "90", "C", "0"),
		weights("A", "33.33", "B", "33.33", "C", "33.34"),
		weights("A", "0", "B", "0", "C", "100"),
		weights("A", "100", "B", "0", "C", "0"),
	}
	capitals := []string{"5000", "10000", "12345.67"}

	for _, fees := range feeConfigs {
		for _, assets := range snapshots {
			for _, capital := range capitals {
				snapshot := newSnapshot(t, capital, fees, assets...)
				for _, w := range weightSets {
					if len(assets) == 2 {
						w = domain.TargetWeights{"A": w["A"], "B": w["B"].Add(w["C"])}
					}
					orders, err := Rebalance(snapshot, w)
					require.NoError(t, err)

					invested := Invested(snapshot.Assets)
					budget := Cash(snapshot.Capital, invested)
					spent := decimal.Zero
					for _, o := range orders {
						require.Positive(t, o.Qty)
						require.False(t, o.NewShares.IsNegative())
						held, _ := snapshot.Asset(o.Ticker)
						if o.Side == domain.OrderSideSell {
							require.True(t, decimal.NewFromInt(o.Qty).LessThanOrEqual(held.Shares))
							budget = budget.Add(o.Cost)
						} else {
							spent = spent.Add(o.Cost)
						}
					}
					if spent.IsPositive() {
						require.True(t, spent.LessThanOrEqual(budget), "spent %s of %s", spent, budget)
					}

					summary := SummarizeOrders(snapshot, orders)
					require.True(t, summary.RemainingCash.Equal(budget.Sub(spent)))
				}
			}
		}
	}
}

func TestSummarizeOrders(t *testing.T) {
	fees := domain.FeeConfig{Percentage: dec("1"), Flat: dec("0")}
	snapshot := newSnapshot(t, "10000", fees, asset("A", "100", "40"), asset("B", "100", "60"))

	orders, err := Rebalance(snapshot, weights("A", "50", "B", "50"))
	require.NoError(t, err)

	require.Equal(
		t,
		"",
		cmp.Diff(
			RebalanceSummary{
				TotalBuys:     dec("909"),
				TotalSells:    dec("990"),
				NetCashFlow:   dec("81"),
				RemainingCash: dec("81"),
			},
			SummarizeOrders(snapshot, orders),
			decimalComparer,
		),
	)
}

func TestRebalanceCentRounding(t *testing.T) {
	fees := domain.FeeConfig{Percentage: dec("1"), Flat: dec("0")}
	snapshot := newSnapshot(t, "99.999", fees, asset("A", "33.333", "3"), asset("B", "10.001", "0"))

	orders, err := Rebalance(snapshot, weights("A", "0", "B", "100"))
	require.NoError(t, err)

	// proceeds 98.99901 round down, buy cost 9 * 10.10101 = 90.90909 rounds up
	require.Equal(
		t,
		"",
		cmp.Diff(
			[]domain.Order{
				{Ticker: "A", Side: domain.OrderSideSell, Qty: 3, Cost: dec("98.99"), NewShares: dec("0")},
				{Ticker: "B", Side: domain.OrderSideBuy, Qty: 9, Cost: dec("90.91"), NewShares: dec("9")},
			},
			orders,
			decimalComparer,
		),
	)
	require.True(t, SummarizeOrders(snapshot, orders).RemainingCash.Equal(dec("8.08")))
}

func TestWholeUnits(t *testing.T) {
	// Div at 16 digits would round this quotient up to 2
	require.True(t, wholeUnits(dec("1.99999999999999999999"), dec("1")).Equal(dec("1")))
	require.True(t, wholeUnits(dec("99.999"), dec("33.333")).Equal(dec("3")))
	require.True(t, wholeUnits(dec("0.5"), dec("1")).IsZero())

	t.Run("affordable quantity respects cent rounding", func(t *testing.T) {
		// 2 * 1.005 = 2.01 fits exactly, 1.014 of cash floors to 1.01
		require.True(t, affordableQty(dec("2.01"), dec("1.005")).Equal(dec("2")))
		require.True(t, affordableQty(dec("1.014"), dec("1.005")).Equal(dec("1")))
		require.True(t, affordableQty(dec("1.009"), dec("1.005")).IsZero())
		require.True(t, affordableQty(dec("-5"), dec("1")).IsZero())
	})
}
