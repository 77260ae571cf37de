package service

import (
	"context"
	"portfoliocalc/internal/calculator"
	"portfoliocalc/internal/domain"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func Test_calculationServiceHandler_Scenario(t *testing.T) {
	t.Run("concrete scenario", func(t *testing.T) {
		ctx, logs := observedContext(t)
		handler := NewCalculationService(false)

		out, err := handler.Scenario(ctx, ScenarioRequest{
			PortfolioRequest: portfolio("10000", asset("aapl", "150", "10")),
			Scenarios:        []decimal.Decimal{dec("-10"), dec("0"), dec("10")},
		})
		require.NoError(t, err)

		require.Equal(
			t,
			"",
			cmp.Diff(
				&ScenarioResponse{
					Valuation: Valuation{
						Invested:     dec("1500"),
						Cash:         dec("8500"),
						TotalCapital: dec("10000"),
						TotalFee:     dec("0"),
					},
					Results: []domain.ScenarioResult{
						{ScenarioPct: dec("-10"), TotalValue: dec("9850"), PL: dec("-150"), PLNet: dec("-150")},
						{ScenarioPct: dec("0"), TotalValue: dec("10000"), PL: dec("0"), PLNet: dec("0")},
						{ScenarioPct: dec("10"), TotalValue: dec("10150"), PL: dec("150"), PLNet: dec("150")},
					},
					Summary: &calculator.ScenarioSummary{
						BestPLNet:   dec("150"),
						WorstPLNet:  dec("-150"),
						MeanPLNet:   0,
						MedianPLNet: 0,
					},
					Warnings: []domain.Warning{},
				},
				out,
				decimalComparer,
			),
		)

		entries := logs.FilterMessage("calculation complete").All()
		require.Len(t, entries, 1)
		require.Equal(t, "scenario", entries[0].ContextMap()["operation"])
	})

	t.Run("omitted scenarios use the default set", func(t *testing.T) {
		out, err := NewCalculationService(false).Scenario(context.Background(), ScenarioRequest{
			PortfolioRequest: portfolio("10000", asset("AAPL", "150", "10")),
		})
		require.NoError(t, err)
		require.Len(t, out.Results, len(domain.DefaultScenarios()))
	})

	t.Run("explicit empty list", func(t *testing.T) {
		out, err := NewCalculationService(false).Scenario(context.Background(), ScenarioRequest{
			PortfolioRequest: portfolio("10000", asset("AAPL", "150", "10")),
			Scenarios:        []decimal.Decimal{},
		})
		require.NoError(t, err)
		require.Empty(t, out.Results)
		require.Nil(t, out.Summary)
	})

	t.Run("rounded figures reconcile", func(t *testing.T) {
		req := portfolio("10000", asset("X", "33.333", "3"))
		req.Fees.Percentage = dec("1")

		out, err := NewCalculationService(false).Scenario(context.Background(), ScenarioRequest{
			PortfolioRequest: req,
			Scenarios:        []decimal.Decimal{dec("0"), dec("7.77")},
		})
		require.NoError(t, err)

		require.True(t, out.TotalFee.Equal(dec("1")))
		for _, r := range out.Results {
			require.True(t, r.PL.Equal(r.TotalValue.Sub(out.TotalCapital)))
			require.True(t, r.PLNet.Equal(r.PL.Sub(out.TotalFee)))
			require.True(t, r.TotalValue.Equal(r.TotalValue.Round(2)))
		}
		require.True(t, out.Results[0].PLNet.Equal(dec("-1")))
	})

	t.Run("validation errors are returned without results", func(t *testing.T) {
		ctx, logs := observedContext(t)
		_, err := NewCalculationService(false).Scenario(ctx, ScenarioRequest{
			PortfolioRequest: portfolio("0", asset("AAPL", "150", "10")),
		})
		require.ErrorIs(t, err, domain.ValidationError{Code: domain.ErrCodeInvalidCapital})
		require.Equal(t, 1, logs.FilterMessage("rejected snapshot").Len())
	})
}

func Test_calculationServiceHandler_strictCapital(t *testing.T) {
	overInvested := portfolio("1000", asset("AAPL", "150", "10"))

	t.Run("warns by default", func(t *testing.T) {
		out, err := NewCalculationService(false).Blended(context.Background(), BlendedRequest{overInvested})
		require.NoError(t, err)
		require.Len(t, out.Warnings, 1)
		require.Equal(t, domain.ErrCodeInvestedExceedsCapital, out.Warnings[0].Code)
		require.True(t, out.Cash.Equal(dec("-500")))
	})

	t.Run("strict request blocks", func(t *testing.T) {
		req := overInvested
		req.Strict = true
		_, err := NewCalculationService(false).Blended(context.Background(), BlendedRequest{req})
		require.ErrorIs(t, err, domain.ValidationError{Code: domain.ErrCodeInvestedExceedsCapital})
	})

	t.Run("strict service blocks", func(t *testing.T) {
		_, err := NewCalculationService(true).Rebalance(context.Background(), RebalanceRequest{
			PortfolioRequest: overInvested,
			TargetWeights:    domain.TargetWeights{"AAPL": dec("100")},
		})
		code, ok := domain.CodeOf(err)
		require.True(t, ok)
		require.Equal(t, domain.ErrCodeInvestedExceedsCapital, code)
	})
}

func Test_calculationServiceHandler_Targets(t *testing.T) {
	handler := NewCalculationService(false)

	t.Run("target price map", func(t *testing.T) {
		req := portfolio("10000", asset("AAPL", "150", "10"), asset("MSFT", "100", "15"))
		req.Assets[0].StopLossPct = decPtr("50")

		out, err := handler.Targets(context.Background(), TargetsRequest{
			PortfolioRequest: req,
			TargetPrices:     map[string]decimal.Decimal{"aapl": dec("180")},
		})
		require.NoError(t, err)

		require.True(t, out.TargetsTotal.Equal(dec("3300")))
		require.True(t, out.TargetsPL.Equal(dec("300")))
		require.True(t, out.TargetsPLNet.Equal(dec("300")))
		require.Equal(t, "", cmp.Diff(map[string]decimal.Decimal{"AAPL": dec("180")}, out.TargetPrices, decimalComparer))
		require.Equal(t, "", cmp.Diff(map[string]decimal.Decimal{"AAPL": dec("20")}, out.TakeProfitPct, decimalComparer))
	})

	t.Run("derived take profit below buy price", func(t *testing.T) {
		req := portfolio("10000", asset("AAPL", "150", "10"))
		req.Assets[0].TakeProfitPct = decPtr("-20")
		req.Assets[0].StopLossPct = decPtr("5")

		out, err := handler.Targets(context.Background(), TargetsRequest{PortfolioRequest: req})
		require.NoError(t, err)

		require.True(t, out.TargetsTotal.Equal(dec("1200")))
		require.True(t, out.TargetsPL.Equal(dec("-300")))
		require.True(t, out.TargetPrices["AAPL"].Equal(dec("120")))

		// the caller's request is not modified
		require.NotNil(t, req.Assets[0].TakeProfitPct)
	})

	t.Run("derived take profit under -100", func(t *testing.T) {
		req := portfolio("10000", asset("AAPL", "150", "10"))
		req.Assets[0].TakeProfitPct = decPtr("-101")

		_, err := handler.Targets(context.Background(), TargetsRequest{PortfolioRequest: req})
		require.ErrorIs(t, err, domain.ValidationError{Code: domain.ErrCodeInvalidAsset})
		require.Equal(t, "assets[0].take_profit_pct", err.(domain.ValidationError).Field)
	})

	t.Run("unknown ticker", func(t *testing.T) {
		_, err := handler.Targets(context.Background(), TargetsRequest{
			PortfolioRequest: portfolio("10000", asset("AAPL", "150", "10")),
			TargetPrices:     map[string]decimal.Decimal{"GOOG": dec("1")},
		})
		require.ErrorIs(t, err, domain.ValidationError{Code: domain.ErrCodeInvalidAsset})
	})
}

func Test_calculationServiceHandler_Blended(t *testing.T) {
	req := portfolio("10000", asset("AAPL", "150", "10"), asset("MSFT", "200", "5"))
	req.Assets[0].TakeProfitPct = decPtr("10")
	req.Assets[1].StopLossPct = decPtr("25")
	req.Fees = domain.FeeConfig{Percentage: dec("0.5"), Flat: dec("1")}

	out, err := NewCalculationService(false).Blended(context.Background(), BlendedRequest{req})
	require.NoError(t, err)

	require.True(t, out.BlendedTotal.Equal(dec("2400")))
	require.True(t, out.BlendedPL.Equal(dec("-100")))
	require.True(t, out.BlendedPLNet.Equal(dec("-113.5")))
	require.Equal(
		t,
		"",
		cmp.Diff(map[string]decimal.Decimal{"AAPL": dec("165"), "MSFT": dec("150")}, out.ExitPrices, decimalComparer),
	)
}

func Test_calculationServiceHandler_Rebalance(t *testing.T) {
	req := portfolio("10000", asset("A", "100", "40"), asset("B", "100", "60"))
	req.Fees.Percentage = dec("1")

	out, err := NewCalculationService(false).Rebalance(context.Background(), RebalanceRequest{
		PortfolioRequest: req,
		TargetWeights:    domain.TargetWeights{"a": dec("50"), "b": dec("50")},
	})
	require.NoError(t, err)

	require.Equal(
		t,
		"",
		cmp.Diff(
			[]domain.Order{
				{Ticker: "B", Side: domain.OrderSideSell, Qty: 10, Cost: dec("990"), NewShares: dec("50")},
				{Ticker: "A", Side: domain.OrderSideBuy, Qty: 9, Cost: dec("909"), NewShares: dec("49")},
			},
			out.Orders,
			decimalComparer,
		),
	)
	require.True(t, out.Summary.RemainingCash.Equal(dec("81")))

	_, err = NewCalculationService(false).Rebalance(context.Background(), RebalanceRequest{
		PortfolioRequest: req,
		TargetWeights:    domain.TargetWeights{"A": dec("50")},
	})
	require.ErrorIs(t, err, domain.ValidationError{Code: domain.ErrCodeInvalidWeights})

	t.Run("displayed costs reconcile with summary and cash", func(t *testing.T) {
		req := portfolio("2.01", asset("A", "1", "0"), asset("B", "1", "0"))
		req.Fees.Percentage = dec("0.5")

		out, err := NewCalculationService(false).Rebalance(context.Background(), RebalanceRequest{
			PortfolioRequest: req,
			TargetWeights:    domain.TargetWeights{"A": dec("50"), "B": dec("50")},
		})
		require.NoError(t, err)

		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.Order{
					{Ticker: "A", Side: domain.OrderSideBuy, Qty: 1, Cost: dec("1.01"), NewShares: dec("1")},
				},
				out.Orders,
				decimalComparer,
			),
		)

		spent := decimal.Zero
		for _, o := range out.Orders {
			require.True(t, o.Cost.Equal(o.Cost.Round(2)))
			spent = spent.Add(o.Cost)
		}
		require.True(t, spent.LessThanOrEqual(out.Cash))
		require.True(t, out.Summary.TotalBuys.Equal(spent))
		require.True(t, out.Summary.RemainingCash.Equal(out.Cash.Sub(spent)))
		require.True(t, out.Summary.RemainingCash.Equal(dec("1")))
	})
}

func Test_calculationServiceHandler_Allocation(t *testing.T) {
	req := portfolio("10000", asset("AAPL", "150", "10"), asset("XOM", "100", "5"))
	req.Assets[0].Sector = "Tech"

	out, err := NewCalculationService(false).Allocation(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, out.Sectors, 2)
	require.Equal(t, "Tech", out.Sectors[0].Sector)
	require.True(t, out.Sectors[0].Percentage.Equal(dec("75")))
	require.Equal(t, 2, out.Metrics.AssetCount)
	require.True(t, out.Metrics.AvgPrice.Equal(dec("133.33")))
	require.True(t, out.CurrentWeights["AAPL"].Equal(dec("15")))
}

func Test_calculationServiceHandler_weights(t *testing.T) {
	handler := NewCalculationService(false)
	ctx := context.Background()

	t.Run("equal weights", func(t *testing.T) {
		out, err := handler.EqualWeights(ctx, []string{"a", "b", "c"})
		require.NoError(t, err)
		require.True(t, out["A"].Equal(dec("33.3333")))

		_, err = handler.EqualWeights(ctx, nil)
		require.ErrorIs(t, err, domain.ValidationError{Code: domain.ErrCodeNoAssets})

		_, err = handler.EqualWeights(ctx, []string{"a", "A"})
		require.ErrorIs(t, err, domain.ValidationError{Code: domain.ErrCodeInvalidAsset})
	})

	t.Run("normalize", func(t *testing.T) {
		out, err := handler.NormalizeWeights(ctx, domain.TargetWeights{"A": dec("1"), "B": dec("1"), "C": dec("2")})
		require.NoError(t, err)
		require.True(t, out["C"].Equal(dec("50")))

		_, err = handler.NormalizeWeights(ctx, domain.TargetWeights{"A": dec("0")})
		require.ErrorIs(t, err, domain.ValidationError{Code: domain.ErrCodeInvalidWeights})
	})
}

func Test_calculationServiceHandler_Evaluate(t *testing.T) {
	handler := NewCalculationService(false)

	v, err := handler.Evaluate(context.Background(), "150 * 1.2")
	require.NoError(t, err)
	require.True(t, v.Equal(dec("180")))

	_, err = handler.Evaluate(context.Background(), "1 / 0")
	require.ErrorIs(t, err, domain.ValidationError{Code: domain.ErrCodeInvalidExpression})

	require.Len(t, handler.Presets(), 4)
}
