package service

import (
	"context"
	"errors"
	"fmt"
	"portfoliocalc/internal/calculator"
	"portfoliocalc/internal/domain"
	"portfoliocalc/internal/expr"
	"portfoliocalc/internal/logger"
	"time"

	"github.com/shopspring/decimal"
)

// money is shown with this many places; weights and percentages with
// weightPlaces
const (
	moneyPlaces  = 2
	weightPlaces = 4
)

var minTargetTakeProfit = decimal.NewFromInt(-100)

// CalculationService validates caller input into snapshots and runs the
// calculator on them. It owns display rounding so that the rounded
// figures it returns still reconcile: pl = total - reference and
// pl_net = pl - total_fee hold exactly on the rounded values.
type CalculationService interface {
	Scenario(ctx context.Context, req ScenarioRequest) (*ScenarioResponse, error)
	Targets(ctx context.Context, req TargetsRequest) (*TargetsResponse, error)
	Blended(ctx context.Context, req BlendedRequest) (*BlendedResponse, error)
	Rebalance(ctx context.Context, req RebalanceRequest) (*RebalanceResponse, error)
	Allocation(ctx context.Context, req PortfolioRequest) (*AllocationResponse, error)

	NormalizeWeights(ctx context.Context, weights domain.TargetWeights) (domain.TargetWeights, error)
	EqualWeights(ctx context.Context, tickers []string) (domain.TargetWeights, error)
	Evaluate(ctx context.Context, expression string) (decimal.Decimal, error)
	Presets() []domain.ScenarioPreset
}

type calculationServiceHandler struct {
	// StrictCapital makes every request strict regardless of its own flag
	StrictCapital bool
}

func NewCalculationService(strictCapital bool) CalculationService {
	return calculationServiceHandler{
		StrictCapital: strictCapital,
	}
}

func (h calculationServiceHandler) snapshot(ctx context.Context, operation string, req PortfolioRequest) (*domain.Snapshot, []domain.Warning, error) {
	log := logger.FromContext(ctx)
	_, endSpan := domain.GetProfile(ctx).StartNewSpan("build snapshot")
	defer endSpan()

	snapshot, err := domain.NewSnapshot(domain.SnapshotInput{
		Capital: req.Capital,
		Assets:  req.Assets,
		Fees:    req.Fees,
	})
	if err != nil {
		log.Warnw("rejected snapshot", "operation", operation, "error", err.Error())
		return nil, nil, err
	}

	warnings := calculator.CapitalWarnings(*snapshot)
	if len(warnings) > 0 && (req.Strict || h.StrictCapital) {
		err := warnings[0].AsError()
		log.Warnw("rejected snapshot", "operation", operation, "error", err.Error())
		return nil, nil, err
	}
	if warnings == nil {
		warnings = []domain.Warning{}
	}

	return snapshot, warnings, nil
}

func logCalculation(ctx context.Context, operation string, snapshot *domain.Snapshot, start time.Time, keysAndValues ...interface{}) {
	args := append([]interface{}{
		"operation", operation,
		"assets", len(snapshot.Assets),
		"elapsedMicros", time.Since(start).Microseconds(),
	}, keysAndValues...)
	logger.FromContext(ctx).Infow("calculation complete", args...)
}

func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

func newValuation(snapshot domain.Snapshot) Valuation {
	basis := calculator.NewBasis(snapshot)
	return Valuation{
		Invested:     roundMoney(basis.Invested),
		Cash:         roundMoney(basis.Cash),
		TotalCapital: roundMoney(basis.Capital),
		TotalFee:     roundMoney(basis.TotalFee),
	}
}

// displayPL rounds total and derives the P/L figures from the rounded
// inputs
func displayPL(total, reference, fee decimal.Decimal) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	roundedTotal := roundMoney(total)
	pl := roundedTotal.Sub(roundMoney(reference))
	return roundedTotal, pl, pl.Sub(roundMoney(fee))
}

func roundPrices(prices map[string]decimal.Decimal, places int32) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(prices))
	for ticker, p := range prices {
		out[ticker] = p.Round(places)
	}
	return out
}

func (h calculationServiceHandler) Scenario(ctx context.Context, req ScenarioRequest) (*ScenarioResponse, error) {
	start := time.Now()
	snapshot, warnings, err := h.snapshot(ctx, "scenario", req.PortfolioRequest)
	if err != nil {
		return nil, err
	}

	scenarios := req.Scenarios
	if scenarios == nil {
		scenarios = domain.DefaultScenarios()
	}

	_, endSpan := domain.GetProfile(ctx).StartNewSpan("calculate scenarios")
	results := calculator.Scenarios(*snapshot, scenarios)
	endSpan()

	fee := calculator.TotalFee(snapshot.Assets, snapshot.Fees)
	display := make([]domain.ScenarioResult, 0, len(results))
	for _, r := range results {
		total, pl, plNet := displayPL(r.TotalValue, snapshot.Capital, fee)
		display = append(display, domain.ScenarioResult{
			ScenarioPct: r.ScenarioPct,
			TotalValue:  total,
			PL:          pl,
			PLNet:       plNet,
		})
	}

	var summary *calculator.ScenarioSummary
	if len(display) > 0 {
		summary, err = calculator.SummarizeScenarios(display)
		if err != nil {
			return nil, fmt.Errorf("failed to summarize scenarios: %w", err)
		}
	}

	logCalculation(ctx, "scenario", snapshot, start, "scenarios", len(scenarios))

	return &ScenarioResponse{
		Valuation: newValuation(*snapshot),
		Results:   display,
		Summary:   summary,
		Warnings:  warnings,
	}, nil
}

// targetInputs turns take_profit_pct derived from target prices back
// into prices. Both plan fields are cleared since target mode ignores
// them and a derived take-profit may be negative.
func targetInputs(assets []domain.AssetInput) ([]domain.AssetInput, map[string]decimal.Decimal, error) {
	out := make([]domain.AssetInput, len(assets))
	prices := map[string]decimal.Decimal{}
	for i, a := range assets {
		out[i] = a
		if a.TakeProfitPct == nil {
			continue
		}
		if a.TakeProfitPct.LessThan(minTargetTakeProfit) {
			return nil, nil, domain.ValidationError{
				Code:    domain.ErrCodeInvalidAsset,
				Field:   fmt.Sprintf("assets[%d].take_profit_pct", i),
				Message: fmt.Sprintf("must be >= -100 for a target price, got %s", *a.TakeProfitPct),
			}
		}
		prices[domain.NormalizeTicker(a.Ticker)] = calculator.TargetPriceFromTakeProfit(a.BuyPrice, *a.TakeProfitPct)
		out[i].TakeProfitPct = nil
		out[i].StopLossPct = nil
	}
	return out, prices, nil
}

func (h calculationServiceHandler) Targets(ctx context.Context, req TargetsRequest) (*TargetsResponse, error) {
	start := time.Now()

	portfolio := req.PortfolioRequest
	prices := req.TargetPrices
	if len(prices) == 0 {
		assets, derived, err := targetInputs(req.Assets)
		if err != nil {
			return nil, err
		}
		portfolio.Assets = assets
		prices = derived
	}

	snapshot, warnings, err := h.snapshot(ctx, "targets", portfolio)
	if err != nil {
		return nil, err
	}

	_, endSpan := domain.GetProfile(ctx).StartNewSpan("calculate targets")
	exit, err := calculator.Targets(*snapshot, prices)
	endSpan()
	if err != nil {
		logger.FromContext(ctx).Warnw("rejected target prices", "error", err.Error())
		return nil, err
	}

	used := map[string]decimal.Decimal{}
	takeProfit := map[string]decimal.Decimal{}
	for ticker, price := range prices {
		asset, _ := snapshot.Asset(ticker)
		used[asset.Ticker] = price
		takeProfit[asset.Ticker] = calculator.DeriveTakeProfit(asset, price)
	}

	total, pl, plNet := displayPL(exit.Total, calculator.Invested(snapshot.Assets), calculator.TotalFee(snapshot.Assets, snapshot.Fees))
	logCalculation(ctx, "targets", snapshot, start, "targets", len(used))

	return &TargetsResponse{
		Valuation:     newValuation(*snapshot),
		TargetsTotal:  total,
		TargetsPL:     pl,
		TargetsPLNet:  plNet,
		TargetPrices:  roundPrices(used, moneyPlaces),
		TakeProfitPct: roundPrices(takeProfit, moneyPlaces),
		Warnings:      warnings,
	}, nil
}

func (h calculationServiceHandler) Blended(ctx context.Context, req BlendedRequest) (*BlendedResponse, error) {
	start := time.Now()
	snapshot, warnings, err := h.snapshot(ctx, "blended", req.PortfolioRequest)
	if err != nil {
		return nil, err
	}

	_, endSpan := domain.GetProfile(ctx).StartNewSpan("calculate blended")
	exit := calculator.Blended(*snapshot)
	endSpan()

	exitPrices := map[string]decimal.Decimal{}
	for _, a := range snapshot.Assets {
		exitPrices[a.Ticker] = calculator.BlendedExitPrice(a)
	}

	total, pl, plNet := displayPL(exit.Total, calculator.Invested(snapshot.Assets), calculator.TotalFee(snapshot.Assets, snapshot.Fees))
	logCalculation(ctx, "blended", snapshot, start)

	return &BlendedResponse{
		Valuation:    newValuation(*snapshot),
		BlendedTotal: total,
		BlendedPL:    pl,
		BlendedPLNet: plNet,
		ExitPrices:   roundPrices(exitPrices, moneyPlaces),
		Warnings:     warnings,
	}, nil
}

func (h calculationServiceHandler) Rebalance(ctx context.Context, req RebalanceRequest) (*RebalanceResponse, error) {
	start := time.Now()
	snapshot, warnings, err := h.snapshot(ctx, "rebalance", req.PortfolioRequest)
	if err != nil {
		return nil, err
	}

	_, endSpan := domain.GetProfile(ctx).StartNewSpan("solve rebalance")
	orders, err := calculator.Rebalance(*snapshot, req.TargetWeights)
	endSpan()
	if err != nil {
		logger.FromContext(ctx).Warnw("rejected target weights", "error", err.Error())
		return nil, err
	}

	// order costs are already whole cents, so the summary reconciles
	// with the orders as shown
	summary := calculator.SummarizeOrders(*snapshot, orders)
	valuation := newValuation(*snapshot)

	logCalculation(ctx, "rebalance", snapshot, start, "orders", len(orders))

	return &RebalanceResponse{
		Valuation: valuation,
		Orders:    orders,
		Summary: calculator.RebalanceSummary{
			TotalBuys:     summary.TotalBuys,
			TotalSells:    summary.TotalSells,
			NetCashFlow:   summary.NetCashFlow,
			RemainingCash: valuation.Cash.Add(summary.NetCashFlow),
		},
		Warnings: warnings,
	}, nil
}

func (h calculationServiceHandler) Allocation(ctx context.Context, req PortfolioRequest) (*AllocationResponse, error) {
	start := time.Now()
	snapshot, warnings, err := h.snapshot(ctx, "allocation", req)
	if err != nil {
		return nil, err
	}

	sectors := calculator.SectorAllocations(snapshot.Assets)
	for i := range sectors {
		sectors[i].Value = roundMoney(sectors[i].Value)
		sectors[i].Percentage = sectors[i].Percentage.Round(moneyPlaces)
	}

	metrics := calculator.CalculatePortfolioMetrics(snapshot.Assets)
	metrics.TotalValue = roundMoney(metrics.TotalValue)
	metrics.AvgPrice = roundMoney(metrics.AvgPrice)

	logCalculation(ctx, "allocation", snapshot, start)

	return &AllocationResponse{
		Valuation:      newValuation(*snapshot),
		Sectors:        sectors,
		Metrics:        metrics,
		CurrentWeights: domain.TargetWeights(roundPrices(calculator.CurrentWeights(*snapshot), moneyPlaces)),
		Warnings:       warnings,
	}, nil
}

func (h calculationServiceHandler) NormalizeWeights(ctx context.Context, weights domain.TargetWeights) (domain.TargetWeights, error) {
	out, err := calculator.NormalizeWeights(weights)
	if err != nil {
		logger.FromContext(ctx).Warnw("rejected weights", "error", err.Error())
		return nil, err
	}
	return domain.TargetWeights(roundPrices(out, weightPlaces)), nil
}

func (h calculationServiceHandler) EqualWeights(ctx context.Context, tickers []string) (domain.TargetWeights, error) {
	if len(tickers) == 0 {
		return nil, domain.ValidationError{
			Code:    domain.ErrCodeNoAssets,
			Field:   "tickers",
			Message: "at least one ticker is required",
		}
	}

	seen := map[string]bool{}
	for i, t := range tickers {
		field := fmt.Sprintf("tickers[%d]", i)
		normalized := domain.NormalizeTicker(t)
		if normalized == "" {
			return nil, domain.ValidationError{Code: domain.ErrCodeInvalidAsset, Field: field, Message: "is required"}
		}
		if seen[normalized] {
			return nil, domain.ValidationError{Code: domain.ErrCodeInvalidAsset, Field: field, Message: fmt.Sprintf("duplicates %s", normalized)}
		}
		seen[normalized] = true
	}

	return domain.TargetWeights(roundPrices(calculator.EqualWeights(tickers), weightPlaces)), nil
}

func (h calculationServiceHandler) Evaluate(ctx context.Context, expression string) (decimal.Decimal, error) {
	value, err := expr.Evaluate(expression)
	if err != nil {
		var exprErr expr.Error
		if errors.As(err, &exprErr) {
			return decimal.Zero, domain.ValidationError{
				Code:    domain.ErrCodeInvalidExpression,
				Field:   "expression",
				Message: exprErr.Error(),
			}
		}
		return decimal.Zero, err
	}
	return value, nil
}

func (h calculationServiceHandler) Presets() []domain.ScenarioPreset {
	return domain.ScenarioPresets()
}
