package calculator

import (
	"fmt"
	"portfoliocalc/internal/domain"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

type SectorAllocation struct {
	Sector     string          `json:"sector"`
	Value      decimal.Decimal `json:"value"`
	Percentage decimal.Decimal `json:"percentage"`
}

// SectorAllocations groups invested value by sector, largest first.
// Percentages are of the invested total and are zero when nothing is
// invested.
func SectorAllocations(assets []domain.Asset) []SectorAllocation {
	totals := map[string]decimal.Decimal{}
	for _, a := range assets {
		sector := a.Sector
		if sector == "" {
			sector = domain.DefaultSector
		}
		totals[sector] = totals[sector].Add(a.Value())
	}

	invested := Invested(assets)
	out := make([]SectorAllocation, 0, len(totals))
	for sector, value := range totals {
		pct := decimal.Zero
		if invested.IsPositive() {
			pct = value.Div(invested).Mul(hundred)
		}
		out = append(out, SectorAllocation{
			Sector:     sector,
			Value:      value,
			Percentage: pct,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}
		return out[i].Sector < out[j].Sector
	})

	return out
}

type PortfolioMetrics struct {
	TotalValue  decimal.Decimal `json:"total_value"`
	TotalShares decimal.Decimal `json:"total_shares"`
	AvgPrice    decimal.Decimal `json:"avg_price"`
	AssetCount  int             `json:"asset_count"`
}

func CalculatePortfolioMetrics(assets []domain.Asset) PortfolioMetrics {
	totalValue := Invested(assets)
	totalShares := decimal.Zero
	for _, a := range assets {
		totalShares = totalShares.Add(a.Shares)
	}

	avgPrice := decimal.Zero
	if totalShares.IsPositive() {
		avgPrice = totalValue.Div(totalShares)
	}

	return PortfolioMetrics{
		TotalValue:  totalValue,
		TotalShares: totalShares,
		AvgPrice:    avgPrice,
		AssetCount:  len(assets),
	}
}

// ScenarioSummary describes the spread of net P/L across a scenario
// set. Mean and median are display figures and go through float64.
type ScenarioSummary struct {
	BestPLNet   decimal.Decimal `json:"best_pl_net"`
	WorstPLNet  decimal.Decimal `json:"worst_pl_net"`
	MeanPLNet   float64         `json:"mean_pl_net"`
	MedianPLNet float64         `json:"median_pl_net"`
}

func SummarizeScenarios(results []domain.ScenarioResult) (*ScenarioSummary, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("cannot summarize 0 scenario results")
	}

	best := results[0].PLNet
	worst := results[0].PLNet
	dataset := make(stats.Float64Data, 0, len(results))
	for _, r := range results {
		if r.PLNet.GreaterThan(best) {
			best = r.PLNet
		}
		if r.PLNet.LessThan(worst) {
			worst = r.PLNet
		}
		dataset = append(dataset, r.PLNet.InexactFloat64())
	}

	mean, err := stats.Mean(dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate mean: %w", err)
	}
	median, err := stats.Median(dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate median: %w", err)
	}

	return &ScenarioSummary{
		BestPLNet:   best,
		WorstPLNet:  worst,
		MeanPLNet:   mean,
		MedianPLNet: median,
	}, nil
}
