package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type ScenarioResult struct {
	ScenarioPct decimal.Decimal `json:"scenario_pct"`
	TotalValue  decimal.Decimal `json:"total_value"`
	PL          decimal.Decimal `json:"pl"`
	PLNet       decimal.Decimal `json:"pl_net"`
}

// ExitValuation is the outcome of exiting every position at a chosen
// price, shared by the target and blended analyzers.
type ExitValuation struct {
	Total decimal.Decimal `json:"total"`
	PL    decimal.Decimal `json:"pl"`
	PLNet decimal.Decimal `json:"pl_net"`
}

type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Order is a whole-share instruction produced by the rebalance solver.
// Cost is fee-inclusive: cash paid for a buy, cash received for a sell.
type Order struct {
	Ticker    string          `json:"ticker"`
	Side      OrderSide       `json:"side"`
	Qty       int64           `json:"qty"`
	Cost      decimal.Decimal `json:"cost"`
	NewShares decimal.Decimal `json:"new_shares"`
}

// TargetWeights maps ticker to target percentage of total value
type TargetWeights map[string]decimal.Decimal

// Normalized returns a copy keyed by normalized tickers. Two keys that
// normalize to the same ticker are rejected.
func (w TargetWeights) Normalized() (TargetWeights, error) {
	out := TargetWeights{}
	for ticker, weight := range w {
		normalized := NormalizeTicker(ticker)
		if _, ok := out[normalized]; ok {
			return nil, newValidationError(
				ErrCodeInvalidWeights,
				fmt.Sprintf("target_weights.%s", normalized),
				"is given more than once",
			)
		}
		out[normalized] = weight
	}
	return out, nil
}
