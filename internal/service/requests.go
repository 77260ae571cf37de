package service

import (
	"portfoliocalc/internal/calculator"
	"portfoliocalc/internal/domain"

	"github.com/shopspring/decimal"
)

// PortfolioRequest is the snapshot every calculation starts from.
// Strict turns the invested <= capital warning into an error.
type PortfolioRequest struct {
	Capital decimal.Decimal     `json:"capital"`
	Assets  []domain.AssetInput `json:"assets"`
	Fees    domain.FeeConfig    `json:"fees"`
	Strict  bool                `json:"strict"`
}

// ScenarioRequest runs DefaultScenarios when Scenarios is omitted. An
// explicit empty list yields no results.
type ScenarioRequest struct {
	PortfolioRequest
	Scenarios []decimal.Decimal `json:"scenarios"`
}

// TargetsRequest either carries target_prices keyed by ticker or relies
// on take_profit_pct already derived onto each asset. Derived values may
// be negative down to -100 since a target can sit below buy price.
type TargetsRequest struct {
	PortfolioRequest
	TargetPrices map[string]decimal.Decimal `json:"target_prices"`
}

type BlendedRequest struct {
	PortfolioRequest
}

type RebalanceRequest struct {
	PortfolioRequest
	TargetWeights domain.TargetWeights `json:"target_weights"`
}

// Valuation is the display basis attached to every response
type Valuation struct {
	Invested     decimal.Decimal `json:"invested"`
	Cash         decimal.Decimal `json:"cash"`
	TotalCapital decimal.Decimal `json:"total_capital"`
	TotalFee     decimal.Decimal `json:"total_fee"`
}

type ScenarioResponse struct {
	Valuation
	Results  []domain.ScenarioResult     `json:"results"`
	Summary  *calculator.ScenarioSummary `json:"summary"`
	Warnings []domain.Warning            `json:"warnings"`
}

type TargetsResponse struct {
	Valuation
	TargetsTotal  decimal.Decimal            `json:"targets_total"`
	TargetsPL     decimal.Decimal            `json:"targets_pl"`
	TargetsPLNet  decimal.Decimal            `json:"targets_pl_net"`
	TargetPrices  map[string]decimal.Decimal `json:"target_prices"`
	TakeProfitPct map[string]decimal.Decimal `json:"take_profit_pct"`
	Warnings      []domain.Warning           `json:"warnings"`
}

type BlendedResponse struct {
	Valuation
	BlendedTotal decimal.Decimal            `json:"blended_total"`
	BlendedPL    decimal.Decimal            `json:"blended_pl"`
	BlendedPLNet decimal.Decimal            `json:"blended_pl_net"`
	ExitPrices   map[string]decimal.Decimal `json:"exit_prices"`
	Warnings     []domain.Warning           `json:"warnings"`
}

type RebalanceResponse struct {
	Valuation
	Orders   []domain.Order              `json:"orders"`
	Summary  calculator.RebalanceSummary `json:"summary"`
	Warnings []domain.Warning            `json:"warnings"`
}

type AllocationResponse struct {
	Valuation
	Sectors        []calculator.SectorAllocation `json:"sectors"`
	Metrics        calculator.PortfolioMetrics   `json:"metrics"`
	CurrentWeights domain.TargetWeights          `json:"current_weights"`
	Warnings       []domain.Warning              `json:"warnings"`
}
