package api

import (
	"portfoliocalc/internal/domain"
	"portfoliocalc/internal/service"

	"github.com/shopspring/decimal"
)

// Responses carry float64 numbers. The service has already rounded every
// figure, so the conversion is only for presentation.

type valuationResponse struct {
	Invested     float64 `json:"invested"`
	Cash         float64 `json:"cash"`
	TotalCapital float64 `json:"total_capital"`
	TotalFee     float64 `json:"total_fee"`
}

func newValuationResponse(v service.Valuation) valuationResponse {
	return valuationResponse{
		Invested:     v.Invested.InexactFloat64(),
		Cash:         v.Cash.InexactFloat64(),
		TotalCapital: v.TotalCapital.InexactFloat64(),
		TotalFee:     v.TotalFee.InexactFloat64(),
	}
}

func floatMap(m map[string]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v.InexactFloat64()
	}
	return out
}

func floatSlice(d []decimal.Decimal) []float64 {
	out := make([]float64, 0, len(d))
	for _, v := range d {
		out = append(out, v.InexactFloat64())
	}
	return out
}

func warningsOrEmpty(w []domain.Warning) []domain.Warning {
	if w == nil {
		return []domain.Warning{}
	}
	return w
}

type assetResponse struct {
	Ticker        string   `json:"ticker"`
	BuyPrice      float64  `json:"buy_price"`
	Shares        float64  `json:"shares"`
	Sector        string   `json:"sector"`
	TakeProfitPct *float64 `json:"take_profit_pct"`
	StopLossPct   *float64 `json:"stop_loss_pct"`
	FeeOverride   *float64 `json:"fee_override"`
}

func floatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func newAssetResponses(assets []domain.AssetInput) []assetResponse {
	out := make([]assetResponse, 0, len(assets))
	for _, a := range assets {
		out = append(out, assetResponse{
			Ticker:        a.Ticker,
			BuyPrice:      a.BuyPrice.InexactFloat64(),
			Shares:        a.Shares.InexactFloat64(),
			Sector:        a.Sector,
			TakeProfitPct: floatPtr(a.TakeProfitPct),
			StopLossPct:   floatPtr(a.StopLossPct),
			FeeOverride:   floatPtr(a.FeeOverride),
		})
	}
	return out
}
