package api

import (
	"portfoliocalc/internal/domain"
	"portfoliocalc/internal/service"

	"github.com/gin-gonic/gin"
)

type targetsResponse struct {
	valuationResponse
	TargetsTotal  float64            `json:"targets_total"`
	TargetsPL     float64            `json:"targets_pl"`
	TargetsPLNet  float64            `json:"targets_pl_net"`
	TargetPrices  map[string]float64 `json:"target_prices"`
	TakeProfitPct map[string]float64 `json:"take_profit_pct"`
	Warnings      []domain.Warning   `json:"warnings"`
}

func (m ApiHandler) targets(c *gin.Context) {
	var requestBody service.TargetsRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	result, err := m.CalculationService.Targets(c, requestBody)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, targetsResponse{
		valuationResponse: newValuationResponse(result.Valuation),
		TargetsTotal:      result.TargetsTotal.InexactFloat64(),
		TargetsPL:         result.TargetsPL.InexactFloat64(),
		TargetsPLNet:      result.TargetsPLNet.InexactFloat64(),
		TargetPrices:      floatMap(result.TargetPrices),
		TakeProfitPct:     floatMap(result.TakeProfitPct),
		Warnings:          warningsOrEmpty(result.Warnings),
	})
}
