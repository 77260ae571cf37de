package api

import (
	"portfoliocalc/internal/domain"
	"portfoliocalc/internal/service"

	"github.com/gin-gonic/gin"
)

type orderResponse struct {
	Ticker    string           `json:"ticker"`
	Side      domain.OrderSide `json:"side"`
	Qty       int64            `json:"qty"`
	Cost      float64          `json:"cost"`
	NewShares float64          `json:"new_shares"`
}

type rebalanceSummaryResponse struct {
	TotalBuys     float64 `json:"total_buys"`
	TotalSells    float64 `json:"total_sells"`
	NetCashFlow   float64 `json:"net_cash_flow"`
	RemainingCash float64 `json:"remaining_cash"`
}

type rebalanceResponse struct {
	valuationResponse
	Orders   []orderResponse          `json:"orders"`
	Summary  rebalanceSummaryResponse `json:"summary"`
	Warnings []domain.Warning         `json:"warnings"`
}

func (m ApiHandler) rebalance(c *gin.Context) {
	var requestBody service.RebalanceRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	result, err := m.CalculationService.Rebalance(c, requestBody)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	orders := []orderResponse{}
	for _, o := range result.Orders {
		orders = append(orders, orderResponse{
			Ticker:    o.Ticker,
			Side:      o.Side,
			Qty:       o.Qty,
			Cost:      o.Cost.InexactFloat64(),
			NewShares: o.NewShares.InexactFloat64(),
		})
	}

	c.JSON(200, rebalanceResponse{
		valuationResponse: newValuationResponse(result.Valuation),
		Orders:            orders,
		Summary: rebalanceSummaryResponse{
			TotalBuys:     result.Summary.TotalBuys.InexactFloat64(),
			TotalSells:    result.Summary.TotalSells.InexactFloat64(),
			NetCashFlow:   result.Summary.NetCashFlow.InexactFloat64(),
			RemainingCash: result.Summary.RemainingCash.InexactFloat64(),
		},
		Warnings: warningsOrEmpty(result.Warnings),
	})
}
