package api

import (
	"portfoliocalc/internal/domain"
	"portfoliocalc/internal/service"

	"github.com/gin-gonic/gin"
)

type sectorAllocationResponse struct {
	Sector     string  `json:"sector"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

type portfolioMetricsResponse struct {
	TotalValue  float64 `json:"total_value"`
	TotalShares float64 `json:"total_shares"`
	AvgPrice    float64 `json:"avg_price"`
	AssetCount  int     `json:"asset_count"`
}

type allocationResponse struct {
	valuationResponse
	Sectors        []sectorAllocationResponse `json:"sectors"`
	Metrics        portfolioMetricsResponse   `json:"metrics"`
	CurrentWeights map[string]float64         `json:"current_weights"`
	Warnings       []domain.Warning           `json:"warnings"`
}

func (m ApiHandler) allocation(c *gin.Context) {
	var requestBody service.PortfolioRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	result, err := m.CalculationService.Allocation(c, requestBody)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	sectors := []sectorAllocationResponse{}
	for _, s := range result.Sectors {
		sectors = append(sectors, sectorAllocationResponse{
			Sector:     s.Sector,
			Value:      s.Value.InexactFloat64(),
			Percentage: s.Percentage.InexactFloat64(),
		})
	}

	c.JSON(200, allocationResponse{
		valuationResponse: newValuationResponse(result.Valuation),
		Sectors:           sectors,
		Metrics: portfolioMetricsResponse{
			TotalValue:  result.Metrics.TotalValue.InexactFloat64(),
			TotalShares: result.Metrics.TotalShares.InexactFloat64(),
			AvgPrice:    result.Metrics.AvgPrice.InexactFloat64(),
			AssetCount:  result.Metrics.AssetCount,
		},
		CurrentWeights: floatMap(result.CurrentWeights),
		Warnings:       warningsOrEmpty(result.Warnings),
	})
}
