package api

import (
	"portfoliocalc/internal/domain"
	"portfoliocalc/internal/service"

	"github.com/gin-gonic/gin"
)

type blendedResponse struct {
	valuationResponse
	BlendedTotal float64            `json:"blended_total"`
	BlendedPL    float64            `json:"blended_pl"`
	BlendedPLNet float64            `json:"blended_pl_net"`
	ExitPrices   map[string]float64 `json:"exit_prices"`
	Warnings     []domain.Warning   `json:"warnings"`
}

func (m ApiHandler) blended(c *gin.Context) {
	var requestBody service.BlendedRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	result, err := m.CalculationService.Blended(c, requestBody)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, blendedResponse{
		valuationResponse: newValuationResponse(result.Valuation),
		BlendedTotal:      result.BlendedTotal.InexactFloat64(),
		BlendedPL:         result.BlendedPL.InexactFloat64(),
		BlendedPLNet:      result.BlendedPLNet.InexactFloat64(),
		ExitPrices:        floatMap(result.ExitPrices),
		Warnings:          warningsOrEmpty(result.Warnings),
	})
}
