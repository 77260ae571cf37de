package api

import (
	"portfoliocalc/internal/domain"

	"github.com/gin-gonic/gin"
)

type normalizeWeightsRequest struct {
	TargetWeights domain.TargetWeights `json:"target_weights"`
}

type equalWeightsRequest struct {
	Tickers []string `json:"tickers"`
}

type weightsResponse struct {
	TargetWeights map[string]float64 `json:"target_weights"`
}

func (m ApiHandler) normalizeWeights(c *gin.Context) {
	var requestBody normalizeWeightsRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	weights, err := m.CalculationService.NormalizeWeights(c, requestBody.TargetWeights)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, weightsResponse{TargetWeights: floatMap(weights)})
}

func (m ApiHandler) equalWeights(c *gin.Context) {
	var requestBody equalWeightsRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	weights, err := m.CalculationService.EqualWeights(c, requestBody.Tickers)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, weightsResponse{TargetWeights: floatMap(weights)})
}
