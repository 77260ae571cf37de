package api

import (
	"github.com/gin-gonic/gin"
)

type evaluateRequest struct {
	Expression string `json:"expression"`
}

type evaluateResponse struct {
	Expression string  `json:"expression"`
	Value      float64 `json:"value"`
	Exact      string  `json:"exact"`
}

func (m ApiHandler) evaluate(c *gin.Context) {
	var requestBody evaluateRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	value, err := m.CalculationService.Evaluate(c, requestBody.Expression)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, evaluateResponse{
		Expression: requestBody.Expression,
		Value:      value.InexactFloat64(),
		Exact:      value.String(),
	})
}
