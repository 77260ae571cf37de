package api

import (
	"portfoliocalc/internal/domain"
	"portfoliocalc/internal/service"

	"github.com/gin-gonic/gin"
)

type scenarioResultResponse struct {
	ScenarioPct float64 `json:"scenario_pct"`
	TotalValue  float64 `json:"total_value"`
	PL          float64 `json:"pl"`
	PLNet       float64 `json:"pl_net"`
}

type scenarioSummaryResponse struct {
	BestPLNet   float64 `json:"best_pl_net"`
	WorstPLNet  float64 `json:"worst_pl_net"`
	MeanPLNet   float64 `json:"mean_pl_net"`
	MedianPLNet float64 `json:"median_pl_net"`
}

type scenarioResponse struct {
	valuationResponse
	Results  []scenarioResultResponse `json:"results"`
	Summary  *scenarioSummaryResponse `json:"summary"`
	Warnings []domain.Warning         `json:"warnings"`
}

func (m ApiHandler) scenario(c *gin.Context) {
	var requestBody service.ScenarioRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	result, err := m.CalculationService.Scenario(c, requestBody)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	out := scenarioResponse{
		valuationResponse: newValuationResponse(result.Valuation),
		Results:           []scenarioResultResponse{},
		Warnings:          warningsOrEmpty(result.Warnings),
	}
	for _, r := range result.Results {
		out.Results = append(out.Results, scenarioResultResponse{
			ScenarioPct: r.ScenarioPct.InexactFloat64(),
			TotalValue:  r.TotalValue.InexactFloat64(),
			PL:          r.PL.InexactFloat64(),
			PLNet:       r.PLNet.InexactFloat64(),
		})
	}
	if result.Summary != nil {
		out.Summary = &scenarioSummaryResponse{
			BestPLNet:   result.Summary.BestPLNet.InexactFloat64(),
			WorstPLNet:  result.Summary.WorstPLNet.InexactFloat64(),
			MeanPLNet:   result.Summary.MeanPLNet,
			MedianPLNet: result.Summary.MedianPLNet,
		}
	}

	c.JSON(200, out)
}
