package api

import (
	"portfoliocalc/internal/domain"

	"github.com/gin-gonic/gin"
)

type presetResponse struct {
	Name      string    `json:"name"`
	Scenarios []float64 `json:"scenarios"`
}

type presetsResponse struct {
	Presets  []presetResponse `json:"presets"`
	Defaults []float64        `json:"defaults"`
}

func (m ApiHandler) presets(c *gin.Context) {
	out := presetsResponse{
		Presets:  []presetResponse{},
		Defaults: floatSlice(domain.DefaultScenarios()),
	}
	for _, p := range m.CalculationService.Presets() {
		out.Presets = append(out.Presets, presetResponse{
			Name:      p.Name,
			Scenarios: floatSlice(p.Scenarios),
		})
	}

	c.JSON(200, out)
}
