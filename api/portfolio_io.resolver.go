package api

import (
	"fmt"
	"portfoliocalc/internal/domain"

	"github.com/gin-gonic/gin"
)

type exportCsvRequest struct {
	Assets []domain.AssetInput `json:"assets"`
}

type importCsvResponse struct {
	Assets []assetResponse `json:"assets"`
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func (m ApiHandler) importCsv(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to read body: %w", err), c, 400)
		return
	}

	assets, err := m.PortfolioIOService.ImportCSV(c, body)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, importCsvResponse{Assets: newAssetResponses(assets)})
}

func (m ApiHandler) exportCsv(c *gin.Context) {
	var requestBody exportCsvRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	out, err := m.PortfolioIOService.ExportCSV(requestBody.Assets)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	attachment(c, "portfolio.csv")
	c.Data(200, "text/csv; charset=utf-8", []byte(out))
}

func (m ApiHandler) exportCsvTemplate(c *gin.Context) {
	out, err := m.PortfolioIOService.CSVTemplate()
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	attachment(c, "portfolio_template.csv")
	c.Data(200, "text/csv; charset=utf-8", []byte(out))
}

// importJson echoes the document back with defaults filled in. Documents
// keep exact decimal strings rather than floats.
func (m ApiHandler) importJson(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to read body: %w", err), c, 400)
		return
	}

	doc, err := m.PortfolioIOService.ImportJSON(c, body)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, doc)
}

func (m ApiHandler) exportJson(c *gin.Context) {
	var requestBody domain.PortfolioDocument
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	out, err := m.PortfolioIOService.ExportJSON(requestBody)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	attachment(c, "portfolio.json")
	c.Data(200, "application/json; charset=utf-8", out)
}
