package main

import (
	"context"
	"fmt"
	"os"
	"portfoliocalc/internal/domain"
	"portfoliocalc/internal/expr"
	"portfoliocalc/internal/service"
	"strings"

	"github.com/shopspring/decimal"
)

// parseScenarios reads a comma separated list. Each item is an
// arithmetic expression so "-10,0,10" and "-5*2,0,5+5" are the same.
func parseScenarios(s string) ([]decimal.Decimal, error) {
	out := []decimal.Decimal{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for i, item := range strings.Split(s, ",") {
		v, err := expr.Evaluate(item)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario %d %q: %w", i, strings.TrimSpace(item), err)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseAssignments reads repeated TICKER=value flags
func parseAssignments(values []string) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	for _, v := range values {
		ticker, value, ok := strings.Cut(v, "=")
		ticker = domain.NormalizeTicker(ticker)
		if !ok || ticker == "" {
			return nil, fmt.Errorf("expected TICKER=value, got %q", v)
		}
		d, err := expr.Evaluate(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", ticker, err)
		}
		if _, exists := out[ticker]; exists {
			return nil, fmt.Errorf("%s given more than once", ticker)
		}
		out[ticker] = d
	}
	return out, nil
}

// resolveScenarios picks, in order, the explicit list, a named preset
// and finally the document's own scenarios
func resolveScenarios(list, preset string, doc domain.PortfolioDocument) ([]decimal.Decimal, error) {
	if list != "" {
		return parseScenarios(list)
	}
	if preset != "" {
		p, ok := domain.PresetByName(preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
		return p.Scenarios, nil
	}
	return doc.Scenarios, nil
}

func loadDocument(ctx context.Context, ioService service.PortfolioIOService, path string) (*domain.PortfolioDocument, error) {
	if path == "" {
		return nil, fmt.Errorf("--file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ioService.ImportJSON(ctx, data)
}

func portfolioRequest(doc domain.PortfolioDocument, capital string, strict bool) (service.PortfolioRequest, error) {
	req := service.PortfolioRequest{
		Capital: doc.Capital,
		Assets:  doc.Assets,
		Fees:    doc.Fees,
		Strict:  strict,
	}
	if capital != "" {
		c, err := expr.Evaluate(capital)
		if err != nil {
			return req, fmt.Errorf("invalid capital: %w", err)
		}
		req.Capital = c
	}
	return req, nil
}
