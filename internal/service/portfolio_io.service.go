package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"portfoliocalc/internal/domain"
	"portfoliocalc/internal/expr"
	"portfoliocalc/internal/logger"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

var ErrInvalidDocument = errors.New("invalid portfolio document")

var requiredCsvHeaders = []string{"ticker", "buy_price", "shares"}

type csvAssetRow struct {
	Ticker   string `csv:"ticker"`
	BuyPrice string `csv:"buy_price"`
	Shares   string `csv:"shares"`
	Sector   string `csv:"sector"`
}

// PortfolioIOService converts portfolios to and from CSV and the
// versioned JSON document. It never runs calculations.
type PortfolioIOService interface {
	ImportCSV(ctx context.Context, data []byte) ([]domain.AssetInput, error)
	ExportCSV(assets []domain.AssetInput) (string, error)
	CSVTemplate() (string, error)

	ImportJSON(ctx context.Context, data []byte) (*domain.PortfolioDocument, error)
	ExportJSON(doc domain.PortfolioDocument) ([]byte, error)
	Validate(doc domain.PortfolioDocument) error
}

type portfolioIOServiceHandler struct {
	Now func() time.Time
}

func NewPortfolioIOService() PortfolioIOService {
	return portfolioIOServiceHandler{
		Now: time.Now,
	}
}

func normalizeCsvHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

// evalCell accepts a plain number or an arithmetic expression, with or
// without a leading "="
func evalCell(cell string) (decimal.Decimal, error) {
	cell = strings.TrimPrefix(strings.TrimSpace(cell), "=")
	return expr.Evaluate(cell)
}

func (h portfolioIOServiceHandler) ImportCSV(ctx context.Context, data []byte) ([]domain.AssetInput, error) {
	records, err := gocsv.CSVToMaps(bytes.NewReader(data))
	if err != nil {
		return nil, domain.ValidationError{
			Code:    domain.ErrCodeInvalidAsset,
			Field:   "csv",
			Message: fmt.Sprintf("could not be parsed: %s", err.Error()),
		}
	}
	if len(records) == 0 {
		return nil, domain.ValidationError{
			Code:    domain.ErrCodeNoAssets,
			Field:   "csv",
			Message: "contains no rows",
		}
	}

	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		row := map[string]string{}
		for k, v := range r {
			row[normalizeCsvHeader(k)] = strings.TrimSpace(v)
		}
		rows = append(rows, row)
	}
	for _, header := range requiredCsvHeaders {
		if _, ok := rows[0][header]; !ok {
			return nil, domain.ValidationError{
				Code:    domain.ErrCodeInvalidAsset,
				Field:   "csv",
				Message: fmt.Sprintf("is missing required column %q", header),
			}
		}
	}

	assets := []domain.AssetInput{}
	seen := map[string]int{}
	for i, row := range rows {
		// header is line 1
		line := i + 2
		if row["ticker"] == "" && row["buy_price"] == "" && row["shares"] == "" {
			continue
		}

		in := domain.AssetInput{
			Ticker: row["ticker"],
			Sector: row["sector"],
		}

		in.BuyPrice, err = evalCell(row["buy_price"])
		if err != nil {
			return nil, domain.ValidationError{
				Code:    domain.ErrCodeInvalidAsset,
				Field:   fmt.Sprintf("rows[%d].buy_price", line),
				Message: err.Error(),
			}
		}
		if row["shares"] != "" {
			in.Shares, err = evalCell(row["shares"])
			if err != nil {
				return nil, domain.ValidationError{
					Code:    domain.ErrCodeInvalidAsset,
					Field:   fmt.Sprintf("rows[%d].shares", line),
					Message: err.Error(),
				}
			}
		}

		asset, err := domain.NewAsset(in)
		if err != nil {
			ve := err.(domain.ValidationError)
			ve.Field = fmt.Sprintf("rows[%d].%s", line, ve.Field)
			return nil, ve
		}
		if j, ok := seen[asset.Ticker]; ok {
			return nil, domain.ValidationError{
				Code:    domain.ErrCodeInvalidAsset,
				Field:   fmt.Sprintf("rows[%d].ticker", line),
				Message: fmt.Sprintf("duplicates rows[%d] (%s)", j, asset.Ticker),
			}
		}
		seen[asset.Ticker] = line
		assets = append(assets, asset.Input())
	}

	if len(assets) == 0 {
		return nil, domain.ValidationError{
			Code:    domain.ErrCodeNoAssets,
			Field:   "csv",
			Message: "contains no rows",
		}
	}

	logger.FromContext(ctx).Infow("imported csv", "assets", len(assets))
	return assets, nil
}

func (h portfolioIOServiceHandler) ExportCSV(assets []domain.AssetInput) (string, error) {
	rows := make([]csvAssetRow, 0, len(assets))
	for _, a := range assets {
		sector := strings.TrimSpace(a.Sector)
		if sector == "" {
			sector = domain.DefaultSector
		}
		rows = append(rows, csvAssetRow{
			Ticker:   domain.NormalizeTicker(a.Ticker),
			BuyPrice: a.BuyPrice.String(),
			Shares:   a.Shares.String(),
			Sector:   sector,
		})
	}

	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return "", fmt.Errorf("failed to write csv: %w", err)
	}
	return out, nil
}

func (h portfolioIOServiceHandler) CSVTemplate() (string, error) {
	return h.ExportCSV([]domain.AssetInput{
		{Ticker: "AAPL", BuyPrice: decimal.NewFromInt(150), Shares: decimal.NewFromInt(10), Sector: "Technology"},
		{Ticker: "MSFT", BuyPrice: decimal.NewFromInt(300), Shares: decimal.NewFromInt(5), Sector: "Technology"},
		{Ticker: "JNJ", BuyPrice: decimal.NewFromInt(160), Shares: decimal.NewFromInt(8), Sector: "Healthcare"},
	})
}

func (h portfolioIOServiceHandler) ImportJSON(ctx context.Context, data []byte) (*domain.PortfolioDocument, error) {
	doc := domain.PortfolioDocument{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, err.Error())
	}

	doc = doc.WithDefaults()
	if err := h.Validate(doc); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Infow("imported portfolio document", "version", doc.Version, "assets", len(doc.Assets))
	return &doc, nil
}

func (h portfolioIOServiceHandler) ExportJSON(doc domain.PortfolioDocument) ([]byte, error) {
	doc = doc.WithDefaults()
	doc.Version = domain.DocumentVersion
	now := h.Now().UTC()
	doc.ExportedAt = &now

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode portfolio document: %w", err)
	}
	return out, nil
}

// Validate checks the document version and, when the document holds
// assets, that it forms a valid snapshot. Empty portfolios are allowed
// in documents.
func (h portfolioIOServiceHandler) Validate(doc domain.PortfolioDocument) error {
	if doc.Version != "" && !strings.HasPrefix(doc.Version, "1.") {
		return fmt.Errorf("%w: unsupported version %q", ErrInvalidDocument, doc.Version)
	}
	if len(doc.Assets) == 0 {
		return nil
	}
	_, err := domain.NewSnapshot(doc.SnapshotInput())
	return err
}
