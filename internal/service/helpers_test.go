package service

import (
	"context"
	"portfoliocalc/internal/domain"
	"portfoliocalc/internal/logger"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

// observedContext returns a context carrying a logger whose entries
// are captured
func observedContext(t *testing.T) (context.Context, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	ctx := logger.NewContext(context.Background(), zap.New(core).Sugar())
	profile, _ := domain.NewProfile()
	return domain.NewCtxWithProfile(ctx, profile), logs
}

func portfolio(capital string, assets ...domain.AssetInput) PortfolioRequest {
	return PortfolioRequest{
		Capital: dec(capital),
		Assets:  assets,
		Fees:    domain.FeeConfig{Percentage: decimal.Zero, Flat: decimal.Zero},
	}
}

func asset(ticker, buyPrice, shares string) domain.AssetInput {
	return domain.AssetInput{
		Ticker:   ticker,
		BuyPrice: dec(buyPrice),
		Shares:   dec(shares),
	}
}
