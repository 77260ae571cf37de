package calculator

import (
	"portfoliocalc/internal/domain"

	"github.com/shopspring/decimal"
)

// NormalizeWeights rescales weights so they sum to 100. Weights that
// are all zero cannot be rescaled.
func NormalizeWeights(weights domain.TargetWeights) (domain.TargetWeights, error) {
	normalized, err := weights.Normalized()
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, ticker := range sortedKeys(normalized) {
		w := normalized[ticker]
		if w.IsNegative() {
			return nil, domain.ValidationError{
				Code:    domain.ErrCodeInvalidWeights,
				Field:   "target_weights." + ticker,
				Message: "cannot be negative",
			}
		}
		total = total.Add(w)
	}
	if total.IsZero() {
		return nil, domain.ValidationError{
			Code:    domain.ErrCodeInvalidWeights,
			Field:   "target_weights",
			Message: "cannot normalize weights that sum to 0",
		}
	}

	out := domain.TargetWeights{}
	for ticker, w := range normalized {
		out[ticker] = w.Div(total).Mul(hundred)
	}
	return out, nil
}

// EqualWeights assigns 100/n to each ticker
func EqualWeights(tickers []string) domain.TargetWeights {
	out := domain.TargetWeights{}
	if len(tickers) == 0 {
		return out
	}
	each := hundred.Div(decimal.NewFromInt(int64(len(tickers))))
	for _, ticker := range tickers {
		out[domain.NormalizeTicker(ticker)] = each
	}
	return out
}

// CurrentWeights is each asset's value as a percentage of capital
func CurrentWeights(snapshot domain.Snapshot) domain.TargetWeights {
	out := domain.TargetWeights{}
	for _, a := range snapshot.Assets {
		out[a.Ticker] = a.Value().Div(snapshot.Capital).Mul(hundred)
	}
	return out
}
