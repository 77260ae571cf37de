package calculator

import (
	"fmt"
	"portfoliocalc/internal/domain"
	"sort"

	"github.com/shopspring/decimal"
)

// target weights may miss 100 by this much
var weightTolerance = decimal.NewFromFloat(0.01)

// ValidateWeights checks that weights cover every held ticker, that each
// weight is a percentage, and that weights of held tickers sum to 100
// within tolerance. Weights for tickers outside the snapshot are
// ignored. The returned map is keyed by normalized ticker.
func ValidateWeights(snapshot domain.Snapshot, weights domain.TargetWeights) (domain.TargetWeights, error) {
	normalized, err := weights.Normalized()
	if err != nil {
		return nil, err
	}

	sum := decimal.Zero
	for _, a := range snapshot.Assets {
		field := fmt.Sprintf("target_weights.%s", a.Ticker)
		w, ok := normalized[a.Ticker]
		if !ok {
			return nil, domain.ValidationError{
				Code:    domain.ErrCodeInvalidWeights,
				Field:   field,
				Message: "is missing",
			}
		}
		if w.IsNegative() || w.GreaterThan(hundred) {
			return nil, domain.ValidationError{
				Code:    domain.ErrCodeInvalidWeights,
				Field:   field,
				Message: fmt.Sprintf("must be between 0 and 100, got %s", w),
			}
		}
		sum = sum.Add(w)
	}

	if sum.Sub(hundred).Abs().GreaterThan(weightTolerance) {
		return nil, domain.ValidationError{
			Code:    domain.ErrCodeInvalidWeights,
			Field:   "target_weights",
			Message: fmt.Sprintf("must sum to 100, got %s", sum),
		}
	}

	return normalized, nil
}

type rebalanceCandidate struct {
	asset domain.Asset
	diff  decimal.Decimal
}

// Rebalance proposes whole-share orders that move holdings toward the
// target weights. Sells are sized first and their fee-adjusted proceeds
// join the cash balance; buys are then funded largest underweight
// first (ticker ascending on ties) until cash runs out. The solver
// never proposes spending more than cash plus sell proceeds, and never
// sells more than is held.
//
// Order costs are whole cents: buy costs round up and sell proceeds
// round down, and cash is checked against the rounded figures.
//
// Orders are returned sells first, then buys, each in processing order.
func Rebalance(snapshot domain.Snapshot, weights domain.TargetWeights) ([]domain.Order, error) {
	normalized, err := ValidateWeights(snapshot, weights)
	if err != nil {
		return nil, err
	}

	invested := Invested(snapshot.Assets)
	cash := Cash(snapshot.Capital, invested)
	totalValue := invested.Add(cash)

	sells := []rebalanceCandidate{}
	buys := []rebalanceCandidate{}
	for _, a := range snapshot.Assets {
		targetValue := totalValue.Mul(normalized[a.Ticker]).Div(hundred)
		diff := targetValue.Sub(a.Value())

		// less than one share away from target - nothing to trade
		if diff.Abs().LessThan(a.BuyPrice) {
			continue
		}
		if diff.IsNegative() {
			sells = append(sells, rebalanceCandidate{asset: a, diff: diff})
		} else {
			buys = append(buys, rebalanceCandidate{asset: a, diff: diff})
		}
	}

	byMagnitude := func(c []rebalanceCandidate) func(i, j int) bool {
		return func(i, j int) bool {
			cmp := c[i].diff.Abs().Cmp(c[j].diff.Abs())
			if cmp != 0 {
				return cmp > 0
			}
			return c[i].asset.Ticker < c[j].asset.Ticker
		}
	}
	sort.SliceStable(sells, byMagnitude(sells))
	sort.SliceStable(buys, byMagnitude(buys))

	orders := []domain.Order{}
	availableCash := cash

	for _, c := range sells {
		qty := wholeUnits(c.diff.Abs(), c.asset.BuyPrice)
		held := c.asset.Shares.Floor()
		if qty.GreaterThan(held) {
			qty = held
		}
		if !qty.IsPositive() {
			continue
		}

		rate := FeeRate(c.asset, snapshot.Fees)
		proceeds := floorCents(qty.Mul(c.asset.BuyPrice).Mul(decimal.NewFromInt(1).Sub(rate.Div(hundred))))
		availableCash = availableCash.Add(proceeds)

		orders = append(orders, domain.Order{
			Ticker:    c.asset.Ticker,
			Side:      domain.OrderSideSell,
			Qty:       qty.IntPart(),
			Cost:      proceeds,
			NewShares: c.asset.Shares.Sub(qty),
		})
	}

	for _, c := range buys {
		rate := FeeRate(c.asset, snapshot.Fees)
		unitCost := c.asset.BuyPrice.Mul(decimal.NewFromInt(1).Add(rate.Div(hundred)))

		qty := wholeUnits(c.diff, c.asset.BuyPrice)
		if ceilCents(qty.Mul(unitCost)).GreaterThan(availableCash) {
			qty = affordableQty(availableCash, unitCost)
		}
		if !qty.IsPositive() {
			continue
		}

		cost := ceilCents(qty.Mul(unitCost))
		availableCash = availableCash.Sub(cost)

		orders = append(orders, domain.Order{
			Ticker:    c.asset.Ticker,
			Side:      domain.OrderSideBuy,
			Qty:       qty.IntPart(),
			Cost:      cost,
			NewShares: c.asset.Shares.Add(qty),
		})
	}

	return orders, nil
}

// wholeUnits is floor(amount / price) for non-negative operands,
// computed without rounding the quotient first
func wholeUnits(amount, price decimal.Decimal) decimal.Decimal {
	q, _ := amount.QuoRem(price, 0)
	return q
}

func ceilCents(d decimal.Decimal) decimal.Decimal {
	return d.Mul(hundred).Ceil().Div(hundred)
}

func floorCents(d decimal.Decimal) decimal.Decimal {
	return d.Mul(hundred).Floor().Div(hundred)
}

// affordableQty is the largest whole number of units whose cost,
// rounded up to the cent, fits in cash. A cent-rounded cost fits in cash
// exactly when the unrounded cost fits in cash floored to the cent.
func affordableQty(cash, unitCost decimal.Decimal) decimal.Decimal {
	budget := floorCents(cash)
	if !budget.IsPositive() {
		return decimal.Zero
	}
	return wholeUnits(budget, unitCost)
}

type RebalanceSummary struct {
	TotalBuys     decimal.Decimal `json:"total_buys"`
	TotalSells    decimal.Decimal `json:"total_sells"`
	NetCashFlow   decimal.Decimal `json:"net_cash_flow"`
	RemainingCash decimal.Decimal `json:"remaining_cash"`
}

// SummarizeOrders totals an order list against the snapshot's starting
// cash. NetCashFlow is sells minus buys.
func SummarizeOrders(snapshot domain.Snapshot, orders []domain.Order) RebalanceSummary {
	buys := decimal.Zero
	sells := decimal.Zero
	for _, o := range orders {
		switch o.Side {
		case domain.OrderSideBuy:
			buys = buys.Add(o.Cost)
		case domain.OrderSideSell:
			sells = sells.Add(o.Cost)
		}
	}
	net := sells.Sub(buys)
	return RebalanceSummary{
		TotalBuys:     buys,
		TotalSells:    sells,
		NetCashFlow:   net,
		RemainingCash: Cash(snapshot.Capital, Invested(snapshot.Assets)).Add(net),
	}
}
