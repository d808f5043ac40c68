package risk

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percents are the risk settings that apply to one signal, expressed in percent of price.
type Percents struct {
	StopLoss        decimal.Decimal
	TakeProfit      decimal.Decimal
	TrailingStop    decimal.Decimal
	TrailingEnabled bool
}

// Levels are advisory exit prices attached to an order. Nothing places them on the exchange.
// Source is "signal" when the webhook supplied the level and "computed" when it was derived.
type Levels struct {
	StopLoss         *decimal.Decimal `json:"stopLoss,omitempty"`
	StopLossSource   string           `json:"stopLossSource,omitempty"`
	TakeProfit       *decimal.Decimal `json:"takeProfit,omitempty"`
	TakeProfitSource string           `json:"takeProfitSource,omitempty"`
	TrailingDistance *decimal.Decimal `json:"trailingDistance,omitempty"`
}

const (
	SourceSignal   = "signal"
	SourceComputed = "computed"
)

// Empty reports whether no level could be produced.
func (l Levels) Empty() bool {
	return l.StopLoss == nil && l.TakeProfit == nil && l.TrailingDistance == nil
}

// CalculateLevels derives exit levels for a side ("BUY" or "SELL", case-insensitive).
// Levels supplied with the signal win. Without a reference price nothing is computed.
func CalculateLevels(side string, price, stopLoss, takeProfit *decimal.Decimal, p Percents) Levels {
	var out Levels

	if stopLoss != nil {
		out.StopLoss, out.StopLossSource = copyDec(*stopLoss), SourceSignal
	}
	if takeProfit != nil {
		out.TakeProfit, out.TakeProfitSource = copyDec(*takeProfit), SourceSignal
	}

	if price == nil || !price.IsPositive() {
		return out
	}

	sell := strings.EqualFold(side, "SELL")

	if out.StopLoss == nil && p.StopLoss.IsPositive() {
		out.StopLoss, out.StopLossSource = copyDec(offset(*price, p.StopLoss, !sell)), SourceComputed
	}
	if out.TakeProfit == nil && p.TakeProfit.IsPositive() {
		out.TakeProfit, out.TakeProfitSource = copyDec(offset(*price, p.TakeProfit, sell)), SourceComputed
	}
	if p.TrailingEnabled && p.TrailingStop.IsPositive() {
		out.TrailingDistance = copyDec(price.Mul(p.TrailingStop).Div(hundred))
	}
	return out
}

// offset moves price by pct percent, downwards when below is true.
func offset(price, pct decimal.Decimal, below bool) decimal.Decimal {
	delta := price.Mul(pct).Div(hundred)
	if below {
		return price.Sub(delta)
	}
	return price.Add(delta)
}

func copyDec(d decimal.Decimal) *decimal.Decimal {
	return &d
}
