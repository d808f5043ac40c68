package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"webhookrelay/src/errs"
)

// TradingPair is a per-symbol override of the global sizing and risk settings.
// Symbol is the natural key and never changes after creation.
type TradingPair struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Symbol string `gorm:"size:50;not null;uniqueIndex" json:"symbol"`
	Name   string `gorm:"size:255;not null" json:"name"`

	// Status false means inactive: orders fall back to the global configuration.
	Status bool `gorm:"not null" json:"status"`

	OrderSize         decimal.Decimal `gorm:"type:numeric(28,10);not null" json:"orderSize"`
	StopLossPercent   decimal.Decimal `gorm:"type:numeric(10,4);not null" json:"stopLossPercent"`
	TakeProfitPercent decimal.Decimal `gorm:"type:numeric(10,4);not null" json:"takeProfitPercent"`

	CreatedAt time.Time `json:"createdAt"`
}

func (TradingPair) TableName() string {
	return "trading_pairs"
}

var (
	defaultPairStopLoss   = decimal.RequireFromString("2.0")
	defaultPairTakeProfit = decimal.RequireFromString("3.0")
)

// TradingPairInput is the body of POST /trading-pairs.
type TradingPairInput struct {
	Symbol            string           `json:"symbol" validate:"required"`
	Name              string           `json:"name" validate:"required"`
	Status            *bool            `json:"status,omitempty"`
	OrderSize         *decimal.Decimal `json:"orderSize" validate:"required"`
	StopLossPercent   *decimal.Decimal `json:"stopLossPercent,omitempty"`
	TakeProfitPercent *decimal.Decimal `json:"takeProfitPercent,omitempty"`
}

// Validate trims the key fields and checks them.
func (in *TradingPairInput) Validate() error {
	in.Symbol = strings.TrimSpace(in.Symbol)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return err
	}
	if !in.OrderSize.IsPositive() {
		return errs.NewValidationError("orderSize", "must be greater than zero")
	}
	if in.StopLossPercent != nil && in.StopLossPercent.IsNegative() {
		return errs.NewValidationError("stopLossPercent", "must not be negative")
	}
	if in.TakeProfitPercent != nil && in.TakeProfitPercent.IsNegative() {
		return errs.NewValidationError("takeProfitPercent", "must not be negative")
	}
	return nil
}

// ToTradingPair fills the defaults: active, 2% stop loss, 3% take profit.
func (in TradingPairInput) ToTradingPair(now time.Time) TradingPair {
	pair := TradingPair{
		Symbol:            in.Symbol,
		Name:              in.Name,
		Status:            true,
		StopLossPercent:   defaultPairStopLoss,
		TakeProfitPercent: defaultPairTakeProfit,
		CreatedAt:         now,
	}
	if in.Status != nil {
		pair.Status = *in.Status
	}
	if in.OrderSize != nil {
		pair.OrderSize = *in.OrderSize
	}
	if in.StopLossPercent != nil {
		pair.StopLossPercent = *in.StopLossPercent
	}
	if in.TakeProfitPercent != nil {
		pair.TakeProfitPercent = *in.TakeProfitPercent
	}
	return pair
}

// TradingPairPatch is the body of PUT /trading-pairs/{symbol}.
// There is no symbol field: the key is immutable.
type TradingPairPatch struct {
	Name              *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Status            *bool            `json:"status,omitempty"`
	OrderSize         *decimal.Decimal `json:"orderSize,omitempty"`
	StopLossPercent   *decimal.Decimal `json:"stopLossPercent,omitempty"`
	TakeProfitPercent *decimal.Decimal `json:"takeProfitPercent,omitempty"`
}

func (p TradingPairPatch) Validate() error {
	if err := validateStruct(&p); err != nil {
		return err
	}
	if p.OrderSize != nil && !p.OrderSize.IsPositive() {
		return errs.NewValidationError("orderSize", "must be greater than zero")
	}
	if p.StopLossPercent != nil && p.StopLossPercent.IsNegative() {
		return errs.NewValidationError("stopLossPercent", "must not be negative")
	}
	if p.TakeProfitPercent != nil && p.TakeProfitPercent.IsNegative() {
		return errs.NewValidationError("takeProfitPercent", "must not be negative")
	}
	return nil
}

// Apply merges the patch onto pair. ID, Symbol and CreatedAt are untouched.
func (p TradingPairPatch) Apply(pair *TradingPair) {
	if p.Name != nil {
		pair.Name = *p.Name
	}
	if p.Status != nil {
		pair.Status = *p.Status
	}
	if p.OrderSize != nil {
		pair.OrderSize = *p.OrderSize
	}
	if p.StopLossPercent != nil {
		pair.StopLossPercent = *p.StopLossPercent
	}
	if p.TakeProfitPercent != nil {
		pair.TakeProfitPercent = *p.TakeProfitPercent
	}
}

// DefaultTradingPairs is the seed set installed in a fresh store.
func DefaultTradingPairs(now time.Time) []TradingPair {
	seed := []struct {
		symbol, name, size, sl, tp string
	}{
		{"BTC-USD", "Bitcoin", "0.01", "2.0", "3.0"},
		{"ETH-USD", "Ethereum", "0.1", "2.5", "4.0"},
		{"SOL-USD", "Solana", "1.0", "3.0", "5.0"},
		{"DOGE-USD", "Dogecoin", "100", "4.0", "6.0"},
		{"AIOC-USD", "AI Open Compute", "50", "2.5", "5.0"},
	}

	pairs := make([]TradingPair, 0, len(seed))
	for _, s := range seed {
		pairs = append(pairs, TradingPair{
			Symbol:            s.symbol,
			Name:              s.name,
			Status:            true,
			OrderSize:         decimal.RequireFromString(s.size),
			StopLossPercent:   decimal.RequireFromString(s.sl),
			TakeProfitPercent: decimal.RequireFromString(s.tp),
			CreatedAt:         now,
		})
	}
	return pairs
}
