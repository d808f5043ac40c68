package model

import (
	"time"

	"github.com/shopspring/decimal"

	"webhookrelay/src/errs"
)

// ConfigurationID is the primary key of the singleton configuration row.
const ConfigurationID uint = 1

// Configuration is the global trading configuration. Exactly one exists.
type Configuration struct {
	ID uint `gorm:"primaryKey" json:"id"`

	TradingPair     string          `gorm:"size:50;not null" json:"tradingPair"`
	OrderSize       decimal.Decimal `gorm:"type:numeric(28,10);not null" json:"orderSize"`
	WebhookEndpoint string          `gorm:"size:255;not null" json:"webhookEndpoint"`
	TestMode        bool            `gorm:"not null" json:"testMode"`

	EnableAdxFilter     bool            `gorm:"not null" json:"enableAdxFilter"`
	AdxThreshold        int             `gorm:"not null" json:"adxThreshold"`
	EnableVolumeFilter  bool            `gorm:"not null" json:"enableVolumeFilter"`
	StopLossPercent     decimal.Decimal `gorm:"type:numeric(10,4);not null" json:"stopLossPercent"`
	TakeProfitPercent   decimal.Decimal `gorm:"type:numeric(10,4);not null" json:"takeProfitPercent"`
	TrailingStopPercent decimal.Decimal `gorm:"type:numeric(10,4);not null" json:"trailingStopPercent"`
	EnableTrailingStop  bool            `gorm:"not null" json:"enableTrailingStop"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName keeps the table name stable across drivers.
func (Configuration) TableName() string {
	return "configurations"
}

// DefaultConfiguration is the baseline used until the configuration is explicitly set.
func DefaultConfiguration(now time.Time) Configuration {
	return Configuration{
		ID:                  ConfigurationID,
		TradingPair:         "BTC-USD",
		OrderSize:           decimal.RequireFromString("0.01"),
		WebhookEndpoint:     "/webhook",
		TestMode:            true,
		EnableAdxFilter:     true,
		AdxThreshold:        20,
		EnableVolumeFilter:  true,
		StopLossPercent:     decimal.RequireFromString("2.0"),
		TakeProfitPercent:   decimal.RequireFromString("3.0"),
		TrailingStopPercent: decimal.RequireFromString("1.5"),
		EnableTrailingStop:  true,
		UpdatedAt:           now,
	}
}

// Strategy returns the strategy-specific subset of the configuration.
func (c Configuration) Strategy() StrategySettings {
	return StrategySettings{
		EnableAdxFilter:     c.EnableAdxFilter,
		AdxThreshold:        c.AdxThreshold,
		EnableVolumeFilter:  c.EnableVolumeFilter,
		StopLossPercent:     c.StopLossPercent,
		TakeProfitPercent:   c.TakeProfitPercent,
		TrailingStopPercent: c.TrailingStopPercent,
		EnableTrailingStop:  c.EnableTrailingStop,
	}
}

// StrategySettings is what GET /strategy returns.
type StrategySettings struct {
	EnableAdxFilter     bool            `json:"enableAdxFilter"`
	AdxThreshold        int             `json:"adxThreshold"`
	EnableVolumeFilter  bool            `json:"enableVolumeFilter"`
	StopLossPercent     decimal.Decimal `json:"stopLossPercent"`
	TakeProfitPercent   decimal.Decimal `json:"takeProfitPercent"`
	TrailingStopPercent decimal.Decimal `json:"trailingStopPercent"`
	EnableTrailingStop  bool            `json:"enableTrailingStop"`
}

// ConfigurationPatch is a partial update. Nil fields are left untouched and
// JSON fields that are not listed here are ignored.
type ConfigurationPatch struct {
	TradingPair     *string          `json:"tradingPair,omitempty" validate:"omitempty,min=1"`
	OrderSize       *decimal.Decimal `json:"orderSize,omitempty"`
	WebhookEndpoint *string          `json:"webhookEndpoint,omitempty"`
	TestMode        *bool            `json:"testMode,omitempty"`

	StrategyPatch
}

// StrategyPatch is the strategy subset accepted by POST /strategy.
type StrategyPatch struct {
	EnableAdxFilter     *bool            `json:"enableAdxFilter,omitempty"`
	AdxThreshold        *int             `json:"adxThreshold,omitempty" validate:"omitempty,min=5,max=50"`
	EnableVolumeFilter  *bool            `json:"enableVolumeFilter,omitempty"`
	StopLossPercent     *decimal.Decimal `json:"stopLossPercent,omitempty"`
	TakeProfitPercent   *decimal.Decimal `json:"takeProfitPercent,omitempty"`
	TrailingStopPercent *decimal.Decimal `json:"trailingStopPercent,omitempty"`
	EnableTrailingStop  *bool            `json:"enableTrailingStop,omitempty"`
}

// Validate checks ranges the struct tags cannot express.
func (p ConfigurationPatch) Validate() error {
	if err := validateStruct(&p); err != nil {
		return err
	}
	if p.OrderSize != nil && !p.OrderSize.IsPositive() {
		return errs.NewValidationError("orderSize", "must be greater than zero")
	}
	return p.StrategyPatch.validatePercents()
}

// Validate checks the strategy subset on its own.
func (p StrategyPatch) Validate() error {
	if err := validateStruct(&p); err != nil {
		return err
	}
	return p.validatePercents()
}

func (p StrategyPatch) validatePercents() error {
	checks := []struct {
		field string
		value *decimal.Decimal
	}{
		{"stopLossPercent", p.StopLossPercent},
		{"takeProfitPercent", p.TakeProfitPercent},
		{"trailingStopPercent", p.TrailingStopPercent},
	}
	for _, c := range checks {
		if c.value != nil && c.value.IsNegative() {
			return errs.NewValidationError(c.field, "must not be negative")
		}
	}
	return nil
}

// Apply merges the non-nil fields of p onto cfg and stamps UpdatedAt.
func (p ConfigurationPatch) Apply(cfg *Configuration, now time.Time) {
	if p.TradingPair != nil {
		cfg.TradingPair = *p.TradingPair
	}
	if p.OrderSize != nil {
		cfg.OrderSize = *p.OrderSize
	}
	if p.WebhookEndpoint != nil {
		cfg.WebhookEndpoint = *p.WebhookEndpoint
	}
	if p.TestMode != nil {
		cfg.TestMode = *p.TestMode
	}
	if p.EnableAdxFilter != nil {
		cfg.EnableAdxFilter = *p.EnableAdxFilter
	}
	if p.AdxThreshold != nil {
		cfg.AdxThreshold = *p.AdxThreshold
	}
	if p.EnableVolumeFilter != nil {
		cfg.EnableVolumeFilter = *p.EnableVolumeFilter
	}
	if p.StopLossPercent != nil {
		cfg.StopLossPercent = *p.StopLossPercent
	}
	if p.TakeProfitPercent != nil {
		cfg.TakeProfitPercent = *p.TakeProfitPercent
	}
	if p.TrailingStopPercent != nil {
		cfg.TrailingStopPercent = *p.TrailingStopPercent
	}
	if p.EnableTrailingStop != nil {
		cfg.EnableTrailingStop = *p.EnableTrailingStop
	}
	cfg.ID = ConfigurationID
	cfg.UpdatedAt = now
}
