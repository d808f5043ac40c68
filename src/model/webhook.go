package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"webhookrelay/src/errs"
)

// Webhook actions accepted by the relay.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
)

// WebhookPayload is the trading signal posted to /webhook. It is never persisted.
// Price, StopLoss and TakeProfit are advisory: they are echoed and logged, not enforced.
type WebhookPayload struct {
	Action     string           `json:"action" validate:"required,oneof=buy sell"`
	Symbol     string           `json:"symbol,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	StopLoss   *decimal.Decimal `json:"stopLoss,omitempty"`
	TakeProfit *decimal.Decimal `json:"takeProfit,omitempty"`
	TestMode   *bool            `json:"testMode,omitempty"`
	Params     map[string]any   `json:"params,omitempty"`
}

// Side returns the exchange order side (BUY or SELL).
func (p *WebhookPayload) Side() string {
	return strings.ToUpper(p.Action)
}

// ParseWebhookPayload decodes and validates a raw webhook body.
// Every failure is a *errs.ValidationError.
func ParseWebhookPayload(raw []byte) (*WebhookPayload, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errs.NewValidationError("", "request body is empty")
	}

	var payload WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &errs.ValidationError{Message: "invalid JSON: " + err.Error(), Err: err}
	}

	if err := validateStruct(&payload); err != nil {
		return nil, err
	}

	payload.Symbol = strings.TrimSpace(payload.Symbol)

	if payload.Amount != nil && !payload.Amount.IsPositive() {
		return nil, errs.NewValidationError("amount", "must be greater than zero")
	}

	return &payload, nil
}
