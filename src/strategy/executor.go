package strategy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"webhookrelay/src/activity"
	"webhookrelay/src/connectors"
	"webhookrelay/src/errs"
	"webhookrelay/src/model"
	"webhookrelay/src/repository"
	"webhookrelay/src/risk"
)

const (
	msgWebhookReceived   = "Webhook request received"
	msgValidationFailed  = "Webhook validation error"
	msgProcessingFailed  = "Error processing webhook"
	respInvalidPayload   = "Invalid webhook payload"
	respProcessingFailed = "Failed to process webhook request"

	unreadablePrefixBytes = 256
)

// Executor turns one webhook delivery into at most one market order.
// Each call is independent: there is no deduplication of repeated deliveries.
type Executor struct {
	logger   *logrus.Entry
	config   repository.ConfigurationStore
	exchange connectors.Exchange
	recorder *activity.Recorder
}

func NewExecutor(logger *logrus.Entry, config repository.ConfigurationStore, exchange connectors.Exchange, recorder *activity.Recorder) *Executor {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Executor{logger: logger, config: config, exchange: exchange, recorder: recorder}
}

// WebhookResult is the HTTP status and JSON body for a webhook delivery.
type WebhookResult struct {
	StatusCode int
	Response   WebhookResponse
}

type WebhookResponse struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Error      string           `json:"error,omitempty"`
	TestMode   bool             `json:"testMode,omitempty"`
	OrderID    string           `json:"orderId,omitempty"`
	Symbol     string           `json:"symbol,omitempty"`
	OrderSize  *decimal.Decimal `json:"orderSize,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	StopLoss   *decimal.Decimal `json:"stopLoss,omitempty"`
	TakeProfit *decimal.Decimal `json:"takeProfit,omitempty"`
	Risk       *risk.Levels     `json:"risk,omitempty"`
}

// Resolved holds the effective parameters for one signal.
type Resolved struct {
	Symbol    string
	TestMode  bool
	OrderSize decimal.Decimal
	Config    *model.Configuration
	// Pair is set only when an active pair drove the resolution.
	Pair *model.TradingPair
}

// Percents returns the risk percentages of the active pair, else of the global configuration.
func (r *Resolved) Percents() risk.Percents {
	p := risk.Percents{
		StopLoss:        r.Config.StopLossPercent,
		TakeProfit:      r.Config.TakeProfitPercent,
		TrailingStop:    r.Config.TrailingStopPercent,
		TrailingEnabled: r.Config.EnableTrailingStop,
	}
	if r.Pair != nil {
		p.StopLoss = r.Pair.StopLossPercent
		p.TakeProfit = r.Pair.TakeProfitPercent
	}
	return p
}

type strategyContext struct {
	EnableAdxFilter    bool `json:"enableAdxFilter"`
	AdxThreshold       int  `json:"adxThreshold"`
	EnableVolumeFilter bool `json:"enableVolumeFilter"`
}

type orderDetails struct {
	*model.OrderResponse
	StopLoss   *decimal.Decimal `json:"stopLoss,omitempty"`
	TakeProfit *decimal.Decimal `json:"takeProfit,omitempty"`
	Strategy   strategyContext  `json:"strategy"`
	Risk       *risk.Levels     `json:"risk,omitempty"`
}

// HandleWebhook runs receive, validate, resolve and then either simulates or executes the order.
// It never panics and every failure is written to the activity log.
func (e *Executor) HandleWebhook(ctx context.Context, raw []byte, ip string) (result WebhookResult) {
	if ctx == nil {
		ctx = context.Background()
	}

	_, _ = e.recorder.Webhook(ctx, msgWebhookReceived, raw, ip)

	payload, err := model.ParseWebhookPayload(raw)
	if err != nil {
		_, _ = e.recorder.Error(ctx, msgValidationFailed, err, errs.CodeValidation)
		return WebhookResult{
			StatusCode: http.StatusBadRequest,
			Response:   WebhookResponse{Message: respInvalidPayload, Error: err.Error()},
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			panicErr := fmt.Errorf("panic: %v", rec)
			e.logger.WithError(panicErr).Error("recovered from panic while processing webhook")
			_, _ = e.recorder.Error(ctx, msgProcessingFailed, panicErr, errs.CodeInternal)
			result = failure()
		}
	}()

	resolved, err := e.Resolve(ctx, payload)
	if err != nil {
		_, _ = e.recorder.Error(ctx, msgProcessingFailed, err, "")
		return failure()
	}

	if resolved.TestMode {
		return e.simulate(ctx, payload, resolved)
	}
	return e.execute(ctx, payload, resolved)
}

// RejectUnreadable audits a delivery whose body could not be read, such as one over
// the size limit. Only a prefix of what was read is kept.
func (e *Executor) RejectUnreadable(ctx context.Context, partial []byte, ip string, readErr error) WebhookResult {
	if ctx == nil {
		ctx = context.Background()
	}

	prefix := partial
	if len(prefix) > unreadablePrefixBytes {
		prefix = prefix[:unreadablePrefixBytes]
	}
	_, _ = e.recorder.Webhook(ctx, msgWebhookReceived, map[string]any{
		"bodyPrefix": string(prefix),
		"bytesRead":  len(partial),
		"readError":  readErr.Error(),
	}, ip)

	var vErr *errs.ValidationError
	if !errors.As(readErr, &vErr) {
		vErr = &errs.ValidationError{Message: "could not read request body", Err: readErr}
	}
	_, _ = e.recorder.Error(ctx, msgValidationFailed, vErr, errs.CodeValidation)

	return WebhookResult{
		StatusCode: http.StatusBadRequest,
		Response:   WebhookResponse{Message: respInvalidPayload, Error: vErr.Error()},
	}
}

// Resolve computes symbol, test mode and order size. Trading pair lookup failures
// fall back to the global configuration; only a failure to load that configuration is returned.
func (e *Executor) Resolve(ctx context.Context, payload *model.WebhookPayload) (*Resolved, error) {
	cfg, err := e.config.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	out := &Resolved{
		Symbol:    payload.Symbol,
		TestMode:  cfg.TestMode,
		OrderSize: cfg.OrderSize,
		Config:    cfg,
	}
	if out.Symbol == "" {
		out.Symbol = cfg.TradingPair
	}
	if payload.TestMode != nil {
		out.TestMode = *payload.TestMode
	}

	pair, err := e.config.GetTradingPair(ctx, out.Symbol)
	switch {
	case err == nil && pair.Status:
		out.Pair = pair
		out.OrderSize = pair.OrderSize
	case err != nil && !errors.Is(err, errs.ErrNotFound):
		e.logger.WithError(&errs.ConfigResolutionError{Symbol: out.Symbol, Err: err}).
			Warn("trading pair lookup failed, using global configuration")
	}

	if payload.Amount != nil {
		out.OrderSize = *payload.Amount
	}
	return out, nil
}

func (e *Executor) simulate(ctx context.Context, payload *model.WebhookPayload, r *Resolved) WebhookResult {
	side := payload.Side()

	_, _ = e.recorder.System(ctx, fmt.Sprintf("Test mode: Simulated %s order for %s", side, r.Symbol), nil)
	if payload.StopLoss != nil {
		_, _ = e.recorder.System(ctx, fmt.Sprintf("Test mode: Stop loss set at %s", payload.StopLoss), nil)
	}
	if payload.TakeProfit != nil {
		_, _ = e.recorder.System(ctx, fmt.Sprintf("Test mode: Take profit set at %s", payload.TakeProfit), nil)
	}

	resp := e.echo(payload, r)
	resp.Success = true
	resp.TestMode = true
	resp.Message = fmt.Sprintf("Test mode: %s order simulated for %s", side, r.Symbol)
	return WebhookResult{StatusCode: http.StatusOK, Response: resp}
}

func (e *Executor) execute(ctx context.Context, payload *model.WebhookPayload, r *Resolved) WebhookResult {
	side := payload.Side()
	log := e.logger.WithFields(logrus.Fields{
		"symbol":     r.Symbol,
		"side":       side,
		"order_size": r.OrderSize.String(),
	})

	started := time.Now()
	order, err := e.exchange.ExecuteMarketOrder(ctx, r.Symbol, side, r.OrderSize)
	if err != nil {
		log.WithError(err).WithField("reason", failureText(err)).Error("failed to execute order")
		_, _ = e.recorder.Error(ctx, msgProcessingFailed, err, "")
		res := failure()
		res.Response.Error = failureText(err)
		return res
	}
	log.WithFields(logrus.Fields{
		"order_id": order.OrderID,
		"took":     time.Since(started).String(),
	}).Info("order executed")

	resp := e.echo(payload, r)
	details := orderDetails{
		OrderResponse: order,
		StopLoss:      payload.StopLoss,
		TakeProfit:    payload.TakeProfit,
		Strategy: strategyContext{
			EnableAdxFilter:    r.Config.EnableAdxFilter,
			AdxThreshold:       r.Config.AdxThreshold,
			EnableVolumeFilter: r.Config.EnableVolumeFilter,
		},
		Risk: resp.Risk,
	}

	logMsg := fmt.Sprintf("%s Order Executed for %s of %s", side, r.OrderSize, r.Symbol)
	if side == model.SideSell {
		_, _ = e.recorder.SellOrder(ctx, logMsg, order.OrderID, details)
		resp.Message = "Sell order executed successfully"
	} else {
		_, _ = e.recorder.BuyOrder(ctx, logMsg, order.OrderID, details)
		resp.Message = "Buy order executed successfully"
	}

	resp.Success = true
	resp.OrderID = order.OrderID
	return WebhookResult{StatusCode: http.StatusOK, Response: resp}
}

func (e *Executor) echo(payload *model.WebhookPayload, r *Resolved) WebhookResponse {
	size := r.OrderSize
	resp := WebhookResponse{
		Symbol:     r.Symbol,
		OrderSize:  &size,
		Price:      payload.Price,
		StopLoss:   payload.StopLoss,
		TakeProfit: payload.TakeProfit,
	}
	if levels := risk.CalculateLevels(payload.Side(), payload.Price, payload.StopLoss, payload.TakeProfit, r.Percents()); !levels.Empty() {
		resp.Risk = &levels
	}
	return resp
}

func failure() WebhookResult {
	return WebhookResult{
		StatusCode: http.StatusInternalServerError,
		Response:   WebhookResponse{Message: respProcessingFailed},
	}
}

// failureText is the caller-facing description of an execution failure.
func failureText(err error) string {
	var exErr *errs.ExchangeError
	if errors.As(err, &exErr) && exErr.Reason != "" {
		return connectors.FailureReasonMessage(exErr.Reason)
	}
	switch errs.Code(err) {
	case errs.CodeCredential:
		return "exchange credentials are not configured"
	case errs.CodeSignature:
		return "failed to sign exchange request"
	case errs.CodeExchange:
		return "exchange request failed"
	default:
		return ""
	}
}
