package connectors

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"webhookrelay/src/errs"
	"webhookrelay/src/model"
	"webhookrelay/src/security"
)

const (
	coinbaseOrdersPath   = "/api/v3/brokerage/orders"
	coinbaseProductsPath = "/api/v3/brokerage/products"
)

// Exchange is what the webhook executor needs from a brokerage.
type Exchange interface {
	ExecuteMarketOrder(ctx context.Context, symbol, side string, baseSize decimal.Decimal) (*model.OrderResponse, error)
	TestConnection(ctx context.Context) bool
}

// CoinbaseClient talks to the Coinbase Advanced Trade brokerage API.
// It never retries: one call is one order attempt.
type CoinbaseClient struct {
	creds  security.CredentialProvider
	signer Signer
	http   *resty.Client
	log    *logger.Entry

	now     func() time.Time
	orderID func() string
}

func NewCoinbaseClient(cfg Config, creds security.CredentialProvider, signer Signer) *CoinbaseClient {
	timeout := cfg.CoinbaseTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.CoinbaseBaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json")

	return &CoinbaseClient{
		creds:   creds,
		signer:  signer,
		http:    httpClient,
		log:     logger.WithField("exchange", "coinbase"),
		now:     time.Now,
		orderID: uuid.NewString,
	}
}

// NewExchange wires the exchange selected by cfg: PaperExchange when
// EXCHANGE_SIMULATED is set, otherwise a CoinbaseClient with the configured signer.
func NewExchange(cfg Config, creds security.CredentialProvider) (Exchange, error) {
	if cfg.ExchangeSimulated {
		return NewPaperExchange(), nil
	}
	signer, err := NewSigner(cfg.SigningMode, cfg.CoinbaseBaseURL)
	if err != nil {
		return nil, err
	}
	return NewCoinbaseClient(cfg, creds, signer), nil
}

// ExecuteMarketOrder submits a market IOC order for baseSize units of symbol.
func (c *CoinbaseClient) ExecuteMarketOrder(ctx context.Context, symbol, side string, baseSize decimal.Decimal) (*model.OrderResponse, error) {
	creds, err := c.creds.GetCredentials(ctx)
	if err != nil {
		return nil, err
	}

	order := model.NewMarketOrderRequest(c.orderID(), symbol, side, baseSize)
	body, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}

	timestamp := c.now().Unix()
	headers, err := authHeaders(c.signer, http.MethodPost, coinbaseOrdersPath, string(body), timestamp, creds)
	if err != nil {
		return nil, err
	}

	log := c.log.WithFields(logger.Fields{
		"client_order_id": order.ClientOrderID,
		"product_id":      symbol,
		"side":            side,
		"base_size":       baseSize.String(),
	})
	log.Debug("Submitting Coinbase market order")

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(body).
		Post(coinbaseOrdersPath)
	if err != nil {
		log.WithError(err).Error("Coinbase order request failed")
		return nil, &errs.ExchangeError{Err: err}
	}

	raw := resp.Body()
	if !resp.IsSuccess() {
		exErr := &errs.ExchangeError{
			StatusCode: resp.StatusCode(),
			Body:       string(raw),
			Reason:     apiErrorReason(raw),
		}
		log.WithFields(logger.Fields{"status": resp.StatusCode(), "body": string(raw)}).Error("Coinbase rejected order")
		return nil, exErr
	}

	var out model.OrderResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &errs.ExchangeError{StatusCode: resp.StatusCode(), Body: string(raw), Err: err}
	}
	out.Normalize()

	if !out.Success {
		log.WithFields(logger.Fields{
			"failure_reason": out.FailureReason,
			"detail":         FailureReasonMessage(out.FailureReason),
		}).Error("Coinbase order unsuccessful")
		return &out, &errs.ExchangeError{StatusCode: resp.StatusCode(), Body: string(raw), Reason: out.FailureReason}
	}

	log.WithField("order_id", out.OrderID).Info("Coinbase order accepted")
	return &out, nil
}

// TestConnection performs a signed read of one product. It reports false on any
// failure, including missing credentials.
func (c *CoinbaseClient) TestConnection(ctx context.Context) bool {
	creds, err := c.creds.GetCredentials(ctx)
	if err != nil {
		c.log.WithError(err).Warn("Coinbase connection test skipped")
		return false
	}

	headers, err := authHeaders(c.signer, http.MethodGet, coinbaseProductsPath, "", c.now().Unix(), creds)
	if err != nil {
		c.log.WithError(err).Warn("Coinbase connection test could not sign request")
		return false
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetQueryParam("limit", "1").
		Get(coinbaseProductsPath)
	if err != nil {
		c.log.WithError(err).Warn("Failed to connect to Coinbase API")
		return false
	}
	if !resp.IsSuccess() {
		c.log.WithFields(logger.Fields{"status": resp.StatusCode(), "body": resp.String()}).Warn("Failed to connect to Coinbase API")
		return false
	}
	return true
}

// apiErrorReason extracts the error code or message from a non-2xx body.
func apiErrorReason(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
