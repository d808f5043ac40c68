package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"webhookrelay/src/model"
)

// Sender posts test signals to a running relay.
type Sender struct {
	Log  *logger.Entry
	http *resty.Client
}

func New(cfg Config) *Sender {
	return &Sender{
		Log: logger.WithField("cmd", "send"),
		http: resty.New().
			SetBaseURL(strings.TrimRight(cfg.RelayURL, "/")).
			SetTimeout(cfg.Timeout).
			SetRetryCount(0).
			SetHeader("Content-Type", "application/json"),
	}
}

// Signal is the webhook body built from command line flags.
type Signal struct {
	Action   string
	Symbol   string
	Amount   string
	Price    string
	TestMode *bool
}

// Payload validates the signal the same way the relay does and returns the body to send.
func (s Signal) Payload() ([]byte, error) {
	p := model.WebhookPayload{Action: s.Action, Symbol: s.Symbol, TestMode: s.TestMode}

	for _, f := range []struct {
		name  string
		value string
		dst   **decimal.Decimal
	}{
		{"amount", s.Amount, &p.Amount},
		{"price", s.Price, &p.Price},
	} {
		if f.value == "" {
			continue
		}
		d, err := decimal.NewFromString(f.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", f.name, f.value, err)
		}
		*f.dst = &d
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	if _, err := model.ParseWebhookPayload(body); err != nil {
		return nil, err
	}
	return body, nil
}

// Result is what the relay answered.
type Result struct {
	StatusCode int
	Body       map[string]any
}

func (s *Sender) Send(ctx context.Context, sig Signal) (*Result, error) {
	body, err := sig.Payload()
	if err != nil {
		return nil, err
	}

	out := map[string]any{}
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post("/api/webhook")
	if err != nil {
		return nil, fmt.Errorf("post webhook: %w", err)
	}

	s.Log.WithFields(logger.Fields{
		"status":  resp.StatusCode(),
		"action":  sig.Action,
		"symbol":  sig.Symbol,
		"message": out["message"],
	}).Info("Relay answered")

	return &Result{StatusCode: resp.StatusCode(), Body: out}, nil
}

// Probe asks the relay to test its exchange connection.
func (s *Sender) Probe(ctx context.Context) (*Result, error) {
	out := map[string]any{}
	resp, err := s.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out).
		Get("/api/test-connection")
	if err != nil {
		return nil, fmt.Errorf("test connection: %w", err)
	}
	return &Result{StatusCode: resp.StatusCode(), Body: out}, nil
}
