package sender

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webhookrelay/src/errs"
)

func TestSignalPayload(t *testing.T) {
	testMode := true
	body, err := Signal{Action: "buy", Symbol: "ETH-USD", Amount: "0.5", TestMode: &testMode}.Payload()
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"buy","symbol":"ETH-USD","amount":"0.5","testMode":true}`, string(body))

	_, err = Signal{Action: "hold"}.Payload()
	assert.Equal(t, errs.CodeValidation, errs.Code(err))

	_, err = Signal{Action: "sell", Price: "abc"}.Payload()
	assert.Error(t, err)
}

func TestSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/webhook" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Errorf("bad body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"Test mode: BUY order simulated for BTC-USD","testMode":true}`))
	}))
	defer srv.Close()

	s := New(Config{RelayURL: srv.URL + "/", Timeout: 2 * time.Second})
	res, err := s.Send(context.Background(), Signal{Action: "buy", Symbol: "BTC-USD"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, res.Body["testMode"])
	assert.Equal(t, "buy", got["action"])
	assert.Equal(t, "BTC-USD", got["symbol"])
}

func TestProbe_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Failed to connect to Coinbase API"}`))
	}))
	defer srv.Close()

	res, err := New(Config{RelayURL: srv.URL, Timeout: 2 * time.Second}).Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, "Failed to connect to Coinbase API", res.Body["message"])
}
