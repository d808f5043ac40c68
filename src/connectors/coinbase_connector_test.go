package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webhookrelay/src/errs"
	"webhookrelay/src/model"
	"webhookrelay/src/security"
)

var testCreds = security.StaticProvider{Creds: security.Credentials{
	KeyName:    "organizations/org-1/apiKeys/key-1",
	PrivateKey: "unused-by-static-signer",
}}

func newTestCoinbaseClient(baseURL string, creds security.CredentialProvider, timeout time.Duration) *CoinbaseClient {
	c := NewCoinbaseClient(Config{CoinbaseBaseURL: baseURL, CoinbaseTimeout: timeout}, creds, StaticSigner{Signature: "sig"})
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	c.orderID = func() string { return "client-order-1" }
	return c
}

func TestExecuteMarketOrder_Success(t *testing.T) {
	var gotBody model.OrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v3/brokerage/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("CB-ACCESS-KEY") != "key-1" {
			t.Errorf("unexpected key header %q", r.Header.Get("CB-ACCESS-KEY"))
		}
		if r.Header.Get("CB-ACCESS-TIMESTAMP") != "1700000000" {
			t.Errorf("unexpected timestamp header %q", r.Header.Get("CB-ACCESS-TIMESTAMP"))
		}
		if r.Header.Get("CB-ACCESS-SIGNATURE") != "sig" {
			t.Errorf("unexpected signature header %q", r.Header.Get("CB-ACCESS-SIGNATURE"))
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"success":true,"success_response":{"order_id":"ord-1","product_id":"BTC-USD","side":"BUY","client_order_id":"client-order-1"}}`))
	}))
	defer server.Close()

	client := newTestCoinbaseClient(server.URL, testCreds, time.Second)
	resp, err := client.ExecuteMarketOrder(context.Background(), "BTC-USD", model.SideBuy, decimal.RequireFromString("0.02"))
	require.NoError(t, err)

	assert.Equal(t, "ord-1", resp.OrderID)
	assert.True(t, resp.Success)
	assert.Equal(t, "client-order-1", gotBody.ClientOrderID)
	assert.Equal(t, "BTC-USD", gotBody.ProductID)
	assert.Equal(t, "BUY", gotBody.Side)
	require.NotNil(t, gotBody.OrderConfiguration.MarketMarketIOC)
	assert.Equal(t, "0.02", gotBody.OrderConfiguration.MarketMarketIOC.BaseSize)
}

func TestExecuteMarketOrder_HTTPErrorNoRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"UNAUTHORIZED","message":"invalid signature"}`))
	}))
	defer server.Close()

	client := newTestCoinbaseClient(server.URL, testCreds, time.Second)
	_, err := client.ExecuteMarketOrder(context.Background(), "BTC-USD", model.SideSell, decimal.NewFromInt(1))

	var exErr *errs.ExchangeError
	require.True(t, errors.As(err, &exErr), "expected ExchangeError, got %v", err)
	assert.Equal(t, http.StatusUnauthorized, exErr.StatusCode)
	assert.Equal(t, "invalid signature", exErr.Reason)
	assert.Contains(t, exErr.Body, "UNAUTHORIZED")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestExecuteMarketOrder_UnsuccessfulResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"failure_reason":"INSUFFICIENT_FUND"}`))
	}))
	defer server.Close()

	client := newTestCoinbaseClient(server.URL, testCreds, time.Second)
	resp, err := client.ExecuteMarketOrder(context.Background(), "BTC-USD", model.SideBuy, decimal.NewFromInt(1))

	var exErr *errs.ExchangeError
	require.True(t, errors.As(err, &exErr))
	assert.Equal(t, "INSUFFICIENT_FUND", exErr.Reason)
	require.NotNil(t, resp)
	assert.False(t, resp.Success)
}

func TestExecuteMarketOrder_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()
	defer close(release)

	client := newTestCoinbaseClient(server.URL, testCreds, 50*time.Millisecond)
	_, err := client.ExecuteMarketOrder(context.Background(), "BTC-USD", model.SideBuy, decimal.NewFromInt(1))

	var exErr *errs.ExchangeError
	require.True(t, errors.As(err, &exErr), "expected ExchangeError, got %v", err)
	assert.Equal(t, 0, exErr.StatusCode)
}

func TestExecuteMarketOrder_CredentialError(t *testing.T) {
	client := newTestCoinbaseClient("http://127.0.0.1:0", security.StaticProvider{}, time.Second)
	_, err := client.ExecuteMarketOrder(context.Background(), "BTC-USD", model.SideBuy, decimal.NewFromInt(1))
	assert.Equal(t, errs.CodeCredential, errs.Code(err))
}

func TestExecuteMarketOrder_SignatureError(t *testing.T) {
	client := newTestCoinbaseClient("http://127.0.0.1:0", testCreds, time.Second)
	client.signer = ECDSASigner{}

	_, err := client.ExecuteMarketOrder(context.Background(), "BTC-USD", model.SideBuy, decimal.NewFromInt(1))
	assert.Equal(t, errs.CodeSignature, errs.Code(err))
}

func TestTestConnection(t *testing.T) {
	var status int32 = http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/brokerage/products" || r.URL.Query().Get("limit") != "1" {
			t.Errorf("unexpected probe %s", r.URL.String())
		}
		if r.Header.Get("CB-ACCESS-SIGNATURE") == "" {
			t.Errorf("probe is not signed")
		}
		w.WriteHeader(int(atomic.LoadInt32(&status)))
		_, _ = w.Write([]byte(`{"products":[]}`))
	}))
	defer server.Close()

	client := newTestCoinbaseClient(server.URL, testCreds, time.Second)
	assert.True(t, client.TestConnection(context.Background()))

	atomic.StoreInt32(&status, http.StatusForbidden)
	assert.False(t, client.TestConnection(context.Background()))

	noCreds := newTestCoinbaseClient(server.URL, security.StaticProvider{}, time.Second)
	assert.False(t, noCreds.TestConnection(context.Background()))
}

func TestNewExchange(t *testing.T) {
	ex, err := NewExchange(Config{ExchangeSimulated: true}, testCreds)
	require.NoError(t, err)
	assert.IsType(t, &PaperExchange{}, ex)

	ex, err = NewExchange(Config{CoinbaseBaseURL: "https://api.coinbase.com", SigningMode: "ecdsa"}, testCreds)
	require.NoError(t, err)
	assert.IsType(t, &CoinbaseClient{}, ex)

	_, err = NewExchange(Config{SigningMode: "nope"}, testCreds)
	assert.Error(t, err)
}

func TestPaperExchange(t *testing.T) {
	paper := NewPaperExchange()
	assert.True(t, paper.TestConnection(context.Background()))

	resp, err := paper.ExecuteMarketOrder(context.Background(), "ETH-USD", model.SideSell, decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "ETH-USD", resp.ProductID)
	assert.NotEmpty(t, resp.OrderID)

	orders := paper.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "0.5", orders[0].OrderConfiguration.MarketMarketIOC.BaseSize)
}

func TestPaperExchange_KeepsBoundedHistory(t *testing.T) {
	paper := NewPaperExchange()
	for i := 1; i <= PaperOrderHistory+5; i++ {
		_, err := paper.ExecuteMarketOrder(context.Background(), "BTC-USD", model.SideBuy, decimal.NewFromInt(int64(i)))
		require.NoError(t, err)
	}

	orders := paper.Orders()
	require.Len(t, orders, PaperOrderHistory)
	assert.Equal(t, "6", orders[0].OrderConfiguration.MarketMarketIOC.BaseSize)
	assert.Equal(t, "105", orders[len(orders)-1].OrderConfiguration.MarketMarketIOC.BaseSize)
}

func TestFailureReasonMessage(t *testing.T) {
	assert.Equal(t, "Not enough balance", FailureReasonMessage("insufficient_fund"))
	assert.Equal(t, "SOMETHING_NEW", FailureReasonMessage("SOMETHING_NEW"))
}
