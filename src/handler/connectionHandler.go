package handler

import (
	"context"
	"errors"
	"net/http"

	"webhookrelay/src/errs"
)

type connectionTester interface {
	TestConnection(ctx context.Context) bool
}

var errConnectionFailed = errors.New("connection failed")

// TestConnectionHandler probes the exchange with a signed read-only request.
func TestConnectionHandler(exchange connectionTester, rec activityRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !exchange.TestConnection(r.Context()) {
			_, _ = rec.Error(r.Context(), "Coinbase API connection test failed", errConnectionFailed, errs.CodeExchange)
			writeFailure(w, http.StatusInternalServerError, "Failed to connect to Coinbase API", nil)
			return
		}

		_, _ = rec.System(r.Context(), "Coinbase API connection test successful", nil)
		writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Connected to Coinbase API successfully"})
	}
}
