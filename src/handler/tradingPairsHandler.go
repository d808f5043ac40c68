package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"webhookrelay/src/model"
)

type tradingPairStore interface {
	ListTradingPairs(ctx context.Context) ([]model.TradingPair, error)
	GetTradingPair(ctx context.Context, symbol string) (*model.TradingPair, error)
	CreateTradingPair(ctx context.Context, in model.TradingPairInput) (*model.TradingPair, error)
	UpdateTradingPair(ctx context.Context, symbol string, patch model.TradingPairPatch) (*model.TradingPair, error)
	DeleteTradingPair(ctx context.Context, symbol string) error
}

func ListTradingPairsHandler(store tradingPairStore, rec activityRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pairs, err := store.ListTradingPairs(r.Context())
		if err != nil {
			_, _ = rec.Error(r.Context(), "Failed to get trading pairs", err, "")
			writeFailure(w, http.StatusInternalServerError, "Failed to get trading pairs", err)
			return
		}
		if pairs == nil {
			pairs = []model.TradingPair{}
		}
		writeJSON(w, http.StatusOK, pairs)
	}
}

func GetTradingPairHandler(store tradingPairStore, rec activityRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := chi.URLParam(r, "symbol")

		pair, err := store.GetTradingPair(r.Context(), symbol)
		if err != nil {
			pairFailure(w, r, rec, err, symbol, "Failed to get trading pair")
			return
		}
		writeJSON(w, http.StatusOK, pair)
	}
}

func CreateTradingPairHandler(store tradingPairStore, rec activityRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in model.TradingPairInput
		if err := decodeJSON(w, r, &in); err != nil {
			pairFailure(w, r, rec, err, "", "Failed to create trading pair")
			return
		}

		pair, err := store.CreateTradingPair(r.Context(), in)
		if err != nil {
			pairFailure(w, r, rec, err, in.Symbol, "Failed to create trading pair")
			return
		}

		_, _ = rec.System(r.Context(), fmt.Sprintf("Created new trading pair: %s", pair.Symbol), nil)
		writeJSON(w, http.StatusCreated, pair)
	}
}

func UpdateTradingPairHandler(store tradingPairStore, rec activityRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := chi.URLParam(r, "symbol")

		var patch model.TradingPairPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			pairFailure(w, r, rec, err, symbol, "Failed to update trading pair")
			return
		}

		pair, err := store.UpdateTradingPair(r.Context(), symbol, patch)
		if err != nil {
			pairFailure(w, r, rec, err, symbol, "Failed to update trading pair")
			return
		}

		_, _ = rec.System(r.Context(), fmt.Sprintf("Updated trading pair: %s", pair.Symbol), nil)
		writeJSON(w, http.StatusOK, pair)
	}
}

func DeleteTradingPairHandler(store tradingPairStore, rec activityRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := chi.URLParam(r, "symbol")

		if err := store.DeleteTradingPair(r.Context(), symbol); err != nil {
			pairFailure(w, r, rec, err, symbol, "Failed to delete trading pair")
			return
		}

		_, _ = rec.System(r.Context(), fmt.Sprintf("Deleted trading pair: %s", symbol), nil)
		writeJSON(w, http.StatusOK, successResponse{Success: true, Message: fmt.Sprintf("Trading pair %s deleted", symbol)})
	}
}

// pairFailure records an error entry and answers with the status the error maps to.
func pairFailure(w http.ResponseWriter, r *http.Request, rec activityRecorder, err error, symbol, message string) {
	logMessage := message
	if symbol != "" {
		logMessage = fmt.Sprintf("%s %s", message, symbol)
	}
	_, _ = rec.Error(r.Context(), logMessage, err, "")

	switch status := statusFor(err); status {
	case http.StatusNotFound:
		writeFailure(w, status, fmt.Sprintf("Trading pair %s not found", symbol), nil)
	case http.StatusConflict:
		writeFailure(w, status, fmt.Sprintf("Trading pair %s already exists", symbol), nil)
	case http.StatusBadRequest:
		writeFailure(w, status, "Invalid trading pair", err)
	default:
		writeFailure(w, status, message, err)
	}
}
