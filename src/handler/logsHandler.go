package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"webhookrelay/src/errs"
	"webhookrelay/src/model"
)

// DefaultLogsLimit is used when GET /logs has no limit.
const DefaultLogsLimit = 20

type logStore interface {
	Query(ctx context.Context, limit int, typeFilter string) ([]model.ActivityLog, error)
	Clear(ctx context.Context) error
}

// ListLogsHandler returns the newest entries, optionally filtered by ?type=.
func ListLogsHandler(store logStore, rec activityRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := DefaultLogsLimit
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			parsed, err := strconv.Atoi(limitParam)
			if err != nil || parsed <= 0 {
				vErr := errs.NewValidationError("limit", "must be a positive integer")
				_, _ = rec.Error(r.Context(), "Invalid activity log query", vErr, "")
				writeFailure(w, http.StatusBadRequest, "invalid limit", vErr)
				return
			}
			limit = parsed
		}

		logType := r.URL.Query().Get("type")
		if logType != "" && !model.IsValidLogType(logType) {
			vErr := errs.NewValidationError("type", fmt.Sprintf("unknown log type %q", logType))
			_, _ = rec.Error(r.Context(), "Invalid activity log query", vErr, "")
			writeFailure(w, http.StatusBadRequest, "invalid type", vErr)
			return
		}

		logs, err := store.Query(r.Context(), limit, logType)
		if err != nil {
			_, _ = rec.Error(r.Context(), "Error fetching activity logs", err, "")
			writeFailure(w, http.StatusInternalServerError, "Failed to fetch activity logs", err)
			return
		}
		if logs == nil {
			logs = []model.ActivityLog{}
		}
		writeJSON(w, http.StatusOK, logs)
	}
}

// ClearLogsHandler deletes every entry and then records that it did so.
func ClearLogsHandler(store logStore, rec activityRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Clear(r.Context()); err != nil {
			_, _ = rec.Error(r.Context(), "Error clearing activity logs", err, "")
			writeFailure(w, http.StatusInternalServerError, "Failed to clear activity logs", err)
			return
		}

		_, _ = rec.System(r.Context(), "Activity logs cleared", nil)
		writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Activity logs cleared successfully"})
	}
}

type logStreamer interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

// StreamLogsHandler upgrades to a websocket carrying every new entry.
func StreamLogsHandler(hub logStreamer) http.HandlerFunc {
	return hub.ServeWS
}
