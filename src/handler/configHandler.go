package handler

import (
	"context"
	"net/http"

	"webhookrelay/src/model"
)

type configStore interface {
	Get(ctx context.Context) (*model.Configuration, error)
	Update(ctx context.Context, patch model.ConfigurationPatch) (*model.Configuration, error)
}

// GetConfigHandler returns the global configuration.
func GetConfigHandler(store configStore, rec activityRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := store.Get(r.Context())
		if err != nil {
			_, _ = rec.Error(r.Context(), "Error fetching configuration", err, "")
			writeFailure(w, http.StatusInternalServerError, "Failed to fetch configuration", err)
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}

// UpdateConfigHandler merges the posted fields onto the configuration.
func UpdateConfigHandler(store configStore, rec activityRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch model.ConfigurationPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			_, _ = rec.Error(r.Context(), "Invalid configuration update", err, "")
			writeFailure(w, http.StatusBadRequest, "Invalid configuration", err)
			return
		}

		cfg, err := store.Update(r.Context(), patch)
		if err != nil {
			status := statusFor(err)
			if status == http.StatusBadRequest {
				_, _ = rec.Error(r.Context(), "Invalid configuration update", err, "")
				writeFailure(w, status, "Invalid configuration", err)
				return
			}
			_, _ = rec.Error(r.Context(), "Error updating configuration", err, "")
			writeFailure(w, status, "Failed to update configuration", err)
			return
		}

		_, _ = rec.System(r.Context(), "Configuration updated", cfg)
		writeJSON(w, http.StatusOK, cfg)
	}
}

// GetStrategyHandler returns the strategy subset of the configuration.
func GetStrategyHandler(store configStore, rec activityRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := store.Get(r.Context())
		if err != nil {
			_, _ = rec.Error(r.Context(), "Failed to get strategy configuration", err, "")
			writeFailure(w, http.StatusInternalServerError, "Failed to get strategy configuration", err)
			return
		}
		writeJSON(w, http.StatusOK, cfg.Strategy())
	}
}

// UpdateStrategyHandler accepts only strategy fields. Anything else in the body is ignored.
func UpdateStrategyHandler(store configStore, rec activityRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch model.StrategyPatch
		err := decodeJSON(w, r, &patch)
		if err == nil {
			err = patch.Validate()
		}
		if err != nil {
			_, _ = rec.Error(r.Context(), "Invalid strategy configuration", err, "")
			writeFailure(w, http.StatusBadRequest, "Invalid strategy configuration", err)
			return
		}

		cfg, err := store.Update(r.Context(), model.ConfigurationPatch{StrategyPatch: patch})
		if err != nil {
			_, _ = rec.Error(r.Context(), "Failed to update strategy configuration", err, "")
			writeFailure(w, statusFor(err), "Failed to update strategy configuration", err)
			return
		}

		_, _ = rec.System(r.Context(), "Updated strategy configuration", nil)
		writeJSON(w, http.StatusOK, cfg.Strategy())
	}
}
