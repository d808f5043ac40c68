package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	logger "github.com/sirupsen/logrus"

	"webhookrelay/src/errs"
	"webhookrelay/src/model"
)

const maxBodyBytes = 1 << 20

// activityRecorder is the part of activity.Recorder the handlers write to.
type activityRecorder interface {
	System(ctx context.Context, message string, details any) (*model.ActivityLog, error)
	Error(ctx context.Context, message string, err error, code string) (*model.ActivityLog, error)
}

type failureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

func writeFailure(w http.ResponseWriter, status int, message string, err error) {
	resp := failureResponse{Message: message}
	if err != nil && status < http.StatusInternalServerError {
		resp.Error = err.Error()
	}
	writeJSON(w, status, resp)
}

// statusFor maps a store or validation error to an HTTP status.
func statusFor(err error) int {
	var vErr *errs.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into v. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return errs.NewValidationError("", "request body is empty")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &errs.ValidationError{Message: "invalid JSON: " + err.Error(), Err: err}
	}
	return nil
}

// readBody returns whatever was read alongside a read error.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return body, &errs.ValidationError{Message: "could not read request body", Err: err}
	}
	return body, nil
}

// clientIP prefers the first X-Forwarded-For hop over the socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
