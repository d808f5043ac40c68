package handler

import (
	"context"
	"net/http"

	"webhookrelay/src/strategy"
)

type webhookExecutor interface {
	HandleWebhook(ctx context.Context, raw []byte, ip string) strategy.WebhookResult
	RejectUnreadable(ctx context.Context, partial []byte, ip string, readErr error) strategy.WebhookResult
}

// WebhookHandler passes the raw body to the executor and writes its result.
func WebhookHandler(executor webhookExecutor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if err != nil {
			res := executor.RejectUnreadable(r.Context(), body, clientIP(r), err)
			writeJSON(w, res.StatusCode, res.Response)
			return
		}

		res := executor.HandleWebhook(r.Context(), body, clientIP(r))
		writeJSON(w, res.StatusCode, res.Response)
	}
}
