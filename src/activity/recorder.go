// Package activity writes audit entries to the activity log store and mirrors
// them to the process log and live subscribers.
package activity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"

	"webhookrelay/src/errs"
	"webhookrelay/src/model"
	"webhookrelay/src/repository"
)

// Publisher receives every stored entry.
type Publisher interface {
	Publish(entry model.ActivityLog)
}

// Recorder is the single write path into the activity log.
type Recorder struct {
	store repository.ActivityLogStore
	pub   Publisher
	log   *logger.Entry
	now   func() time.Time
}

// NewRecorder builds a recorder. pub may be nil.
func NewRecorder(store repository.ActivityLogStore, pub Publisher) *Recorder {
	return &Recorder{
		store: store,
		pub:   pub,
		log:   logger.WithField("component", "activity"),
		now:   time.Now,
	}
}

// Webhook records an inbound webhook before it is validated. details is stored as-is
// when it is a string or raw bytes.
func (r *Recorder) Webhook(ctx context.Context, message string, details any, ip string) (*model.ActivityLog, error) {
	r.log.WithField("ip", ip).Infof("[WEBHOOK] %s", message)
	return r.append(ctx, &model.ActivityLog{
		Type:      model.LogTypeWebhook,
		Message:   message,
		Details:   encodeDetails(details),
		IPAddress: ip,
	})
}

func (r *Recorder) BuyOrder(ctx context.Context, message, orderID string, orderData any) (*model.ActivityLog, error) {
	return r.order(ctx, model.LogTypeBuyOrder, "[BUY ORDER]", message, orderID, orderData)
}

func (r *Recorder) SellOrder(ctx context.Context, message, orderID string, orderData any) (*model.ActivityLog, error) {
	return r.order(ctx, model.LogTypeSellOrder, "[SELL ORDER]", message, orderID, orderData)
}

func (r *Recorder) order(ctx context.Context, logType, tag, message, orderID string, orderData any) (*model.ActivityLog, error) {
	r.log.WithField("order_id", orderID).Infof("%s %s", tag, message)
	return r.append(ctx, &model.ActivityLog{
		Type:      logType,
		Message:   message,
		Details:   message,
		OrderID:   orderID,
		OrderData: encodeDetails(orderData),
	})
}

// Error records a failure. When code is empty it is derived from err.
func (r *Recorder) Error(ctx context.Context, message string, err error, code string) (*model.ActivityLog, error) {
	if code == "" {
		code = errs.Code(err)
	}
	r.log.WithError(err).WithField("error_code", code).Errorf("[ERROR] %s", message)
	return r.append(ctx, &model.ActivityLog{
		Type:      model.LogTypeError,
		Message:   message,
		Details:   encodeDetails(errorDetails(err)),
		ErrorCode: code,
	})
}

// System records an informational event. details may be nil.
func (r *Recorder) System(ctx context.Context, message string, details any) (*model.ActivityLog, error) {
	r.log.Infof("[SYSTEM] %s", message)
	return r.append(ctx, &model.ActivityLog{
		Type:    model.LogTypeSystem,
		Message: message,
		Details: encodeDetails(details),
	})
}

func (r *Recorder) append(ctx context.Context, entry *model.ActivityLog) (*model.ActivityLog, error) {
	entry.Timestamp = r.now().UTC()

	stored, err := r.store.Append(ctx, entry)
	if err != nil {
		r.log.WithError(err).WithField("type", entry.Type).Error("Failed to store activity log entry")
		return nil, err
	}

	if r.pub != nil {
		r.pub.Publish(*stored)
	}
	return stored, nil
}

func encodeDetails(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return d
	case []byte:
		return string(d)
	case json.RawMessage:
		return string(d)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func errorDetails(err error) map[string]any {
	if err == nil {
		return nil
	}

	details := map[string]any{"error": err.Error()}

	var exErr *errs.ExchangeError
	if errors.As(err, &exErr) {
		if exErr.StatusCode != 0 {
			details["status"] = exErr.StatusCode
		}
		if exErr.Reason != "" {
			details["reason"] = exErr.Reason
		}
		if exErr.Body != "" {
			details["body"] = exErr.Body
		}
	}

	var vErr *errs.ValidationError
	if errors.As(err, &vErr) && vErr.Field != "" {
		details["field"] = vErr.Field
	}
	return details
}
