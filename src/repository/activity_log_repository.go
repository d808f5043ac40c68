package repository

import (
	"context"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"webhookrelay/src/errs"
	"webhookrelay/src/model"
)

// DefaultActivityLogLimit is used when Query is called with limit <= 0.
const DefaultActivityLogLimit = 100

// ActivityLogStore is the append-only audit trail. Query results are newest first.
type ActivityLogStore interface {
	Append(ctx context.Context, entry *model.ActivityLog) (*model.ActivityLog, error)
	Query(ctx context.Context, limit int, typeFilter string) ([]model.ActivityLog, error)
	Clear(ctx context.Context) error
}

// ---------------------------------------------------
// In-memory store
// ---------------------------------------------------

// MemoryActivityLogRepository keeps entries in insertion order. Appends are
// serialised so ids are strictly increasing.
type MemoryActivityLogRepository struct {
	mu      sync.RWMutex
	entries []model.ActivityLog
	nextID  uint
	now     func() time.Time
}

func NewMemoryActivityLogRepository() *MemoryActivityLogRepository {
	return &MemoryActivityLogRepository{now: time.Now}
}

func (r *MemoryActivityLogRepository) Append(_ context.Context, entry *model.ActivityLog) (*model.ActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := *entry
	stored.ID = r.nextID
	stored.CreatedAt = r.now().UTC()
	if stored.Timestamp.IsZero() {
		stored.Timestamp = stored.CreatedAt
	}
	r.entries = append(r.entries, stored)

	return &stored, nil
}

func (r *MemoryActivityLogRepository) Query(_ context.Context, limit int, typeFilter string) ([]model.ActivityLog, error) {
	if limit <= 0 {
		limit = DefaultActivityLogLimit
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.ActivityLog, 0, min(limit, len(r.entries)))
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if typeFilter != "" && r.entries[i].Type != typeFilter {
			continue
		}
		out = append(out, r.entries[i])
	}
	return out, nil
}

func (r *MemoryActivityLogRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
	return nil
}

// ---------------------------------------------------
// Gorm store
// ---------------------------------------------------

// GormActivityLogRepository persists entries in the activity_logs table.
type GormActivityLogRepository struct {
	db *gorm.DB
}

func NewGormActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	logger.WithField("component", "GormActivityLogRepository").Debug("Creating activity log repository")
	return &GormActivityLogRepository{db: db}
}

func (r *GormActivityLogRepository) Append(ctx context.Context, entry *model.ActivityLog) (*model.ActivityLog, error) {
	stored := *entry
	stored.ID = 0
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now().UTC()
	}

	if err := r.db.WithContext(ctx).Create(&stored).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "GormActivityLogRepository",
			"op":   "Append",
			"type": entry.Type,
		}).WithError(err).Error("Failed to append activity log")

		return nil, &errs.PersistenceError{Op: "append activity log", Err: err}
	}

	return &stored, nil
}

func (r *GormActivityLogRepository) Query(ctx context.Context, limit int, typeFilter string) ([]model.ActivityLog, error) {
	if limit <= 0 {
		limit = DefaultActivityLogLimit
	}

	query := r.db.WithContext(ctx).Model(&model.ActivityLog{})
	if typeFilter != "" {
		query = query.Where("type = ?", typeFilter)
	}

	var out []model.ActivityLog
	if err := query.Order("id DESC").Limit(limit).Find(&out).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":  "GormActivityLogRepository",
			"op":    "Query",
			"limit": limit,
			"type":  typeFilter,
		}).WithError(err).Error("Failed to query activity logs")

		return nil, &errs.PersistenceError{Op: "query activity logs", Err: err}
	}

	return out, nil
}

func (r *GormActivityLogRepository) Clear(ctx context.Context) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.ActivityLog{}).Error
	if err != nil {
		return &errs.PersistenceError{Op: "clear activity logs", Err: err}
	}

	logger.WithField("repo", "GormActivityLogRepository").Info("Activity logs cleared")
	return nil
}
