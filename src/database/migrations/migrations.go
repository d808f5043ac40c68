package migrations

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DataMigration is one row per data migration that has been applied.
type DataMigration struct {
	ID        string    `gorm:"primaryKey;size:200;column:id"`
	AppliedAt time.Time `gorm:"not null;column:applied_at"`
}

func (DataMigration) TableName() string { return "data_migrations" }

// step is a data migration. IDs are stable and applied in slice order.
type step struct {
	id    string
	apply func(*gorm.DB) error
}

var steps = []step{
	{id: "00001_seed_default_configuration", apply: seedDefaultConfiguration},
	{id: "00002_seed_default_trading_pairs", apply: seedDefaultTradingPairs},
}

// Run applies every pending data migration. Schema changes belong to AutoMigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	for _, s := range steps {
		if err := RunOnce(db, s.id, s.apply); err != nil {
			return err
		}
	}
	return nil
}

// RunOnce applies fn inside a transaction unless migrationID is already recorded.
// The marker row is written in the same transaction, so a failed fn leaves no trace.
func RunOnce(db *gorm.DB, migrationID string, fn func(*gorm.DB) error) error {
	switch {
	case db == nil:
		return nil
	case migrationID == "":
		return errors.New("data migration without id")
	case fn == nil:
		return fmt.Errorf("data migration %s: nothing to apply", migrationID)
	}

	if err := db.AutoMigrate(&DataMigration{}); err != nil {
		return fmt.Errorf("create data_migrations: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var done int64
		if err := tx.Model(&DataMigration{}).Where("id = ?", migrationID).Count(&done).Error; err != nil {
			return fmt.Errorf("data migration %s: lookup: %w", migrationID, err)
		}
		if done > 0 {
			return nil
		}

		if err := fn(tx); err != nil {
			return fmt.Errorf("data migration %s: %w", migrationID, err)
		}
		return tx.Create(&DataMigration{ID: migrationID, AppliedAt: time.Now().UTC()}).Error
	})
}
