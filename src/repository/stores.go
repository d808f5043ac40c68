package repository

import (
	"time"

	"gorm.io/gorm"

	"webhookrelay/src/model"
)

// NewStores returns gorm backed stores for db, or seeded in-memory stores when db is nil.
func NewStores(db *gorm.DB) (ActivityLogStore, ConfigurationStore) {
	if db == nil {
		return NewMemoryActivityLogRepository(),
			NewMemoryConfigurationRepository(model.DefaultTradingPairs(time.Now().UTC()))
	}
	return NewGormActivityLogRepository(db), NewGormConfigurationRepository(db)
}
