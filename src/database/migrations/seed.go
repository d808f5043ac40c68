package migrations

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"webhookrelay/src/model"
)

// seedDefaultConfiguration installs the configuration singleton unless one exists.
func seedDefaultConfiguration(db *gorm.DB) error {
	cfg := model.DefaultConfiguration(time.Now().UTC())
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&cfg).Error
}

// seedDefaultTradingPairs installs the starter pairs, skipping symbols already present.
func seedDefaultTradingPairs(db *gorm.DB) error {
	pairs := model.DefaultTradingPairs(time.Now().UTC())
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoNothing: true,
	}).Create(&pairs).Error
}
