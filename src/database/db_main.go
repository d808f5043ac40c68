package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"webhookrelay/src/database/migrations"
	"webhookrelay/src/model"
)

// Open connects to the database selected by cfg.StorageDriver and migrates it.
// It returns a nil *gorm.DB for the memory driver.
func Open(cfg Config) (*gorm.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.StorageDriver))

	var dialector gorm.Dialector
	switch driver {
	case "", DriverMemory:
		logrus.Info("[database] using in-memory stores")
		return nil, nil
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseURL)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.LogLevel(cfg.GormLogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == DriverPostgres {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql.DB from gorm: %w", err)
		}
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(1 * time.Hour)
	}

	logrus.WithField("driver", driver).Info("[database] connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the relay tables and runs the data migrations.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.ActivityLog{},
		&model.Configuration{},
		&model.TradingPair{},
		&migrations.DataMigration{},
	); err != nil {
		return fmt.Errorf("failed to run schema migrations: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("failed to run data migrations: %w", err)
	}

	logrus.Info("[database] migrations completed")
	return nil
}
