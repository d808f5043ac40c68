package database

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"memory"`
	// postgres DSN/URL, or sqlite file path
	DatabaseURL  string `envconfig:"DATABASE_URL" default:"webhookrelay.db"`
	GormLogLevel int    `envconfig:"GORM_LOG_LEVEL" default:"2"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
