package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"debug"`
	Format     string `envconfig:"LOG_FORMAT" default:"text"`
	File       string `envconfig:"LOG_FILE"`
	MaxSizeMB  int    `envconfig:"LOG_FILE_MAX_SIZE_MB" default:"50"`
	MaxBackups int    `envconfig:"LOG_FILE_MAX_BACKUPS" default:"5"`
	MaxAgeDays int    `envconfig:"LOG_FILE_MAX_AGE_DAYS" default:"14"`
}

func GetLogConfig() LogConfig {
	var config LogConfig
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// LoadEnv reads .env files into the process environment. Missing files are ignored
// and variables that are already set win.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			logger.WithError(err).WithField("file", f).Warn("Failed to load env file")
		}
	}
}

// SetupLogger configures the global logrus logger. Unknown levels fall back to debug.
func SetupLogger(cfg LogConfig) {
	level, err := logger.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logger.DebugLevel // fallback seguro
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logger.JSONFormatter{})
	} else {
		logger.SetFormatter(&logger.TextFormatter{
			FullTimestamp: true,
		})
	}

	logger.SetOutput(logWriter(cfg))
}

func logWriter(cfg LogConfig) io.Writer {
	if cfg.File == "" {
		return os.Stdout
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		logger.WithError(err).WithField("file", cfg.File).Warn("Cannot create log directory, logging to stdout only")
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	})
}
