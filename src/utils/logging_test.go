package utils

import (
	"os"
	"path/filepath"
	"testing"

	logger "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger_LevelAndFormat(t *testing.T) {
	defer logger.SetOutput(os.Stderr)

	SetupLogger(LogConfig{Level: "WARN", Format: "json"})
	assert.Equal(t, logger.WarnLevel, logger.GetLevel())
	_, isJSON := logger.StandardLogger().Formatter.(*logger.JSONFormatter)
	assert.True(t, isJSON)

	SetupLogger(LogConfig{Level: "nonsense"})
	assert.Equal(t, logger.DebugLevel, logger.GetLevel())
	_, isText := logger.StandardLogger().Formatter.(*logger.TextFormatter)
	assert.True(t, isText)
}

func TestSetupLogger_WritesRotatedFile(t *testing.T) {
	defer logger.SetOutput(os.Stderr)

	path := filepath.Join(t.TempDir(), "logs", "relay.log")
	SetupLogger(LogConfig{Level: "info", File: path, MaxSizeMB: 1})

	logger.Info("hello file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(file, []byte("RELAY_TEST_FROM_FILE=yes\nRELAY_TEST_PRESET=file\n"), 0o600))

	t.Setenv("RELAY_TEST_PRESET", "env")
	t.Setenv("RELAY_TEST_FROM_FILE", "")
	require.NoError(t, os.Unsetenv("RELAY_TEST_FROM_FILE"))

	LoadEnv(file, filepath.Join(dir, "missing.env"))

	assert.Equal(t, "yes", os.Getenv("RELAY_TEST_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("RELAY_TEST_PRESET"))
}
