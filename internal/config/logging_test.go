package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestLoggerFansOut(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := NewTestLogger(&stderr, &file, slog.LevelInfo)

	logger.Info("persona saved", "username", "kojied")

	assert.Contains(t, stderr.String(), "persona saved")
	assert.Contains(t, stderr.String(), "username=kojied")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(file.String())), &entry))
	assert.Equal(t, "persona saved", entry["msg"])
	assert.Equal(t, "kojied", entry["username"])
}

func TestNewTestLoggerLevelFilter(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := NewTestLogger(&stderr, &file, slog.LevelWarn)

	logger.Debug("noisy detail")
	logger.Info("routine info")

	assert.Empty(t, stderr.String())
	assert.Empty(t, file.String())
}

func TestSetupLoggerWritesFile(t *testing.T) {
	cfg := Config{
		LogFile:  filepath.Join(t.TempDir(), "test.log"),
		LogLevel: slog.LevelInfo,
	}

	logger, cleanup := SetupLogger(cfg)
	logger.Info("hello")
	require.NoError(t, cleanup())
}
