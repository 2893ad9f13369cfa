package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"parking/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parking.log")

	log, sync, err := logger.New(logger.Config{Level: "debug", Format: "json", OutputFile: path})
	require.NoError(t, err)

	log.Debug("unit committed", "transaction_id", "tx-1")
	require.NoError(t, sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"unit committed"`)
	assert.Contains(t, string(data), `"transaction_id":"tx-1"`)
	assert.Contains(t, string(data), `"service":"parking"`)
}

func TestNew_LevelFiltersRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parking.log")

	log, sync, err := logger.New(logger.Config{Level: "warn", OutputFile: path})
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept")
	require.NoError(t, sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestNew_InvalidLevelDefaultsToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parking.log")

	log, sync, err := logger.New(logger.Config{Level: "loud", OutputFile: path})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("shown")
	require.NoError(t, sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNew_UnwritableFileFails(t *testing.T) {
	_, _, err := logger.New(logger.Config{OutputFile: filepath.Join(t.TempDir(), "missing", "x.log")})
	require.Error(t, err)
}
