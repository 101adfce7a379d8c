package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/dungeon-guardian/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "guardian"}, zapcore.AddSync(&buf))
	logger.Debug("Plan found", zap.Int("cost", 3))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "guardian", entry["logger"])
	assert.Equal(t, "Plan found", entry["msg"])
	assert.EqualValues(t, 3, entry["cost"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggerConfig{Level: "warn", Format: "console"}, zapcore.AddSync(&buf))
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggerConfig{Level: "chatty", Format: "json"}, zapcore.AddSync(&buf))
	logger.Debug("hidden")
	logger.Info("shown")
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guardian.log")
	var console bytes.Buffer
	logger := NewLogger(config.LoggerConfig{Level: "info", Format: "console", LogFile: path, MaxSize: 1}, zapcore.AddSync(&console))
	logger.Info("Simulation started", zap.String("run_id", "abc"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id":"abc"`)
	assert.Contains(t, console.String(), "Simulation started")
}
