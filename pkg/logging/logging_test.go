package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("warn", "text", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "dataset", "FC")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "dataset=FC")
}

func TestWithRunAddsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := WithRun(NewLogger("info", "json", &buf), "classify")
	logger.Info("done")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "classify", rec["command"])
	_, err := uuid.Parse(rec["run_id"].(string))
	assert.NoError(t, err)
}

func TestOpenFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "trafo.log")
	w, err := OpenFile(path)
	require.NoError(t, err)

	NewLogger("info", "text", w).Info("written", "dataset", "HI")
	require.NoError(t, w.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "dataset=HI")
}
