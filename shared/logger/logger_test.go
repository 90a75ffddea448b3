package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestComponentJSON(t *testing.T) {
	defer Initialize("info", false)

	var buf bytes.Buffer
	InitializeWriter(&buf, "debug", true)
	Component("likes").Debug("toggled", "thread_id", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "toggled", entry["msg"])
	assert.Equal(t, "likes", entry["component"])
	assert.EqualValues(t, 42, entry["thread_id"])
}

func TestLevelFiltersOutput(t *testing.T) {
	defer Initialize("info", false)

	var buf bytes.Buffer
	InitializeWriter(&buf, "warn", false)
	Log.Info("hidden")
	assert.Empty(t, buf.String())

	Log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
