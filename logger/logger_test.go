package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"info", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestJSONFormatWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug", "json")

	l.Info("binary resolved", "path", "build/bin/llama-cli", "threads", 4)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "binary resolved", entry["message"])
	assert.Equal(t, "build/bin/llama-cli", entry["path"])
	assert.EqualValues(t, 4, entry["threads"])
}

func TestLevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", "json")

	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestOddArgsDropsTrailingKey(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "json")

	l.Error("odd", "key1", "value1", "dangling")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "value1", entry["key1"])
	assert.NotContains(t, entry, "dangling")
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "console")

	l.Info("console message", "k", "v")
	assert.Contains(t, buf.String(), "console message")
}

func TestSetupReplacesGlobal(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	Setup("debug", "json")
	require.NotNil(t, Log)
	assert.NotSame(t, prev, Log)
}
