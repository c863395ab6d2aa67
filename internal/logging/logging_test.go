package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewText(t *testing.T) {
	restoreDefault(t)
	var buf bytes.Buffer
	logger := New(Options{Level: "warn"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "word", "사과")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "word=사과")
	assert.Same(t, logger, slog.Default())
}

func TestNewJSON(t *testing.T) {
	restoreDefault(t)
	var buf bytes.Buffer
	New(Options{Level: "debug", Format: "JSON"}, &buf).Debug("rated", "rating", 4)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "rated", entry["msg"])
	assert.Equal(t, float64(4), entry["rating"])
}

func TestOpenFile(t *testing.T) {
	restoreDefault(t)
	path := filepath.Join(t.TempDir(), "logs", "hancards.log")
	logger, f, err := OpenFile(Options{}, path)
	require.NoError(t, err)
	logger.Info("session started")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "session started"))
}
