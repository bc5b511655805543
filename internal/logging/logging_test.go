package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestNew_JSONToFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "app.log")

	logger, closer, err := New(&buf, Options{Level: "info", Format: "json", File: file})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("Service: order placed", "order_id", "ord-1")
	require.NoError(t, closer.Close())

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "Service: order placed", line["msg"])
	assert.Equal(t, "ord-1", line["order_id"])
	assert.Equal(t, "petsupplies", line["service"])

	onDisk, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(onDisk), "ord-1")
	assert.NotContains(t, string(onDisk), "hidden")
}
