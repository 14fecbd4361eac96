package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laropanostra/shopapp/logging"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel(" WARNING "))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("nonsense"))
}

func TestNewHandler_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewHandler(&buf, "prod", "info"))

	logger.Info("stored procedure failed", "procedure", "[venta].[SEL_VENTAS_SP]")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Contains(t, entry, "ts")
	assert.NotContains(t, entry, "time")
	assert.Equal(t, "[venta].[SEL_VENTAS_SP]", entry["procedure"])
}

func TestNewHandler_Levels(t *testing.T) {
	h := logging.NewHandler(&bytes.Buffer{}, "prod", "")
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))

	h = logging.NewHandler(&bytes.Buffer{}, "dev", "")
	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))

	h = logging.NewHandler(&bytes.Buffer{}, "dev", "error")
	assert.False(t, h.Enabled(context.Background(), slog.LevelWarn))
}
