package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("INFO"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("Warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestManager_SetupWritesToFile(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager()
	m.Setup(&buf, "info", nil, nil)

	m.Logger().Info("touchdown", "speed", 61.2)

	out := buf.String()
	assert.Contains(t, out, "touchdown")
	assert.Contains(t, out, "speed=61.2")
}

func TestManager_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager()
	m.Setup(&buf, "warn", nil, nil)

	m.Logger().Info("not logged")
	m.Logger().Warn("logged")

	out := buf.String()
	assert.NotContains(t, out, "not logged")
	assert.Contains(t, out, "logged")
}

func TestManager_ContextProviderInjectsAttrs(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager()
	m.Setup(&buf, "info", nil, func() []slog.Attr {
		return []slog.Attr{slog.Uint64("tick", 42)}
	})

	m.Logger().Info("stepped")

	assert.Contains(t, buf.String(), "tick=42")
}

func TestManager_LoggerBeforeSetup(t *testing.T) {
	m := NewManager()
	require.NotNil(t, m.Logger())
}

func TestManager_FlushWithoutProvider(t *testing.T) {
	m := NewManager()
	assert.NoError(t, m.Flush(context.Background()))
}

func TestMultiHandler_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		nil,
		slog.NewTextHandler(&b, nil),
	)
	logger := slog.New(h)

	logger.Info("fan out")

	assert.Contains(t, a.String(), "fan out")
	assert.Contains(t, b.String(), "fan out")
}

func TestMultiHandler_RespectsPerHandlerLevels(t *testing.T) {
	var debugBuf, errorBuf bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h)

	logger.Debug("only debug sink")

	assert.Contains(t, debugBuf.String(), "only debug sink")
	assert.Empty(t, errorBuf.String())
}

func TestLogFilePath(t *testing.T) {
	start := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	p := LogFilePath("logs", "flightsim", start)

	assert.True(t, strings.HasSuffix(p, "flightsim.20260314_150926.log"), p)
}
