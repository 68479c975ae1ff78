package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewDefaultsToInfoOnUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("not-a-level", &buf)

	log.Debug().Msg("dropped")
	assert.Zero(t, buf.Len())

	log.Info().Msg("kept")
	entry := decodeLine(t, &buf)
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestZeroLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.Error().
		Err(errors.New("boom")).
		Str("category", "booking").
		Int("status_code", 500).
		Int64("elapsed_ms", 42).
		Dur("timeout", 2*time.Second).
		Msg("booking.failed")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "booking.failed", entry["message"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "booking", entry["category"])
	assert.EqualValues(t, 500, entry["status_code"])
	assert.EqualValues(t, 42, entry["elapsed_ms"])
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf).WithFields(map[string]any{"service": "courier"})

	log.Info().Msg("ready")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "courier", entry["service"])
}

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	log := NewNoop()

	log.Debug().Msg("a")
	log.Info().Msgf("b %d", 1)
	log.Warn().Str("k", "v").Msg("c")
	log.Error().
		Err(errors.New("x")).
		Int("i", 1).
		Int64("j", 2).
		Dur("d", time.Second).
		Interface("any", struct{}{}).
		Bytes("b", []byte("payload")).
		Msg("d")
	assert.NotNil(t, log.WithFields(map[string]any{"k": "v"}))
}
