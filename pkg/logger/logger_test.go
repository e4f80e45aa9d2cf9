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
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNew_JSONWithServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Service: "bookings"})

	log.Component("sessions").Info("Session opened", "session_id", "s-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "bookings", entry[SERVICE])
	assert.Equal(t, "sessions", entry[COMPONENT])
	assert.Equal(t, "s-1", entry["session_id"])
	assert.Equal(t, "Session opened", entry["msg"])
}

func TestNew_LevelFiltersAndTextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Level: WARN, Format: TEXT})

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("Lock busy", "room", "Room 01")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), `room="Room 01"`)
}
