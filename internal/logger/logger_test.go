package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug", "json")
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())

	log.Info().Str("hospital", "st-mary").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "st-mary", line["hospital"])
	assert.Contains(t, line, "time")
}

func TestNewWithWriter_InvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "loud", "json")

	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), "invalid log level")
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "", FormatConsole)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())

	log.Debug().Msg("hidden")
	log.Warn().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
