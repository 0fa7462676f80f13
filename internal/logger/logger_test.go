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
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestForComponentAddsField(t *testing.T) {
	var buf bytes.Buffer
	base := New(Options{Level: "info", Format: "json", Output: &buf})

	l := ForComponent(base, "policy")
	l.Info().Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "policy", line["component"])
	assert.Equal(t, "hello", line["message"])
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	base := New(Options{Level: "warn", Format: "json", Output: &buf})

	base.Info().Msg("dropped")
	assert.Zero(t, buf.Len())
}
