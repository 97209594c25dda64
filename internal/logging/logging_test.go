package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSONFormatAndLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	prevLogger := log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prev)
		log.Logger = prevLogger
	})

	var buf bytes.Buffer
	Setup("warn", "json", &buf)

	log.Info().Msg("hidden")
	log.Warn().Str("chat_id", "c1").Msg("visible")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, "c1", entry["chat_id"])
}

func TestSetup_UnknownLevelDefaultsToInfo(t *testing.T) {
	prev := zerolog.GlobalLevel()
	prevLogger := log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prev)
		log.Logger = prevLogger
	})

	var buf bytes.Buffer
	Setup("loud", "console", &buf)

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
