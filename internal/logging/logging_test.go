package logging_test

import (
	"bytes"
	"testing"

	"github.com/jrsteele09/pcrs-client/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	logging.Setup("warn", "json", &buf)

	log.Info().Msg("hidden")
	log.Warn().Str("resource", "vendors").Msg("shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"resource":"vendors"`)
}

func TestSetup_BadLevelFallsBackToInfo(t *testing.T) {
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prevLevel) })

	logging.Setup("chatty", "json", &bytes.Buffer{})
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
