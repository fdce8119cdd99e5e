package logging_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"

	"onehour/internal/platform/logging"
)

func TestSetupLevels(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, zerolog.DebugLevel, logging.Setup("DEBUG", &buf))
	log.Debug().Str("k", "v").Msg("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "k=v")

	buf.Reset()
	assert.Equal(t, zerolog.WarnLevel, logging.Setup("nonsense", &buf))
	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())
	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
