package obs

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInitLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			InitLogger(tt.level)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestLoggerComponent(t *testing.T) {
	InitLogger("info")

	var buf bytes.Buffer
	logger := Logger("search").Output(&buf)
	logger.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"search"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestNop(t *testing.T) {
	logger := Nop()
	// Must not panic or write anywhere.
	logger.Warn().Msg("discarded")
}
