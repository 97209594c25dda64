// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup sets the global level and output format. Unknown levels fall back to
// info; format "json" writes structured lines, anything else a console view.
func Setup(level, format string, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if !strings.EqualFold(strings.TrimSpace(format), "json") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return log.Logger
}
