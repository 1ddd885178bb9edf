package cli

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a human-readable logger writing to w. Debug output is
// only emitted when debug is set; otherwise only warnings and errors are.
func NewLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    !colorEnabled(w),
	}).Level(level).With().Timestamp().Logger()
}
