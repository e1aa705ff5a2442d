// Package logging constructs the process logger used by the historian
// backend and managers.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// New returns a timestamped logger writing to stderr at the given level.
// Unknown level strings fall back to info.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

// Nop returns a disabled logger for tests and callers that opt out.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
