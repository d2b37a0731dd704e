// internal/logger/logger.go
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global logger. Format "console" gives human-readable,
// colorized output; anything else writes JSON lines.
func Init(level, format string) error {
	return InitWriter(os.Stderr, level, format)
}

// InitWriter is Init with an explicit destination.
func InitWriter(out io.Writer, level, format string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}

	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	zerolog.TimeFieldFormat = time.RFC3339

	// Set a global log level
	zerolog.SetGlobalLevel(lvl)

	// Add a hook to include the caller's file and line number
	log.Logger = zerolog.New(out).With().Timestamp().Caller().Logger()
	return nil
}
