package observability

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. Dev gets a console writer at debug level;
// other environments log JSON. level, when set, overrides the default.
func NewLogger(env, level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	if strings.EqualFold(env, "dev") {
		lvl = zerolog.DebugLevel
	}
	if level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
			lvl = parsed
		}
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if strings.EqualFold(env, "dev") {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Str("service", "lifelens-island").Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Str("service", "lifelens-island").Logger()
}
