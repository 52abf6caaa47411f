// Package logx builds the zerolog logger the commands share.
package logx

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to stderr, so diagnostics never mix
// with the result lines the harness prints on stdout. CHESSARENA_LOG
// selects the level ("debug", "info", ...); the default is info.
func New() zerolog.Logger {
	level := zerolog.InfoLevel
	if env := os.Getenv("CHESSARENA_LOG"); env != "" {
		if parsed, err := zerolog.ParseLevel(env); err == nil {
			level = parsed
		}
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
