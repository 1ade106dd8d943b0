// Package logger is a thin wrapper around zerolog.Logger. Embedding
// zerolog.Logger keeps the whole zerolog API available while letting the
// application add its own constructors and context helpers.
package logger

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Logger struct {
	zerolog.Logger
}

// New constructs a JSON logger writing to stdout, tagged with a role label
// (e.g. "server") and filtered at the given level. Unknown level strings
// fall back to info.
func New(role, level string) *Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	l := zerolog.New(os.Stdout).Level(lvl).With().
		Str("role", role).
		Timestamp().
		Logger()

	return &Logger{l}
}

// Nop returns a *Logger that discards all output. Intended for tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// FromContext extracts the request-scoped logger attached by the HTTP
// middleware. zerolog falls back to its global logger when none is attached,
// so the result is never nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}

func FromRequest(r *http.Request) *Logger {
	return FromContext(r.Context())
}
