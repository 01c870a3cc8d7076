package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Service is attached to every entry so helpdesk logs can be told apart in
// a shared collector.
const Service = "helpdesk"

// New returns a JSON logger writing to stdout.
func New(env string) zerolog.Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter returns a JSON logger writing to w. Every entry carries the
// service and environment. The dev environment logs at debug level and
// records the caller; any other environment logs at info level.
func NewWithWriter(env string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "" {
		env = "unknown"
	}
	ctx := zerolog.New(w).With().Timestamp().Str("service", Service).Str("env", env)
	if env == "dev" {
		return ctx.Caller().Logger().Level(zerolog.DebugLevel)
	}
	return ctx.Logger().Level(zerolog.InfoLevel)
}
