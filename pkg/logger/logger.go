// Package logger builds the zerolog logger shared by the POS binaries.
//
// Call Init once at startup; it returns the process logger, which is also
// installed as the zerolog global level.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger behaviour at initialisation time.
type Options struct {
	// Level is the minimum level (trace, debug, info, warn, error). When empty
	// it is debug in development and info everywhere else.
	Level string
	// Pretty switches to coloured console output instead of JSON.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service, Env and Store are attached to every entry when set, so logs
	// from several tills and binaries can be told apart.
	Service string
	Env     string
	Store   string
}

var (
	instance zerolog.Logger
	once     sync.Once
)

// Init builds the process logger on the first call and returns the same
// logger on every later call.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		instance = New(opts)
		zerolog.SetGlobalLevel(instance.GetLevel())
	})
	return instance
}

// New builds a logger from opts without touching package state.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).
		Level(resolveLevel(opts.Level, opts.Env)).
		With().
		Timestamp().
		Caller()
	for _, f := range []struct{ key, val string }{
		{"service", opts.Service},
		{"env", opts.Env},
		{"store", opts.Store},
	} {
		if f.val != "" {
			ctx = ctx.Str(f.key, f.val)
		}
	}
	return ctx.Logger()
}

// resolveLevel parses level, accepting "warning" as an alias. Empty or
// unknown values fall back to the environment default.
func resolveLevel(level, env string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(level))
	if s == "warning" {
		s = "warn"
	}
	if s != "" {
		if lvl, err := zerolog.ParseLevel(s); err == nil && lvl != zerolog.NoLevel {
			return lvl
		}
	}
	if env == "development" {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
