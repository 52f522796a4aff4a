// Package logging builds the process slog logger: a console handler on
// stderr and, optionally, JSON records in a size-rotated file.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phsym/console-slog"
)

// ParseLevel converts a config level name to a slog level. Unknown names
// yield info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Options configures New.
type Options struct {
	Level slog.Level
	// Console receives human-readable records; nil means os.Stderr.
	Console io.Writer
	// File, when set, also receives JSON records.
	File      string
	MaxSizeMB int
	MaxFiles  int
}

// New builds a logger. The returned func closes the log file, if any.
func New(opts Options) (*slog.Logger, func() error, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	var handler slog.Handler = consoleHandler(console, opts.Level)

	closeFn := func() error { return nil }
	if opts.File != "" {
		rf, err := OpenRotatingFile(opts.File, opts.MaxSizeMB, opts.MaxFiles)
		if err != nil {
			return nil, nil, err
		}
		handler = fanout{handler, slog.NewJSONHandler(rf, &slog.HandlerOptions{Level: opts.Level})}
		closeFn = rf.Close
	}
	return slog.New(handler), closeFn, nil
}

// Init installs a console logger at level as the process default.
func Init(level slog.Level) *slog.Logger {
	logger := slog.New(consoleHandler(os.Stderr, level))
	slog.SetDefault(logger)
	return logger
}

func consoleHandler(w io.Writer, level slog.Level) slog.Handler {
	return console.NewHandler(w, &console.HandlerOptions{
		Level: level,
	})
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
