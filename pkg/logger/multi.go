package logger

import (
	"context"
	"errors"
	"log/slog"
)

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

// Multi returns a logger that writes every record through the handlers of
// all the given loggers. serve pairs console output with a JSON log file
// this way.
func Multi(loggers ...*slog.Logger) *slog.Logger {
	f := make(fanout, 0, len(loggers))
	for _, l := range loggers {
		f = append(f, l.Handler())
	}
	return slog.New(f)
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle keeps going past a failing handler so one broken sink does not
// silence the others.
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
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}
