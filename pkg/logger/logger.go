// Package logger builds the *slog.Logger instances used across aura.
//
// The server logs JSON or colorized text, interactive commands log through
// charmbracelet/log to stderr.
package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type format int

const (
	formatText format = iota
	formatPretty
	formatJSON
)

type settings struct {
	level  slog.Level
	format format
	source bool
	out    io.Writer
}

// Option configures a logger built by New.
type Option func(*settings)

// WithDebug lowers the level to Debug.
func WithDebug(debug bool) Option {
	return func(s *settings) {
		s.level = slog.LevelInfo
		if debug {
			s.level = slog.LevelDebug
		}
	}
}

// WithPretty switches to the charmbracelet/log handler.
func WithPretty(pretty bool) Option {
	return func(s *settings) {
		if pretty && s.format != formatJSON {
			s.format = formatPretty
		}
	}
}

// WithJSON switches to slog's JSON handler. It wins over WithPretty
// regardless of order.
func WithJSON(json bool) Option {
	return func(s *settings) {
		if json {
			s.format = formatJSON
		}
	}
}

// WithWriter sets the destination. Defaults to os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(s *settings) { s.out = w }
}

// WithSource records the caller's file:line.
func WithSource(source bool) Option {
	return func(s *settings) { s.source = source }
}

// New returns a logger configured by opts. With no options it writes
// slog text records at Info level to os.Stdout.
func New(opts ...Option) *slog.Logger {
	s := &settings{level: slog.LevelInfo, out: os.Stdout}
	for _, opt := range opts {
		opt(s)
	}

	handlerOpts := &slog.HandlerOptions{Level: s.level, AddSource: s.source}
	switch s.format {
	case formatJSON:
		return slog.New(slog.NewJSONHandler(s.out, handlerOpts))
	case formatPretty:
		level := charmlog.InfoLevel
		if s.level <= slog.LevelDebug {
			level = charmlog.DebugLevel
		}
		return slog.New(charmlog.NewWithOptions(s.out, charmlog.Options{
			Level:           level,
			ReportTimestamp: true,
			ReportCaller:    s.source,
		}))
	default:
		return slog.New(slog.NewTextHandler(s.out, handlerOpts))
	}
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
