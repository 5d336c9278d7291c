// Package logger provides opinionated logging capabilities for the reel CLI
// and services.
package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level   slog.Level
	pretty  bool
	json    bool
	source  bool
	writers []io.Writer
}

// New builds a *slog.Logger. The default is a text handler at Info level
// writing to stdout; WithPretty switches to the charmbracelet handler for
// human-facing CLI output, WithJSON to structured service logs.
func New(opts ...Option) *slog.Logger {
	cfg := &config{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(cfg)
	}

	var w io.Writer = os.Stdout
	switch len(cfg.writers) {
	case 0:
	case 1:
		w = cfg.writers[0]
	default:
		w = io.MultiWriter(cfg.writers...)
	}

	var handler slog.Handler
	switch {
	case cfg.pretty:
		handler = charmlog.NewWithOptions(w, charmlog.Options{
			Level:        charmlog.Level(cfg.level),
			ReportCaller: cfg.source,
		})
	case cfg.json:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     cfg.level,
			AddSource: cfg.source,
		})
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     cfg.level,
			AddSource: cfg.source,
		})
	}

	return slog.New(handler)
}

// Nop returns a logger that discards every record.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
