// Package logger builds the application slog.Logger from environment
// configuration: JSON output for production aggregation, text for local
// development.
package logger

import (
	"io"
	"log/slog"
	"os"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

type Config struct {
	Level   slog.Level `env:"LOG_LEVEL" envDefault:"info"`    // Level is the minimum level that gets emitted.
	Format  Format     `env:"LOG_FORMAT" envDefault:"json"`   // Format is "json" or "text".
	Service string     `env:"APP_NAME" envDefault:"mindfix"`  // Service is attached to every record.
	Env     string     `env:"APP_ENV" envDefault:"production"` // Env is attached to every record.
}

// New creates a configured logger writing to w (os.Stdout when nil).
func New(cfg Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.Format == FormatText {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", cfg.Service),
		slog.String("env", cfg.Env),
	})

	return slog.New(handler)
}
