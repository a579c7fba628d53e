// Package logging configures colored structured logging with tint, optionally
// fanned out to a JSON log file.
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
//	LOG_FILE:  path of an additional JSON log sink (default: none)
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
)

// ParseLevel maps a level name to a slog.Level, defaulting to INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing colored output to terminal and, when jsonSink is
// not nil, JSON records to it as well.
func New(terminal io.Writer, jsonSink io.Writer, level slog.Level) *slog.Logger {
	handlers := []slog.Handler{
		tint.NewHandler(terminal, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}),
	}
	if jsonSink != nil {
		handlers = append(handlers, slog.NewJSONHandler(jsonSink, &slog.HandlerOptions{Level: level}))
	}
	if len(handlers) == 1 {
		return slog.New(handlers[0])
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

// Setup installs the default logger. The returned func closes the log file, if any.
func Setup(level, file string) (*slog.Logger, func() error, error) {
	closeFn := func() error { return nil }

	var sink io.Writer
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, closeFn, fmt.Errorf("failed to open log file: %w", err)
		}
		sink = f
		closeFn = f.Close
	}

	logger := New(os.Stderr, sink, ParseLevel(level))
	slog.SetDefault(logger)
	return logger, closeFn, nil
}
