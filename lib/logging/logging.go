// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // hosts without a zone database still render the configured zone

	"golang.org/x/term"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/clock"
)

// Config holds the parameters for New.
type Config struct {
	// Level is debug, info, warn (or warning) or error,
	// case-insensitive. Empty means info.
	Level string

	// Timezone is the IANA zone timestamps are rendered in. Empty or
	// unknown means UTC.
	Timezone string

	// Console enables the stderr handler.
	Console bool

	// Stderr receives console output. Defaults to os.Stderr.
	Stderr io.Writer

	// File receives JSON lines through a RotatingFile. Empty disables
	// file logging.
	File string

	// Keep and Compression configure rotation of File.
	Keep        int
	Compression Compression

	// Clock drives rotation. Defaults to clock.Real().
	Clock clock.Clock
}

// New builds a logger from config. The returned close function
// releases the log file and must be called on shutdown.
func New(config Config) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(config.Level)
	if err != nil {
		return nil, nil, err
	}
	location, zoneErr := LoadLocation(config.Timezone)

	options := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: inLocation(location),
	}

	var handlers []slog.Handler
	closeFile := func() error { return nil }

	if config.Console {
		stderr := config.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		handlers = append(handlers, consoleHandler(stderr, options))
	}

	if config.File != "" {
		file, err := OpenRotating(RotateConfig{
			Path:        config.File,
			Keep:        config.Keep,
			Compression: config.Compression,
			Location:    location,
			Clock:       config.Clock,
		})
		if err != nil {
			return nil, nil, err
		}
		handlers = append(handlers, slog.NewJSONHandler(file, options))
		closeFile = file.Close
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.DiscardHandler
	case 1:
		handler = handlers[0]
	default:
		handler = fanout(handlers)
	}

	logger := slog.New(handler)
	if zoneErr != nil {
		logger.Warn("unknown timezone, using UTC",
			"timezone", config.Timezone,
			"error", zoneErr,
		)
	}
	return logger, closeFile, nil
}

// consoleHandler uses text on a terminal and JSON when stderr is piped
// to a journal or a file.
func consoleHandler(w io.Writer, options *slog.HandlerOptions) slog.Handler {
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return slog.NewTextHandler(w, options)
	}
	return slog.NewJSONHandler(w, options)
}

// ParseLevel maps a configured level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("logging: unknown level %q", name)
	}
}

// LoadLocation resolves an IANA zone name. It returns UTC together
// with the load error when the zone is unknown, and UTC alone for an
// empty name.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, err
	}
	return location, nil
}

func inLocation(location *time.Location) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, attr slog.Attr) slog.Attr {
		if len(groups) == 0 && attr.Key == slog.TimeKey && attr.Value.Kind() == slog.KindTime {
			attr.Value = slog.TimeValue(attr.Value.Time().In(location))
		}
		return attr
	}
}

// fanoutHandler sends each record to every handler that accepts its
// level.
type fanoutHandler []slog.Handler

func fanout(handlers []slog.Handler) fanoutHandler { return fanoutHandler(handlers) }

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
