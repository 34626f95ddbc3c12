// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"io"
	"log/slog"
)

var Logger *slog.Logger

// InitLoggerTo initializes the global logger writing to w.
// Pass debug=true (VESTING_DEBUG set) to enable debug logging.
func InitLoggerTo(w io.Writer, debug bool) {
	level := slog.LevelInfo // Default: only show Info, Warn, Error
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time attribute for cleaner CLI output
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})

	Logger = slog.New(handler)
}

// Log returns the global logger, or a discarding one if InitLoggerTo was never called.
func Log() *slog.Logger {
	if Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return Logger
}

// Debug logs a debug message (only shown when VESTING_DEBUG is set)
func Debug(msg string, args ...any) {
	Log().Debug(msg, args...)
}
