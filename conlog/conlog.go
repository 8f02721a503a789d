// SPDX-License-Identifier: GPL-2.0-or-later

// Package conlog holds the process wide logger. Packages log through
// conlog.Logger() so the host can redirect or silence them in one place.
package conlog

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var (
	logger atomic.Pointer[slog.Logger]
	level  = new(slog.LevelVar)
)

func init() {
	SetOutput(os.Stderr)
}

// SetOutput replaces the sink with a text handler writing to w.
func SetOutput(w io.Writer) {
	logger.Store(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// SetLogger installs l as the process logger.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

// SetLevel parses debug, info, warn or error. Unknown names keep the
// current level and return false.
func SetLevel(name string) bool {
	switch strings.ToLower(name) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info", "":
		level.Set(slog.LevelInfo)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		return false
	}
	return true
}

func Logger() *slog.Logger {
	return logger.Load()
}

func Printf(format string, v ...interface{}) {
	Logger().Info(sprintf(format, v...))
}
