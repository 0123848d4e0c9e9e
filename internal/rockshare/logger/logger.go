// Package logger mirrors the calling convention of the teacher's
// gitlab.grandhoo.com/rock/rock-share/base/logger package (Infof/Warnf/Errorf/
// Debugf over a global, level-configurable sink) without depending on the
// private module itself. It is a thin wrapper over log/slog.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

var (
	mu  sync.RWMutex
	lvl = new(slog.LevelVar)
	l   = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
)

// SetLevel adjusts the global log level at runtime, the way the teacher's
// logger.InitLogger(level, ...) did from a config file.
func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()
	switch level {
	case "debug":
		lvl.Set(slog.LevelDebug)
	case "warn":
		lvl.Set(slog.LevelWarn)
	case "error":
		lvl.Set(slog.LevelError)
	default:
		lvl.Set(slog.LevelInfo)
	}
}

func Debugf(format string, args ...any) { logf(slog.LevelDebug, format, args...) }
func Infof(format string, args ...any)  { logf(slog.LevelInfo, format, args...) }
func Warnf(format string, args ...any)  { logf(slog.LevelWarn, format, args...) }
func Errorf(format string, args ...any) { logf(slog.LevelError, format, args...) }

func Info(args ...any)  { log(slog.LevelInfo, args...) }
func Warn(args ...any)  { log(slog.LevelWarn, args...) }
func Error(args ...any) { log(slog.LevelError, args...) }

func logf(level slog.Level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	l.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

func log(level slog.Level, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	l.Log(context.Background(), level, fmt.Sprint(args...))
}
