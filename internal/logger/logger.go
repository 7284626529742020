// Package logger provides the process-wide structured logger.
//
// The package-level Debug/Info/Warn/Error functions are backed by zap with an
// atomic level, so the level can be changed at runtime without touching call
// sites.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global *zap.Logger
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Config holds logging configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR (case-insensitive)
	Format string // json or text
	Output string // stdout, stderr, or a file path
}

// Init initializes the global logger from configuration. Safe to call more
// than once; the last call wins.
func Init(cfg Config) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(cfg.Level)); err != nil {
		l = zapcore.InfoLevel
	}
	level.SetLevel(l)

	var zcfg zap.Config
	if cfg.Format == "text" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = level
	if cfg.Output != "" {
		zcfg.OutputPaths = []string{cfg.Output}
	}

	l2, err := zcfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	global = l2
	return nil
}

// SetLevel changes the global log level at runtime.
func SetLevel(s string) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return
	}
	level.SetLevel(l)
}

// Sync flushes any buffered log entries. Call on shutdown.
func Sync() {
	if global != nil {
		_ = global.Sync()
	}
}

// L returns the global logger, initializing a default one if Init was never
// called (tests, ad-hoc tools).
func L() *zap.Logger {
	if global == nil {
		l, _ := zap.NewProduction(zap.AddCallerSkip(1))
		global = l
	}
	return global
}

// Debug logs a debug message.
func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }

// Info logs an info message.
func Info(msg string, fields ...zap.Field) { L().Info(msg, fields...) }

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) { L().Warn(msg, fields...) }

// Error logs an error message.
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

// Field helpers so call sites don't need to import zap directly.

func String(key, val string) zap.Field { return zap.String(key, val) }

func Int(key string, val int) zap.Field { return zap.Int(key, val) }

func Int64(key string, val int64) zap.Field { return zap.Int64(key, val) }

func Uint64(key string, val uint64) zap.Field { return zap.Uint64(key, val) }

func Err(err error) zap.Field { return zap.Error(err) }
