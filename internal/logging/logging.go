// Package logging wraps zap for motmot's structured-logging sinks (spec.md
// §1's "structured-logging sinks" external collaborator, made concrete).
package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.Mutex
	root    *zap.Logger
	initErr error
)

// Logger is a thin alias kept so callers never import zap directly.
type Logger = zap.Logger

// Field is a thin alias so callers never import zap directly.
type Field = zap.Field

// Configure builds the process-wide root logger at the given level and
// format, replacing whatever Root previously returned. level is one of
// "debug", "info", "warn", "error" (case insensitive, default "info" on
// a parse failure); format is "json" (default) or "console". Safe to
// call again on every config reload: unlike a one-time zap.Config built
// behind a sync.Once, each call here produces a fresh core, so a
// per-generation format/level change in AppConfig actually takes effect.
func Configure(level, format string) {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	if lvl, err := zapcore.ParseLevel(strings.ToLower(level)); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	if strings.EqualFold(format, "console") {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	built, err := cfg.Build()

	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		if root == nil {
			root = zap.NewNop()
		}
		initErr = err
		fmt.Fprintf(os.Stderr, "logging: failed to configure zap: %v\n", err)
		return
	}
	root = built
	initErr = nil
}

// Root returns the process-wide base logger, building a default
// info-level JSON logger on first use if Configure has not run yet.
func Root() *Logger {
	mu.Lock()
	defer mu.Unlock()
	if root != nil {
		return root
	}
	built, err := zap.NewProductionConfig().Build()
	if err != nil {
		root = zap.NewNop()
		initErr = err
		fmt.Fprintf(os.Stderr, "logging: failed to initialize zap: %v\n", err)
		return root
	}
	root = built
	return root
}

// InitError reports the error of the most recent Configure (or implicit
// default build) that failed, or nil. A failed Configure keeps the
// previous root logger, or a no-op one if there was none.
func InitError() error {
	mu.Lock()
	defer mu.Unlock()
	return initErr
}

// New returns a child logger scoped to one named component (typically a
// server name from AppConfig.Servers, or a subsystem like "acceptloop").
func New(component string) *Logger {
	return Root().With(zap.String("component", component))
}

// Sync flushes buffered log entries; call during shutdown.
func Sync() {
	mu.Lock()
	r := root
	mu.Unlock()
	if r != nil {
		_ = r.Sync()
	}
}
