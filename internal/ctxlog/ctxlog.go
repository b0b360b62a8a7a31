// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

const tilebatchLogLevelEnvVar = "TILEBATCH_LOG_LEVEL"

type loggerKey struct{}

// LevelVar is shared by every logger created by this package.
var LevelVar = &slog.LevelVar{}

// DefaultLogger writes human-readable records to stdout.
var DefaultLogger = NewConsoleLogger(os.Stdout)

// JSONLogger writes JSON records to stdout.
var JSONLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: LevelVar,
}))

func init() {
	LevelVar.Set(logLevelFromEnv())
}

// NewConsoleLogger returns a logger that writes console records to w.
// Worker processes use it with os.Stderr because their stdout carries the
// coordinator protocol.
func NewConsoleLogger(w io.Writer) *slog.Logger {
	return slog.New(NewConsoleHandler(&slog.HandlerOptions{Level: LevelVar},
		WithAutoColour(),
		WithDestinationWriter(w),
	))
}

// New returns a copy of ctx carrying logger. A nil logger means DefaultLogger.
func New(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		logger = DefaultLogger
	}

	return context.WithValue(ctx, loggerKey{}, logger)
}

// NewForTUI returns a context whose logger writes plain records to w, so that
// log output does not tear the interactive display.
func NewForTUI(ctx context.Context, w io.Writer) context.Context {
	return New(ctx, slog.New(NewConsoleHandler(&slog.HandlerOptions{Level: LevelVar},
		WithDestinationWriter(w),
	)))
}

// Logger returns the logger stored in ctx, or DefaultLogger.
func Logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return DefaultLogger
	}

	return logger
}

// With returns a copy of ctx whose logger carries args.
func With(ctx context.Context, args ...any) context.Context {
	return New(ctx, Logger(ctx).With(args...))
}

// Debug logs at debug level using the logger in ctx.
func Debug(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Debug(msg, args...)
}

// Info logs at info level using the logger in ctx.
func Info(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Info(msg, args...)
}

// Warn logs at warn level using the logger in ctx.
func Warn(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Warn(msg, args...)
}

// Error logs at error level using the logger in ctx.
func Error(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Error(msg, args...)
}

// RaiseVerbosity lowers the shared level to INFO when verbose is set and to
// DEBUG when debug is set. It never makes logging quieter than the level
// chosen through the environment.
func RaiseVerbosity(verbose, debug bool) {
	want := LevelVar.Level()

	switch {
	case debug:
		want = slog.LevelDebug
	case verbose:
		want = slog.LevelInfo
	}

	if want < LevelVar.Level() {
		LevelVar.Set(want)
	}
}

func logLevelFromEnv() slog.Level {
	switch strings.ToUpper(os.Getenv(tilebatchLogLevelEnvVar)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
