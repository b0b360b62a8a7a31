// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	tests := []struct {
		name string
		ctx  context.Context
		want *slog.Logger
	}{
		{name: "context with logger", ctx: New(context.Background(), custom), want: custom},
		{name: "context without logger", ctx: context.Background(), want: DefaultLogger},
		{name: "nil logger uses default", ctx: New(context.Background(), nil), want: DefaultLogger},
		{
			name: "wrong value type",
			ctx:  context.WithValue(context.Background(), loggerKey{}, "not a logger"),
			want: DefaultLogger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, Logger(tt.ctx))
		})
	}
}

func TestLoggingFunctions(t *testing.T) {
	var buf bytes.Buffer

	ctx := New(context.Background(), slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	tests := []struct {
		name    string
		logFunc func(context.Context, string, ...any)
		level   string
	}{
		{name: "debug", logFunc: Debug, level: "DEBUG"},
		{name: "info", logFunc: Info, level: "INFO"},
		{name: "warn", logFunc: Warn, level: "WARN"},
		{name: "error", logFunc: Error, level: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc(ctx, "worker exited", "worker", "4242")
			assert.Contains(t, buf.String(), tt.level)
			assert.Contains(t, buf.String(), "worker exited")
			assert.Contains(t, buf.String(), "worker=4242")
		})
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer

	ctx := New(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))
	ctx = With(ctx, "run", "abc")

	Info(ctx, "hello")
	assert.Contains(t, buf.String(), "run=abc")
}

func TestLogLevelFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{value: "DEBUG", want: slog.LevelDebug},
		{value: "debug", want: slog.LevelDebug},
		{value: "INFO", want: slog.LevelInfo},
		{value: "WARN", want: slog.LevelWarn},
		{value: "ERROR", want: slog.LevelError},
		{value: "INVALID", want: slog.LevelInfo},
		{value: "", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run("level "+tt.value, func(t *testing.T) {
			t.Setenv(tilebatchLogLevelEnvVar, tt.value)
			assert.Equal(t, tt.want, logLevelFromEnv())
		})
	}
}

func TestRaiseVerbosity(t *testing.T) {
	original := LevelVar.Level()
	defer LevelVar.Set(original)

	LevelVar.Set(slog.LevelWarn)
	RaiseVerbosity(false, false)
	assert.Equal(t, slog.LevelWarn, LevelVar.Level())

	RaiseVerbosity(true, false)
	assert.Equal(t, slog.LevelInfo, LevelVar.Level())

	RaiseVerbosity(true, true)
	assert.Equal(t, slog.LevelDebug, LevelVar.Level())

	// never quieter
	LevelVar.Set(slog.LevelDebug)
	RaiseVerbosity(true, false)
	assert.Equal(t, slog.LevelDebug, LevelVar.Level())
}

func TestConsoleHandler(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewConsoleHandler(&slog.HandlerOptions{Level: slog.LevelDebug},
		WithDestinationWriter(&buf),
	))

	logger.Info("starting file", "file", "./data/N00E006.tif")

	out := buf.String()
	assert.Contains(t, out, "INFO:")
	assert.Contains(t, out, "starting file")
	assert.Contains(t, out, `"file": "./data/N00E006.tif"`)
	assert.NotContains(t, out, "\033[", "colour must be off unless requested")
}

func TestConsoleHandler_NoAttrs(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewConsoleHandler(nil, WithDestinationWriter(&buf)))
	logger.Warn("no attributes")
	assert.NotContains(t, buf.String(), "{")

	buf.Reset()

	logger = slog.New(NewConsoleHandler(nil, WithDestinationWriter(&buf), WithOutputEmptyAttrs()))
	logger.Warn("no attributes")
	assert.Contains(t, buf.String(), "{}")
}

func TestConsoleHandler_Level(t *testing.T) {
	h := NewConsoleHandler(&slog.HandlerOptions{Level: slog.LevelInfo})
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
}

func TestConsoleHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer

	base := NewConsoleHandler(nil, WithDestinationWriter(&buf))
	logger := slog.New(base).With("worker", "w1").WithGroup("job")
	logger.Warn("failed", "id", "a.tif")

	out := buf.String()
	require.Contains(t, out, `"worker": "w1"`)
	assert.Contains(t, out, `"job": {`)
	assert.Contains(t, out, `"id": "a.tif"`)
}

func TestConsoleHandler_ReplaceAttrRemovesTime(t *testing.T) {
	var buf bytes.Buffer

	h := NewConsoleHandler(&slog.HandlerOptions{
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}

			return a
		},
	}, WithDestinationWriter(&buf))

	slog.New(h).Warn("plain")
	assert.Equal(t, "WARN: plain \n", buf.String())
}
