// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyHandler_Enabled(t *testing.T) {
	tests := []struct {
		name    string
		level   slog.Level
		handler slog.Level
		want    bool
	}{
		{name: "debug level with debug handler", level: slog.LevelDebug, handler: slog.LevelDebug, want: true},
		{name: "debug level with info handler", level: slog.LevelDebug, handler: slog.LevelInfo, want: false},
		{name: "error level with warn handler", level: slog.LevelError, handler: slog.LevelWarn, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPrettyHandler(&slog.HandlerOptions{Level: tt.handler})
			assert.Equal(t, tt.want, handler.Enabled(context.Background(), tt.level))
		})
	}
}

func TestPrettyHandler_WithAttrsSharesBuffer(t *testing.T) {
	handler := NewPrettyHandler(&slog.HandlerOptions{})

	withAttrs, ok := handler.WithAttrs([]slog.Attr{slog.Int("ordinal", 1)}).(*PrettyHandler)
	require.True(t, ok)
	assert.Same(t, handler.b, withAttrs.b)
	assert.Same(t, handler.m, withAttrs.m)

	withGroup, ok := handler.WithGroup("worker").(*PrettyHandler)
	require.True(t, ok)
	assert.Same(t, handler.b, withGroup.b)
}

func TestPrettyHandler_Handle(t *testing.T) {
	tests := []struct {
		name           string
		level          slog.Level
		message        string
		attrs          []any
		options        []Option
		expectInOutput []string
	}{
		{
			name:           "basic info message",
			level:          slog.LevelInfo,
			message:        "test running",
			expectInOutput: []string{"INFO:", "test running"},
		},
		{
			name:           "debug message with attributes",
			level:          slog.LevelDebug,
			message:        "probe",
			attrs:          []any{"path", "/build/onion", "ordinal", 2},
			expectInOutput: []string{"DEBUG:", "probe", "path", "/build/onion", "2"},
		},
		{
			name:           "empty attrs output enabled",
			level:          slog.LevelWarn,
			message:        "interrupted",
			options:        []Option{WithOutputEmptyAttrs()},
			expectInOutput: []string{"WARN:", "interrupted", "{}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			opts := append([]Option{WithDestinationWriter(&buf)}, tt.options...)
			handler := NewPrettyHandler(&slog.HandlerOptions{Level: slog.LevelDebug}, opts...)

			record := slog.NewRecord(time.Now(), tt.level, tt.message, 0)
			record.Add(tt.attrs...)

			require.NoError(t, handler.Handle(context.Background(), record))

			output := buf.String()
			for _, expected := range tt.expectInOutput {
				assert.Contains(t, output, expected)
			}

			assert.True(t, strings.HasSuffix(output, "\n"), "output should end with newline")
			assert.NotContains(t, output, "\033[", "colour is off unless requested")
		})
	}
}

func TestPrettyHandler_Handle_WithReplaceAttr(t *testing.T) {
	var buf bytes.Buffer

	replaceAttr := func(_ []string, a slog.Attr) slog.Attr {
		switch a.Key {
		case slog.TimeKey:
			return slog.Attr{}
		case "secret":
			return slog.String("secret", "[REDACTED]")
		}

		return a
	}

	handler := NewPrettyHandler(&slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: replaceAttr,
	}, WithDestinationWriter(&buf))

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "test message", 0)
	record.Add("secret", "password123", "public", "data")

	require.NoError(t, handler.Handle(context.Background(), record))

	output := buf.String()
	assert.Contains(t, output, "[REDACTED]")
	assert.NotContains(t, output, "password123")
	assert.Contains(t, output, "public")
	assert.True(t, strings.HasPrefix(output, "INFO:"), "time attribute was dropped")
}

func TestPrettyHandler_computeAttrs_Error(t *testing.T) {
	handler := &PrettyHandler{
		h: &failingHandler{},
		b: &bytes.Buffer{},
		m: &sync.Mutex{},
	}

	_, err := handler.computeAttrs(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "test", 0))
	assert.Error(t, err)
}

func TestPrettyHandler_Handle_WriteError(t *testing.T) {
	handler := NewPrettyHandler(&slog.HandlerOptions{Level: slog.LevelDebug}, WithDestinationWriter(&failingWriter{}))

	err := handler.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "test message", 0))
	assert.ErrorIs(t, err, ErrIoWrite)
}

func TestSuppressDefaults(t *testing.T) {
	next := func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == "transform" {
			return slog.String("transform", "transformed")
		}

		return a
	}

	for _, fn := range []func([]string, slog.Attr) slog.Attr{suppressDefaults(nil), suppressDefaults(next)} {
		assert.True(t, fn(nil, slog.Time(slog.TimeKey, time.Now())).Equal(slog.Attr{}))
		assert.True(t, fn(nil, slog.Any(slog.LevelKey, slog.LevelInfo)).Equal(slog.Attr{}))
		assert.True(t, fn(nil, slog.String(slog.MessageKey, "m")).Equal(slog.Attr{}))
		assert.True(t, fn(nil, slog.String("custom", "v")).Equal(slog.String("custom", "v")))
	}

	assert.True(t, suppressDefaults(next)(nil, slog.String("transform", "x")).Equal(slog.String("transform", "transformed")))
}

type failingHandler struct{}

func (h *failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("failing handler error")
}

func (h *failingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *failingHandler) WithGroup(string) slog.Handler { return h }

type failingWriter struct{}

func (w *failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}
