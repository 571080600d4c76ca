// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package logger provides a context-aware logger built on [slog].
package logger

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
)

// Logf is a printf-like logging function.
type Logf func(format string, args ...any)

// Write implements [io.Writer], so a Logf can back a [log.Logger] or a
// command's output.
func (f Logf) Write(p []byte) (int, error) {
	f("%s", p)
	return len(p), nil
}

// Logger wraps an [slog.Logger] whose records fan out to a set of handlers
// that can be attached at runtime.
//
// Level controls every handler created with it.
type Logger struct {
	*slog.Logger
	Level *slog.LevelVar

	fan *fanout
}

// New returns a Logger without handlers. A nil level starts at
// [slog.LevelInfo].
func New(level *slog.LevelVar) *Logger {
	if level == nil {
		level = new(slog.LevelVar)
	}
	f := &fanout{}
	return &Logger{Logger: slog.New(f), Level: level, fan: f}
}

// Attach adds h to the handlers receiving records.
func (l *Logger) Attach(h slog.Handler) {
	l.fan.mu.Lock()
	defer l.fan.mu.Unlock()
	l.fan.handlers = append(l.fan.handlers, h)
}

type ctxKey struct{}

var defaultLogger = func() *Logger {
	l := New(nil)
	l.Attach(slog.NewTextHandler(io.Discard, nil))
	return l
}()

// Put returns a copy of ctx carrying l.
func Put(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// Get returns the [Logger] carried by ctx, or a Logger that discards
// everything.
func Get(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return defaultLogger
}

// IsDefault reports whether l is the discarding Logger returned by [Get].
func IsDefault(l *Logger) bool { return l == defaultLogger }

// Debug logs a debug message.
func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	Get(ctx).LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
}

// Info logs an info message.
func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	Get(ctx).LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// Warn logs a warning message.
func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	Get(ctx).LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

// Error logs an error message.
func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	Get(ctx).LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

type fanout struct {
	mu       sync.RWMutex
	handlers []slog.Handler
}

func (f *fanout) snapshot() []slog.Handler {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.handlers)
}

func (f *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.snapshot() {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.snapshot() {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f *fanout) WithGroup(name string) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f *fanout) derive(fn func(slog.Handler) slog.Handler) *fanout {
	hs := f.snapshot()
	for i, h := range hs {
		hs[i] = fn(h)
	}
	return &fanout{handlers: hs}
}
