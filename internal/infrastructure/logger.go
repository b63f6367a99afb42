package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"fincleaner/internal/config"
)

var (
	loggerMu  sync.RWMutex
	global    *slog.Logger
	logCloser io.Closer
)

type contextKey string

// TraceIDContextKey is the context key of the request or run trace ID
const TraceIDContextKey contextKey = "trace_id"

// InitializeLogger builds the process logger from cfg and installs it as
// both the package logger and the slog default. Console output goes to
// console; commands pass stderr so logs never mix with their stdout status
// lines. The log file of a replaced logger is closed.
func InitializeLogger(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, error) {
	logger, closer, err := NewLogger(cfg, console)
	if err != nil {
		return nil, err
	}

	loggerMu.Lock()
	previous := logCloser
	global, logCloser = logger, closer
	loggerMu.Unlock()

	if previous != nil {
		previous.Close()
	}
	slog.SetDefault(logger)
	return logger, nil
}

// GetLogger returns the process logger, or slog.Default before
// InitializeLogger has run
func GetLogger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if global == nil {
		return slog.Default()
	}
	return global
}

// CloseLogFile closes the process logger's file output, if any. The logger
// stays installed; file writes after this are dropped.
func CloseLogFile() error {
	loggerMu.Lock()
	closer := logCloser
	logCloser = nil
	loggerMu.Unlock()

	if closer == nil {
		return nil
	}
	return closer.Close()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger builds a JSON logger writing to console, to cfg.FilePath or to
// both, as cfg.Output says. The closer releases the file and is a no-op for
// console-only output.
func NewLogger(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, io.Closer, error) {
	level := ParseLevel(cfg.Level)

	var (
		out    io.Writer = console
		closer io.Closer = nopCloser{}
	)
	if mode := strings.ToLower(cfg.Output); mode == "file" || mode == "both" {
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		out, closer = file, file
		if mode == "both" {
			out = io.MultiWriter(console, file)
		}
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		AddSource: level <= slog.LevelDebug,
		Level:     level,
	})
	return slog.New(correlationHandler{handler}), closer, nil
}

// ParseLevel accepts the slog level names in any case, plus "warning".
// Anything else is info.
func ParseLevel(s string) slog.Level {
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// correlationHandler adds trace_id to every record: the request or run ID
// from WithTraceID, else the active span's trace ID. span_id is added
// whenever a span is active.
type correlationHandler struct {
	slog.Handler
}

func (h correlationHandler) Handle(ctx context.Context, r slog.Record) error {
	sc := trace.SpanContextFromContext(ctx)
	switch {
	case GetTraceID(ctx) != "":
		r.AddAttrs(slog.String("trace_id", GetTraceID(ctx)))
	case sc.HasTraceID():
		r.AddAttrs(slog.String("trace_id", sc.TraceID().String()))
	}
	if sc.HasSpanID() {
		r.AddAttrs(slog.String("span_id", sc.SpanID().String()))
	}
	return h.Handler.Handle(ctx, r)
}

func (h correlationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return correlationHandler{h.Handler.WithAttrs(attrs)}
}

func (h correlationHandler) WithGroup(name string) slog.Handler {
	return correlationHandler{h.Handler.WithGroup(name)}
}

// WithTraceID attaches traceID to ctx for log correlation
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID returns the trace ID attached by WithTraceID, or ""
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDContextKey).(string)
	return traceID
}

// openLogFile opens path for appending, creating it and its directory
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for %s: %w", path, err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return file, nil
}
