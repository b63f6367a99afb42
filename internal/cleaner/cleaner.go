package cleaner

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "fincleaner/internal/errors"
	"fincleaner/internal/table"
)

const tracerName = "fincleaner/cleaner"

// State is the lifecycle position of a Cleaner.
type State int

const (
	// StateUninitialized means no cleaned table is owned.
	StateUninitialized State = iota
	// StateCleaned means the last Clean succeeded and its table is owned.
	StateCleaned
)

func (s State) String() string {
	if s == StateCleaned {
		return "cleaned"
	}
	return "uninitialized"
}

// Cleaner loads a dataset, replaces every Absent cell with zero, keeps the
// result and writes it to a default output location.
//
// A Cleaner is not safe for concurrent use.
type Cleaner struct {
	source     string
	outputPath string

	reader  table.Reader
	writer  table.Writer
	logger  *slog.Logger
	metrics MetricsRecorder
	tracer  trace.Tracer
	out     io.Writer

	loaded  *table.Table
	cleaned *table.Table
	report  FillReport
}

// New creates a Cleaner for source. No I/O happens until Clean.
func New(source string, opts ...Option) *Cleaner {
	c := &Cleaner{
		source:     source,
		outputPath: DefaultOutputPath,
		reader:     table.FormatReader{},
		writer:     table.FormatWriter{},
		logger:     slog.Default(),
		metrics:    noopMetrics{},
		tracer:     otel.Tracer(tracerName),
		out:        os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("component", "cleaner"))
	return c
}

// Source returns the input location given at construction.
func (c *Cleaner) Source() string { return c.source }

// OutputPath returns the default output location.
func (c *Cleaner) OutputPath() string { return c.outputPath }

// State reports whether a cleaned table is owned.
func (c *Cleaner) State() State {
	if c.cleaned != nil {
		return StateCleaned
	}
	return StateUninitialized
}

// Table returns a copy of the owned cleaned table, or false before a
// successful Clean.
func (c *Cleaner) Table() (*table.Table, bool) {
	if c.cleaned == nil {
		return nil, false
	}
	return c.cleaned.Clone(), true
}

// Loaded returns a copy of the table the last successful Clean read, with
// its Absent cells intact.
func (c *Cleaner) Loaded() (*table.Table, bool) {
	if c.loaded == nil {
		return nil, false
	}
	return c.loaded.Clone(), true
}

// Report returns the fill report of the last successful Clean.
func (c *Cleaner) Report() FillReport {
	return c.report.clone()
}

// Clean loads the source, replaces Absent cells with Number(0), takes
// ownership of the result and writes it to the output path.
//
// Failures are printed to the reporter and returned as LOAD or WRITE
// errors; the Cleaner is then left without a table, even if an earlier
// Clean had succeeded.
func (c *Cleaner) Clean(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "cleaner.clean", trace.WithAttributes(
		attribute.String("cleaner.source", c.source),
		attribute.String("cleaner.output", c.outputPath),
	))
	defer span.End()

	start := time.Now()
	runID := uuid.NewString()
	logger := c.logger.With(slog.String("run_id", runID), slog.String("source", c.source))

	c.loaded, c.cleaned = nil, nil
	c.report = FillReport{}

	src, err := c.reader.Read(ctx, c.source)
	if err != nil {
		err = asAppError(err, apperrors.ErrTypeLoad, "failed to read dataset")
		return c.cleanFailed(ctx, span, logger, err, ResultLoadError, start)
	}

	cleaned, ops := ReplaceAbsent(src)

	if err := c.writer.Write(ctx, cleaned, c.outputPath); err != nil {
		err = asAppError(err, apperrors.ErrTypeWrite, "failed to write dataset")
		return c.cleanFailed(ctx, span, logger, err, ResultWriteError, start)
	}

	c.loaded, c.cleaned = src, cleaned
	c.report = newFillReport(runID, c.source, c.outputPath, cleaned, ops, start)

	fmt.Fprintln(c.out, "Null values successfully replaced with 0.")
	fmt.Fprintf(c.out, "Cleaned data saved to '%s'.\n", c.outputPath)

	logger.InfoContext(ctx, "Null values replaced",
		slog.String("output", c.outputPath),
		slog.Int("rows", cleaned.NumRows()),
		slog.Int("columns", cleaned.NumCols()),
		slog.Int("cells_filled", len(ops)),
		slog.Duration("duration", c.report.Duration))

	span.SetAttributes(attribute.Int("cleaner.cells_filled", len(ops)))
	c.metrics.RecordClean(ctx, ResultSuccess, len(ops), c.report.Duration)
	return nil
}

func (c *Cleaner) cleanFailed(ctx context.Context, span trace.Span, logger *slog.Logger, err error, result string, start time.Time) error {
	fmt.Fprintf(c.out, "Error cleaning nulls: %s\n", causeText(err))

	logger.ErrorContext(ctx, "Clean failed",
		slog.String("error", err.Error()),
		slog.String("result", result))

	span.RecordError(err)
	span.SetStatus(codes.Error, result)
	c.metrics.RecordClean(ctx, result, 0, time.Since(start))
	return err
}

// Save writes the owned table to path, or to the output path when path is
// empty. It does not change the Cleaner's state.
func (c *Cleaner) Save(ctx context.Context, path string) error {
	if path == "" {
		path = c.outputPath
	}

	ctx, span := c.tracer.Start(ctx, "cleaner.save", trace.WithAttributes(
		attribute.String("cleaner.output", path),
	))
	defer span.End()

	start := time.Now()
	logger := c.logger.With(slog.String("output", path))

	if c.cleaned == nil {
		fmt.Fprintln(c.out, "Please run clean() before saving.")
		logger.WarnContext(ctx, "Save called before a successful clean")

		span.SetStatus(codes.Error, ResultPrecondition)
		c.metrics.RecordSave(ctx, ResultPrecondition, time.Since(start))
		return apperrors.NewPreconditionError("clean() must run first").WithContext("path", path)
	}

	if err := c.writer.Write(ctx, c.cleaned, path); err != nil {
		err = asAppError(err, apperrors.ErrTypeWrite, "failed to write dataset")
		fmt.Fprintf(c.out, "Error saving file: %s\n", causeText(err))
		logger.ErrorContext(ctx, "Save failed", slog.String("error", err.Error()))

		span.RecordError(err)
		span.SetStatus(codes.Error, ResultWriteError)
		c.metrics.RecordSave(ctx, ResultWriteError, time.Since(start))
		return err
	}

	fmt.Fprintf(c.out, "Cleaned data saved to '%s'.\n", path)
	logger.InfoContext(ctx, "Cleaned data saved", slog.Int("rows", c.cleaned.NumRows()))
	c.metrics.RecordSave(ctx, ResultSuccess, time.Since(start))
	return nil
}

// asAppError keeps typed errors from the table facilities and wraps
// anything else from injected readers or writers.
func asAppError(err error, errType apperrors.ErrorType, message string) error {
	var appErr *apperrors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}
	return apperrors.NewAppError(errType, message, err)
}

// causeText is the underlying failure without the error kind prefix.
func causeText(err error) string {
	var appErr *apperrors.AppError
	if stderrors.As(err, &appErr) && appErr.Cause != nil {
		return appErr.Cause.Error()
	}
	return err.Error()
}
