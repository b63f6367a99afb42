package cleaner

import (
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"fincleaner/internal/table"
)

// DefaultOutputPath is where Clean writes when no output path is configured.
const DefaultOutputPath = "updated_nulls.csv"

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithOutputPath sets the default output location used by Clean and by Save("").
func WithOutputPath(path string) Option {
	return func(c *Cleaner) {
		if path != "" {
			c.outputPath = path
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cleaner) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFormat sets the options of the default extension-based reader and writer.
func WithFormat(opts table.Options) Option {
	return func(c *Cleaner) {
		c.reader = table.FormatReader{Options: opts}
		c.writer = table.FormatWriter{Options: opts}
	}
}

// WithReader replaces the table-reading facility.
func WithReader(r table.Reader) Option {
	return func(c *Cleaner) {
		if r != nil {
			c.reader = r
		}
	}
}

// WithWriter replaces the table-writing facility.
func WithWriter(w table.Writer) Option {
	return func(c *Cleaner) {
		if w != nil {
			c.writer = w
		}
	}
}

// WithMetrics records clean and save outcomes.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *Cleaner) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracer sets the tracer used for clean and save spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Cleaner) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithReporter sets where the human-readable status lines go. Defaults to stdout.
func WithReporter(w io.Writer) Option {
	return func(c *Cleaner) {
		if w != nil {
			c.out = w
		}
	}
}
