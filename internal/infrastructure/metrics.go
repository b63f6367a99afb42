package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CleanerMetrics records clean and save outcomes as OpenTelemetry
// instruments. It satisfies cleaner.MetricsRecorder.
type CleanerMetrics struct {
	operations  metric.Int64Counter
	cellsFilled metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewCleanerMetrics creates the cleaner instruments on meter
func NewCleanerMetrics(meter metric.Meter) (*CleanerMetrics, error) {
	operations, err := meter.Int64Counter(
		"cleaner_operations_total",
		metric.WithDescription("Total number of clean and save operations by result"),
	)
	if err != nil {
		return nil, err
	}

	cellsFilled, err := meter.Int64Counter(
		"cleaner_cells_filled_total",
		metric.WithDescription("Total number of absent cells replaced with zero"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"cleaner_operation_duration_seconds",
		metric.WithDescription("Clean and save duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &CleanerMetrics{
		operations:  operations,
		cellsFilled: cellsFilled,
		duration:    duration,
	}, nil
}

// RecordClean records one clean attempt
func (m *CleanerMetrics) RecordClean(ctx context.Context, result string, cellsFilled int, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", "clean"),
		attribute.String("result", result),
	)
	m.operations.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
	if cellsFilled > 0 {
		m.cellsFilled.Add(ctx, int64(cellsFilled))
	}
}

// RecordSave records one save attempt
func (m *CleanerMetrics) RecordSave(ctx context.Context, result string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", "save"),
		attribute.String("result", result),
	)
	m.operations.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}
