package cleaner

import (
	"context"
	"time"
)

// Operation results recorded by MetricsRecorder.
const (
	ResultSuccess      = "success"
	ResultLoadError    = "load_error"
	ResultWriteError   = "write_error"
	ResultPrecondition = "precondition_failed"
)

// MetricsRecorder receives one call per Clean or Save.
type MetricsRecorder interface {
	RecordClean(ctx context.Context, result string, cellsFilled int, duration time.Duration)
	RecordSave(ctx context.Context, result string, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) RecordClean(context.Context, string, int, time.Duration) {}
func (noopMetrics) RecordSave(context.Context, string, time.Duration)       {}
