package http

import (
	"context"

	"fincleaner/internal/analysis"
	"fincleaner/internal/cleaner"
	"fincleaner/internal/services"
	"fincleaner/internal/table"
)

// DatasetServiceInterface defines the dataset operations the handlers use
type DatasetServiceInterface interface {
	Clean(ctx context.Context) (cleaner.FillReport, error)
	Save(ctx context.Context, path string) (string, error)
	Table(ctx context.Context) (*table.Table, error)
	Distribution(ctx context.Context, q services.DistributionQuery) ([]analysis.BoxStats, error)
	Totals(ctx context.Context, q services.TotalsQuery) ([]analysis.GroupTotal, error)
	Compare(ctx context.Context, q services.CompareQuery) (analysis.GroupComparison, error)
	CompareMetric(ctx context.Context, q services.MetricQuery) (analysis.MetricComparison, error)
	Groups(ctx context.Context, column string) ([]string, error)
}
