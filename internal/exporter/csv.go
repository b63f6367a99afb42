package exporter

import (
	"context"
	"log/slog"
	"path/filepath"

	"fincleaner/internal/analysis"
	"fincleaner/internal/infrastructure"
	"fincleaner/internal/table"
)

// Default report file names.
const (
	DistributionCSV = "distribution.csv"
	TotalsCSV       = "totals.csv"
	ComparisonCSV   = "comparison.csv"
	MetricCSV       = "metric_comparison.csv"
)

// CSVExporter writes analysis results as CSV reports
type CSVExporter struct {
	reportsDir string
	writer     *table.CSVWriter
	logger     *slog.Logger
}

// NewCSVExporter creates an exporter rooted at reportsDir. The reports carry
// a UTF-8 BOM so Excel opens them with the right encoding.
func NewCSVExporter(reportsDir string, logger *slog.Logger) *CSVExporter {
	logger = infrastructure.WithComponent(logger, "csv_exporter")
	return &CSVExporter{
		reportsDir: reportsDir,
		writer:     &table.CSVWriter{Delimiter: ',', BOMPrefix: true, Logger: logger},
		logger:     logger,
	}
}

// ExportDistribution writes one row of box statistics per period.
func (e *CSVExporter) ExportDistribution(ctx context.Context, dist []analysis.BoxStats, name string) (string, error) {
	t, err := analysis.DistributionTable(dist)
	if err != nil {
		return "", err
	}
	return e.export(ctx, t, name, DistributionCSV)
}

// ExportTotals writes one row per group key.
func (e *CSVExporter) ExportTotals(ctx context.Context, by string, totals []analysis.GroupTotal, name string) (string, error) {
	t, err := analysis.TotalsTable(by, totals)
	if err != nil {
		return "", err
	}
	return e.export(ctx, t, name, TotalsCSV)
}

// ExportComparison writes the two groups' totals side by side.
func (e *CSVExporter) ExportComparison(ctx context.Context, cmp analysis.GroupComparison, name string) (string, error) {
	t, err := analysis.ComparisonTable(cmp)
	if err != nil {
		return "", err
	}
	return e.export(ctx, t, name, ComparisonCSV)
}

// ExportMetric writes both entities' box statistics.
func (e *CSVExporter) ExportMetric(ctx context.Context, cmp analysis.MetricComparison, name string) (string, error) {
	t, err := analysis.MetricTable(cmp)
	if err != nil {
		return "", err
	}
	return e.export(ctx, t, name, MetricCSV)
}

func (e *CSVExporter) export(ctx context.Context, t *table.Table, name, fallback string) (string, error) {
	path := resolvePath(e.reportsDir, name, fallback)
	if err := e.writer.Write(ctx, t, path); err != nil {
		return "", err
	}
	e.logger.InfoContext(ctx, "Report exported",
		slog.String("path", path),
		slog.Int("rows", t.NumRows()))
	return path, nil
}

// resolvePath places relative names under the reports directory.
func resolvePath(reportsDir, name, fallback string) string {
	if name == "" {
		name = fallback
	}
	if filepath.IsAbs(name) || reportsDir == "" {
		return name
	}
	return filepath.Join(reportsDir, name)
}
