package exporter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"fincleaner/internal/analysis"
	apperrors "fincleaner/internal/errors"
	"fincleaner/internal/infrastructure"
	"fincleaner/internal/table"
)

// DataSheet names the sheet holding the charted values.
const DataSheet = "Data"

// Default workbook names, matching the reports the plotting workflow produces.
const (
	DistributionChart = "box_plot.xlsx"
	TotalsChart       = "bar_plot_by_jobcode.xlsx"
	ComparisonChart   = "group_comparison_by_jobcode.xlsx"
	MetricChart       = "company_metric_comparison.xlsx"
)

// box statistic columns (min..max) in the analysis layout
var boxSeries = []int{2, 3, 4, 5, 6}

// ChartExporter writes analysis results as workbooks with a column chart.
type ChartExporter struct {
	reportsDir string
	logger     *slog.Logger
}

// NewChartExporter creates an exporter rooted at reportsDir
func NewChartExporter(reportsDir string, logger *slog.Logger) *ChartExporter {
	return &ChartExporter{
		reportsDir: reportsDir,
		logger:     infrastructure.WithComponent(logger, "chart_exporter"),
	}
}

// ExportDistribution charts Min, Q1, Median, Q3 and Max per period.
func (e *ChartExporter) ExportDistribution(ctx context.Context, dist []analysis.BoxStats, name string) (string, error) {
	t, err := analysis.DistributionTable(dist)
	if err != nil {
		return "", err
	}
	return e.export(ctx, t, "Distribution by period", boxSeries, resolvePath(e.reportsDir, name, DistributionChart))
}

// ExportTotals charts one bar per group key.
func (e *ChartExporter) ExportTotals(ctx context.Context, by string, totals []analysis.GroupTotal, name string) (string, error) {
	t, err := analysis.TotalsTable(by, totals)
	if err != nil {
		return "", err
	}
	return e.export(ctx, t, "Total by "+by, []int{1}, resolvePath(e.reportsDir, name, TotalsChart))
}

// ExportComparison charts both groups as clustered bars per key.
func (e *ChartExporter) ExportComparison(ctx context.Context, cmp analysis.GroupComparison, name string) (string, error) {
	t, err := analysis.ComparisonTable(cmp)
	if err != nil {
		return "", err
	}
	title := fmt.Sprintf("%s vs %s by %s", cmp.First, cmp.Second, cmp.By)
	return e.export(ctx, t, title, []int{1, 2}, resolvePath(e.reportsDir, name, ComparisonChart))
}

// ExportMetric charts both entities' box statistics side by side.
func (e *ChartExporter) ExportMetric(ctx context.Context, cmp analysis.MetricComparison, name string) (string, error) {
	t, err := analysis.MetricTable(cmp)
	if err != nil {
		return "", err
	}
	title := fmt.Sprintf("%s: %s vs %s", cmp.Metric, cmp.First.Name, cmp.Second.Name)
	return e.export(ctx, t, title, boxSeries, resolvePath(e.reportsDir, name, MetricChart))
}

// export writes t to the data sheet and adds a column chart whose categories
// are column A and whose series are the given column indexes.
func (e *ChartExporter) export(ctx context.Context, t *table.Table, title string, series []int, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperrors.NewWriteError("failed to export chart", err).WithContext("path", path)
	}
	if t.NumRows() == 0 {
		return "", apperrors.NewValidationError("nothing to chart").WithContext("path", path)
	}

	f, err := table.NewWorkbook(DataSheet, t)
	if err != nil {
		return "", apperrors.NewWriteError("failed to build workbook", err).WithContext("path", path)
	}
	defer f.Close()

	chart, err := columnChart(t, title, series)
	if err != nil {
		return "", apperrors.NewWriteError("failed to build chart", err).WithContext("path", path)
	}
	anchor, err := excelize.CoordinatesToCellName(t.NumCols()+2, 2)
	if err != nil {
		return "", apperrors.NewWriteError("failed to place chart", err).WithContext("path", path)
	}
	if err := f.AddChart(DataSheet, anchor, chart); err != nil {
		return "", apperrors.NewWriteError("failed to add chart", err).WithContext("path", path)
	}
	if err := table.SaveWorkbook(f, path); err != nil {
		return "", apperrors.NewWriteError("failed to save workbook", err).WithContext("path", path)
	}

	e.logger.InfoContext(ctx, "Chart exported",
		slog.String("path", path),
		slog.String("title", title),
		slog.Int("series", len(series)))
	return path, nil
}

func columnChart(t *table.Table, title string, series []int) (*excelize.Chart, error) {
	last := t.NumRows() + 1
	categories := fmt.Sprintf("%s!$A$2:$A$%d", DataSheet, last)

	chart := &excelize.Chart{
		Type:  excelize.Col,
		Title: []excelize.RichTextRun{{Text: title}},
	}
	for _, col := range series {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		chart.Series = append(chart.Series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", DataSheet, name),
			Categories: categories,
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", DataSheet, name, name, last),
		})
	}
	return chart, nil
}
