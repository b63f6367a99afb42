// Package exporter writes analysis results to disk.
//
// CSVExporter writes each result as a delimited report through the table
// package's CSV writer. ChartExporter writes an .xlsx workbook holding the
// same data on a "Data" sheet next to a native column chart.
//
// Relative output names resolve against the configured reports directory;
// absolute paths are used as given.
//
//	charts := exporter.NewChartExporter("reports", logger)
//	path, err := charts.ExportTotals(ctx, "job_code", totals, "bar_plot_by_jobcode.xlsx")
package exporter
