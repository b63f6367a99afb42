package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fincleaner/internal/analysis"
	"fincleaner/internal/app"
	apierrors "fincleaner/internal/errors"
	"fincleaner/internal/exporter"
	"fincleaner/internal/services"
)

// reportFlags are shared by the report subcommands
type reportFlags struct {
	input        string
	out          string
	format       string
	filterColumn string
	filterValue  string
	exclude      []string
}

func (f *reportFlags) register(cmd *cobra.Command, withFilters bool) {
	cmd.Flags().StringVar(&f.input, "input", "", "Input dataset (default: configured input path)")
	cmd.Flags().StringVar(&f.out, "out", "", "Report file, relative to the reports directory")
	cmd.Flags().StringVar(&f.format, "format", "", "Report format: csv or xlsx (default: from --out, else xlsx)")
	if withFilters {
		cmd.Flags().StringVar(&f.filterColumn, "filter-column", "", "Keep only rows whose column equals --filter-value")
		cmd.Flags().StringVar(&f.filterValue, "filter-value", "", "Value matched against --filter-column")
		cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Columns to drop before analysis (default: configured exclude columns)")
	}
}

// excludeList distinguishes an unset --exclude (nil, use defaults) from an
// explicitly empty one
func (f *reportFlags) excludeList(cmd *cobra.Command) []string {
	if !cmd.Flags().Changed("exclude") {
		return nil
	}
	if f.exclude == nil {
		return []string{}
	}
	return f.exclude
}

// reportExporter is satisfied by exporter.CSVExporter and exporter.ChartExporter
type reportExporter interface {
	ExportDistribution(ctx context.Context, dist []analysis.BoxStats, name string) (string, error)
	ExportTotals(ctx context.Context, by string, totals []analysis.GroupTotal, name string) (string, error)
	ExportComparison(ctx context.Context, cmp analysis.GroupComparison, name string) (string, error)
	ExportMetric(ctx context.Context, cmp analysis.MetricComparison, name string) (string, error)
}

// exporterFor picks the CSV or chart exporter from --format, then from the
// extension of --out.
func (c *cli) exporterFor(f *reportFlags) (reportExporter, error) {
	format := strings.ToLower(f.format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(f.out)), ".")
	}
	switch format {
	case "csv":
		return exporter.NewCSVExporter(c.cfg.Reports.Dir, c.logger), nil
	case "", "xlsx", "xlsm":
		return exporter.NewChartExporter(c.cfg.Reports.Dir, c.logger), nil
	default:
		return nil, apierrors.NewValidationError(fmt.Sprintf("unsupported report format %q", format))
	}
}

// cleanedDataset loads and cleans the input in memory
func (c *cli) cleanedDataset(ctx context.Context, input string) (*services.DatasetService, error) {
	svc := c.newDataset(input)
	if _, err := svc.Clean(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

func (c *cli) reportWritten(path string) {
	fmt.Fprintf(c.stdout, "Report written to '%s'.\n", path)
}

func newCleanCmd(c *cli) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Replace missing values with 0 and write the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.newCleaner(input, output).Clean(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Input dataset (default: configured input path)")
	cmd.Flags().StringVar(&output, "output", "", "Output file (default: configured output path)")
	return cmd
}

func newSaveCmd(c *cli) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Clean the input and save it to an alternate location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.cleanedDataset(cmd.Context(), input)
			if err != nil {
				return err
			}
			_, err = svc.Save(cmd.Context(), output)
			return err
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Input dataset (default: configured input path)")
	cmd.Flags().StringVar(&output, "output", "", "Destination file")
	cmd.MarkFlagRequired("output")
	return cmd
}

func newDistributionCmd(c *cli) *cobra.Command {
	var f reportFlags

	cmd := &cobra.Command{
		Use:   "distribution",
		Short: "Box-plot statistics of every numeric column",
		Long: `Box-plot statistics (min, quartiles, max, mean and outliers) of every
numeric column of the cleaned data, after an optional row filter.

Example: cleaner distribution --filter-column category --filter-value 1 --exclude group,category,job_code --out box_plot.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := c.exporterFor(&f)
			if err != nil {
				return err
			}
			svc, err := c.cleanedDataset(cmd.Context(), f.input)
			if err != nil {
				return err
			}
			dist, err := svc.Distribution(cmd.Context(), services.DistributionQuery{
				FilterColumn: f.filterColumn,
				FilterValue:  f.filterValue,
				Exclude:      f.excludeList(cmd),
			})
			if err != nil {
				return err
			}
			path, err := ex.ExportDistribution(cmd.Context(), dist, f.out)
			if err != nil {
				return err
			}
			c.reportWritten(path)
			return nil
		},
	}

	f.register(cmd, true)
	return cmd
}

func newTotalsCmd(c *cli) *cobra.Command {
	var f reportFlags
	var by string

	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Sum every numeric column per value of a key column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := c.exporterFor(&f)
			if err != nil {
				return err
			}
			svc, err := c.cleanedDataset(cmd.Context(), f.input)
			if err != nil {
				return err
			}
			q := services.TotalsQuery{
				By:           by,
				FilterColumn: f.filterColumn,
				FilterValue:  f.filterValue,
				Exclude:      f.excludeList(cmd),
			}
			totals, err := svc.Totals(cmd.Context(), q)
			if err != nil {
				return err
			}
			if by == "" {
				by = c.cfg.Reports.GroupBy
			}
			path, err := ex.ExportTotals(cmd.Context(), by, totals, f.out)
			if err != nil {
				return err
			}
			c.reportWritten(path)
			return nil
		},
	}

	f.register(cmd, true)
	cmd.Flags().StringVar(&by, "by", "", "Key column (default: configured group_by)")
	return cmd
}

func newCompareCmd(c *cli) *cobra.Command {
	var f reportFlags
	var q services.CompareQuery

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the per-key totals of two groups",
		Long: `Compare the per-key totals of two groups side by side.

Example: cleaner compare --group-column group --by job_code --first A --second B --out group_comparison_by_jobcode.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := c.exporterFor(&f)
			if err != nil {
				return err
			}
			svc, err := c.cleanedDataset(cmd.Context(), f.input)
			if err != nil {
				return err
			}
			q.FilterColumn = f.filterColumn
			q.FilterValue = f.filterValue
			q.Exclude = f.excludeList(cmd)
			cmp, err := svc.Compare(cmd.Context(), q)
			if err != nil {
				return err
			}
			path, err := ex.ExportComparison(cmd.Context(), cmp, f.out)
			if err != nil {
				return err
			}
			c.reportWritten(path)
			return nil
		},
	}

	f.register(cmd, true)
	cmd.Flags().StringVar(&q.GroupColumn, "group-column", "", "Column holding the group names (default: configured group_column)")
	cmd.Flags().StringVar(&q.By, "by", "", "Key column (default: configured group_by)")
	cmd.Flags().StringVar(&q.First, "first", "", "First group")
	cmd.Flags().StringVar(&q.Second, "second", "", "Second group")
	cmd.MarkFlagRequired("first")
	cmd.MarkFlagRequired("second")
	return cmd
}

func newMetricCmd(c *cli) *cobra.Command {
	var f reportFlags
	var q services.MetricQuery

	cmd := &cobra.Command{
		Use:   "metric",
		Short: "Compare one metric across two entities",
		Long: `Compare the values of one metric column for two entities.

Example: cleaner metric --entity-column Company --metric Revenue --first Acme --second Globex --out company_metric_comparison.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := c.exporterFor(&f)
			if err != nil {
				return err
			}
			svc, err := c.cleanedDataset(cmd.Context(), f.input)
			if err != nil {
				return err
			}
			cmp, err := svc.CompareMetric(cmd.Context(), q)
			if err != nil {
				return err
			}
			path, err := ex.ExportMetric(cmd.Context(), cmp, f.out)
			if err != nil {
				return err
			}
			c.reportWritten(path)
			return nil
		},
	}

	f.register(cmd, false)
	cmd.Flags().StringVar(&q.EntityColumn, "entity-column", "", "Column holding the entity names (default: configured entity_column)")
	cmd.Flags().StringVar(&q.Metric, "metric", "", "Metric column")
	cmd.Flags().StringVar(&q.First, "first", "", "First entity")
	cmd.Flags().StringVar(&q.Second, "second", "", "Second entity")
	cmd.MarkFlagRequired("metric")
	cmd.MarkFlagRequired("first")
	cmd.MarkFlagRequired("second")
	return cmd
}

func newServeCmd(c *cli) *cobra.Command {
	var input, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cleaning and report API over HTTP",
		Long: `Serve the cleaning and report API over HTTP until SIGINT or SIGTERM.
The input is not read until POST /api/clean.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.NewApplication(c.cfg, c.logger, c.providers, c.newDataset(input))
			if err != nil {
				return err
			}
			if addr != "" {
				application.Server.Addr = addr
			}
			return application.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Input dataset (default: configured input path)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: :<server.port>)")
	return cmd
}
