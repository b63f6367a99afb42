package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"fincleaner/internal/cleaner"
	"fincleaner/internal/config"
	"fincleaner/internal/infrastructure"
	"fincleaner/internal/services"
	"fincleaner/internal/table"
)

// cli carries the state shared by every subcommand once the root's
// PersistentPreRunE has run.
type cli struct {
	configFile string
	envFile    string
	logLevel   string

	cfg       *config.Config
	logger    *slog.Logger
	providers *infrastructure.OTelProviders
	metrics   *infrastructure.CleanerMetrics
	stdout    io.Writer
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "cleaner",
		Short: "Fill missing values in a dataset and report on the result",
		Long: `cleaner reads a delimited text file or workbook, replaces every missing
cell with 0 and writes the result. The report subcommands clean the input in
memory and export box-plot, totals and comparison data as CSV or as a
workbook with a native chart.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "Path to a YAML config file")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", "", "Path to a .env file (default: .env if present)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newCleanCmd(c),
		newSaveCmd(c),
		newDistributionCmd(c),
		newTotalsCmd(c),
		newCompareCmd(c),
		newMetricCmd(c),
		newServeCmd(c),
	)
	return root
}

// setup loads configuration and builds the logger and telemetry providers
func (c *cli) setup(cmd *cobra.Command) error {
	if err := config.LoadEnvFile(c.envFile); err != nil {
		return err
	}

	cfg, err := config.Load(c.configFile)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	c.cfg = cfg
	c.stdout = cmd.OutOrStdout()

	logger, err := infrastructure.InitializeLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	c.logger = logger

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, cmd.ErrOrStderr(), logger)
	if err != nil {
		return err
	}
	c.providers = providers

	metrics, err := infrastructure.NewCleanerMetrics(providers.Meter)
	if err != nil {
		return err
	}
	c.metrics = metrics
	return nil
}

// close flushes telemetry and closes the log file. Safe to call when setup
// never ran.
func (c *cli) close(ctx context.Context) {
	if c.providers != nil {
		if err := c.providers.Shutdown(ctx); err != nil && c.logger != nil {
			c.logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
		c.providers = nil
	}
	infrastructure.CloseLogFile()
}

// newCleaner builds a cleaner for input (or the configured input) that
// writes to output (or the configured output) by default.
func (c *cli) newCleaner(input, output string) *cleaner.Cleaner {
	if input == "" {
		input = c.cfg.Cleaner.InputPath
	}
	if output == "" {
		output = c.cfg.Cleaner.OutputPath
	}

	return cleaner.New(input,
		cleaner.WithOutputPath(output),
		cleaner.WithLogger(c.logger),
		cleaner.WithFormat(tableOptions(c.cfg.Cleaner, c.logger)),
		cleaner.WithMetrics(c.metrics),
		cleaner.WithTracer(c.providers.Tracer),
		cleaner.WithReporter(c.stdout),
	)
}

// newDataset builds a dataset service around a fresh cleaner for input
func (c *cli) newDataset(input string) *services.DatasetService {
	return services.NewDatasetService(c.newCleaner(input, ""), c.cfg.Reports, c.logger)
}

// tableOptions maps the cleaner configuration onto reader and writer options
func tableOptions(cfg config.CleanerConfig, logger *slog.Logger) table.Options {
	return table.Options{
		Delimiter:   cfg.DelimiterRune(),
		NATokens:    cfg.NATokens,
		TrimHeaders: cfg.TrimHeaders,
		BOMPrefix:   cfg.BOMPrefix,
		Sheet:       cfg.Sheet,
		Logger:      logger,
	}
}
