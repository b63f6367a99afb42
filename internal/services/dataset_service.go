package services

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"fincleaner/internal/analysis"
	"fincleaner/internal/cleaner"
	"fincleaner/internal/config"
	apperrors "fincleaner/internal/errors"
	"fincleaner/internal/table"
)

// DistributionQuery selects the rows and columns of a box-plot analysis
type DistributionQuery struct {
	FilterColumn string
	FilterValue  string
	Exclude      []string
}

// TotalsQuery selects a group-by-and-sum analysis
type TotalsQuery struct {
	By           string
	FilterColumn string
	FilterValue  string
	Exclude      []string
}

// CompareQuery selects a two-group comparison
type CompareQuery struct {
	GroupColumn  string
	By           string
	First        string
	Second       string
	FilterColumn string
	FilterValue  string
	Exclude      []string
}

// MetricQuery selects a two-entity metric comparison
type MetricQuery struct {
	EntityColumn string
	Metric       string
	First        string
	Second       string
}

// DatasetService guards a Cleaner for concurrent callers and runs analyses on
// its cleaned table.
type DatasetService struct {
	mu       sync.RWMutex
	cleaner  *cleaner.Cleaner
	defaults config.ReportsConfig
	logger   *slog.Logger
}

// NewDatasetService wraps c. defaults fill empty query fields.
func NewDatasetService(c *cleaner.Cleaner, defaults config.ReportsConfig, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		cleaner:  c,
		defaults: defaults,
		logger:   logger.With(slog.String("service", "dataset")),
	}
}

// Clean runs the cleaner and returns its fill report.
func (s *DatasetService) Clean(ctx context.Context) (cleaner.FillReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cleaner.Clean(ctx); err != nil {
		return cleaner.FillReport{}, err
	}
	return s.cleaner.Report(), nil
}

// Save writes the cleaned table to path (the configured output when empty)
// and returns the path written.
func (s *DatasetService) Save(ctx context.Context, path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path == "" {
		path = s.cleaner.OutputPath()
	}
	if err := s.cleaner.Save(ctx, path); err != nil {
		return "", err
	}
	return path, nil
}

// State reports whether a cleaned table is held.
func (s *DatasetService) State() cleaner.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cleaner.State()
}

// Source is the dataset location the cleaner reads.
func (s *DatasetService) Source() string {
	return s.cleaner.Source()
}

// Table returns a copy of the cleaned table.
func (s *DatasetService) Table(ctx context.Context) (*table.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.cleaner.Table()
	if !ok {
		return nil, apperrors.NewPreconditionError("clean() must run first")
	}
	return t, nil
}

// Distribution computes box statistics per numeric column of the filtered
// table, after dropping the excluded columns.
func (s *DatasetService) Distribution(ctx context.Context, q DistributionQuery) ([]analysis.BoxStats, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	q.FilterColumn, q.FilterValue = s.filter(q.FilterColumn, q.FilterValue)
	if q.Exclude == nil {
		q.Exclude = s.defaults.ExcludeColumns
	}

	t, err = prepare(t, q.FilterColumn, q.FilterValue, q.Exclude)
	if err != nil {
		return nil, err
	}
	return analysis.Distribution(t)
}

// Totals sums every numeric column per key of q.By.
func (s *DatasetService) Totals(ctx context.Context, q TotalsQuery) ([]analysis.GroupTotal, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	q.By = orDefault(q.By, s.defaults.GroupBy)
	q.FilterColumn, q.FilterValue = s.filter(q.FilterColumn, q.FilterValue)
	if q.Exclude == nil {
		q.Exclude = s.defaults.ExcludeColumns
	}

	t, err = prepare(t, q.FilterColumn, q.FilterValue, q.Exclude, q.By)
	if err != nil {
		return nil, err
	}
	return analysis.GroupTotals(t, q.By)
}

// Compare contrasts the per-key totals of two groups.
func (s *DatasetService) Compare(ctx context.Context, q CompareQuery) (analysis.GroupComparison, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return analysis.GroupComparison{}, err
	}
	q.GroupColumn = orDefault(q.GroupColumn, s.defaults.GroupColumn)
	q.By = orDefault(q.By, s.defaults.GroupBy)
	q.FilterColumn, q.FilterValue = s.filter(q.FilterColumn, q.FilterValue)
	if q.Exclude == nil {
		q.Exclude = s.defaults.ExcludeColumns
	}
	if q.First == "" || q.Second == "" {
		return analysis.GroupComparison{}, apperrors.NewValidationError("two groups are required").
			WithContext("first", q.First).WithContext("second", q.Second)
	}

	t, err = prepare(t, q.FilterColumn, q.FilterValue, q.Exclude, q.GroupColumn, q.By)
	if err != nil {
		return analysis.GroupComparison{}, err
	}
	return analysis.CompareGroups(t, q.GroupColumn, q.By, q.First, q.Second)
}

// CompareMetric contrasts one metric between two entities. It reads the
// table as loaded, so missing values are skipped rather than counted as
// zero, and it strips whitespace around column names.
func (s *DatasetService) CompareMetric(ctx context.Context, q MetricQuery) (analysis.MetricComparison, error) {
	s.mu.RLock()
	t, ok := s.cleaner.Loaded()
	s.mu.RUnlock()
	if !ok {
		return analysis.MetricComparison{}, apperrors.NewPreconditionError("clean() must run first")
	}

	q.EntityColumn = orDefault(q.EntityColumn, s.defaults.EntityColumn)
	if q.Metric == "" || q.First == "" || q.Second == "" {
		return analysis.MetricComparison{}, apperrors.NewValidationError("metric and two entities are required")
	}
	return analysis.CompareMetric(t.TrimHeaders(), q.EntityColumn, q.Metric, q.First, q.Second)
}

// Groups lists the distinct values of column, for "available groups" prompts.
func (s *DatasetService) Groups(ctx context.Context, column string) ([]string, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	return analysis.Distinct(t, orDefault(column, s.defaults.GroupColumn))
}

// filter applies the configured filter only when the caller set neither part.
func (s *DatasetService) filter(column, value string) (string, string) {
	if column == "" && value == "" {
		return s.defaults.FilterColumn, s.defaults.FilterValue
	}
	return column, value
}

// prepare filters t then drops the excluded columns, keeping the named ones.
func prepare(t *table.Table, filterColumn, filterValue string, exclude []string, keep ...string) (*table.Table, error) {
	var err error
	if filterColumn != "" {
		if t, err = analysis.Filter(t, analysis.Equals(filterColumn, filterValue)); err != nil {
			return nil, err
		}
	}

	var drop []string
	for _, name := range exclude {
		if name != "" && !slices.Contains(keep, name) {
			drop = append(drop, name)
		}
	}
	if len(drop) == 0 {
		return t, nil
	}
	return analysis.Drop(t, drop...)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
