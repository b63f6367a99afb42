package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "fincleaner/internal/errors"
	"fincleaner/internal/shared/testutil"
)

type workspace struct {
	dir     string
	input   string
	output  string
	reports string
	config  string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	ws := workspace{
		dir:     dir,
		input:   testutil.WriteFile(t, dir, "dummy_filter_format.csv", testutil.ForecastCSV),
		output:  filepath.Join(dir, "updated_nulls.csv"),
		reports: filepath.Join(dir, "reports"),
	}
	ws.config = testutil.WriteFile(t, dir, "fincleaner.yaml", fmt.Sprintf(`
cleaner:
  input_path: %q
  output_path: %q
reports:
  dir: %q
logging:
  level: debug
  output: console
telemetry:
  metrics_enabled: false
  tracing_enabled: false
`, ws.input, ws.output, ws.reports))
	return ws
}

func execute(t *testing.T, ws workspace, args ...string) (string, string, error) {
	t.Helper()
	c := &cli{}
	root := newRootCmd(c)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", ws.config}, args...))

	err := root.ExecuteContext(context.Background())
	c.close(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestCleanCommand(t *testing.T) {
	ws := newWorkspace(t)

	stdout, stderr, err := execute(t, ws, "clean")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Null values successfully replaced with 0.")
	assert.Contains(t, stdout, ws.output)
	assert.Contains(t, stderr, "Null values replaced")

	assert.Equal(t, `group,category,job_code,2020_Q1,2020_Q2,2020_Q3
X,1,J1,10,0,30
X,1,J2,0,5,0
Y,1,J1,4,6,8
Y,2,J3,1,0,1
Z,1,J2,2,2,0
`, testutil.ReadFile(t, ws.output))
}

func TestCleanCommand_Overrides(t *testing.T) {
	ws := newWorkspace(t)
	other := testutil.WriteFile(t, ws.dir, "other.csv", "a,b\n1,\n")
	out := filepath.Join(ws.dir, "other_clean.csv")

	_, _, err := execute(t, ws, "clean", "--input", other, "--output", out)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,0\n", testutil.ReadFile(t, out))
}

func TestCleanCommand_MissingInput(t *testing.T) {
	ws := newWorkspace(t)

	stdout, _, err := execute(t, ws, "clean", "--input", filepath.Join(ws.dir, "missing.csv"))
	require.Error(t, err)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeLoad))
	assert.Contains(t, stdout, "Error cleaning nulls:")

	_, statErr := os.Stat(ws.output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSaveCommand(t *testing.T) {
	ws := newWorkspace(t)
	alt := filepath.Join(ws.dir, "copy.csv")

	_, _, err := execute(t, ws, "save", "--output", alt)
	require.NoError(t, err)
	assert.Equal(t, testutil.ReadFile(t, ws.output), testutil.ReadFile(t, alt))

	_, _, err = execute(t, ws, "save")
	assert.Error(t, err, "--output is required")
}

func TestReportCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		file string
	}{
		{"distribution chart", []string{"distribution"}, "box_plot.xlsx"},
		{"distribution csv", []string{"distribution", "--format", "csv", "--out", "dist.csv"}, "dist.csv"},
		{"totals chart", []string{"totals", "--by", "job_code"}, "bar_plot_by_jobcode.xlsx"},
		{"compare chart", []string{"compare", "--first", "X", "--second", "Y"}, "group_comparison_by_jobcode.xlsx"},
		{"compare csv by extension", []string{"compare", "--first", "X", "--second", "Y", "--out", "cmp.csv"}, "cmp.csv"},
		{"compare group with itself", []string{"compare", "--first", "X", "--second", "X"}, "group_comparison_by_jobcode.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newWorkspace(t)

			stdout, _, err := execute(t, ws, tt.args...)
			require.NoError(t, err)

			path := filepath.Join(ws.reports, tt.file)
			assert.FileExists(t, path)
			assert.Contains(t, stdout, "Report written to '"+path+"'.")
		})
	}
}

func TestTotalsCommand_CSVContent(t *testing.T) {
	ws := newWorkspace(t)

	_, _, err := execute(t, ws, "totals", "--by", "job_code", "--out", "totals.csv")
	require.NoError(t, err)

	content := testutil.ReadFile(t, filepath.Join(ws.reports, "totals.csv"))
	assert.Contains(t, content, "job_code,total\n")
	assert.Contains(t, content, "J1,58\n")
	assert.Contains(t, content, "J2,9\n")
	assert.NotContains(t, content, "J3")
}

func TestMetricCommand(t *testing.T) {
	ws := newWorkspace(t)
	input := testutil.WriteFile(t, ws.dir, "financials.csv", testutil.FinancialStatementsCSV)

	stdout, _, err := execute(t, ws, "metric", "--input", input,
		"--entity-column", "Company", "--metric", "Revenue",
		"--first", "Acme", "--second", "Globex", "--format", "csv")
	require.NoError(t, err)

	path := filepath.Join(ws.reports, "metric_comparison.csv")
	assert.Contains(t, stdout, path)
	// Globex has no 2022 revenue: two values, not a zero
	assert.Contains(t, testutil.ReadFile(t, path), "Globex,2,80,")
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"compare without groups", []string{"compare"}},
		{"unknown group", []string{"compare", "--first", "X", "--second", "Q"}},
		{"unsupported format", []string{"distribution", "--format", "pdf"}},
		{"unknown command", []string{"plot"}},
		{"missing config", []string{"clean"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newWorkspace(t)
			if tt.name == "missing config" {
				ws.config = filepath.Join(ws.dir, "absent.yaml")
			}
			_, _, err := execute(t, ws, tt.args...)
			assert.Error(t, err)
		})
	}
}
