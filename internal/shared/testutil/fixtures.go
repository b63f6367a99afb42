package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ForecastCSV is a small forecast sheet in the layout the reports expect:
// identifier columns followed by one column per period, with gaps.
const ForecastCSV = `group,category,job_code,2020_Q1,2020_Q2,2020_Q3
X,1,J1,10,,30
X,1,J2,,5,
Y,1,J1,4,6,8
Y,2,J3,1,,1
Z,1,J2,2,2,
`

// FinancialStatementsCSV mirrors a per-company financial statement export.
const FinancialStatementsCSV = ` Company ,Year,Revenue,Net Income
Acme,2021,100.5,10
Acme,2022,120,
Acme,2023,130.25,15
Globex,2021,80,8
Globex,2022,,9
Globex,2023,95,12
`

// WriteFile writes content under dir and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// ReadFile returns the content of path as a string.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
