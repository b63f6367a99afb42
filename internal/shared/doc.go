// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// structured log output, and CSV fixtures shaped like the forecast and
// financial statement exports the cleaner and reports consume:
//
//	logger, logs := testutil.NewTestLogger(t)
//	path := testutil.WriteFile(t, t.TempDir(), "in.csv", testutil.ForecastCSV)
//
// Nothing in this package may import domain packages.
package shared
