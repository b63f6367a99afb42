package table

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
)

// Reader loads a table from a file location.
type Reader interface {
	Read(ctx context.Context, path string) (*Table, error)
}

// Writer persists a table to a file location.
type Writer interface {
	Write(ctx context.Context, t *Table, path string) error
}

// Options configures the readers and writers returned by ReaderFor and WriterFor.
type Options struct {
	// Delimiter separates fields in delimited text. Defaults to ','.
	Delimiter rune
	// NATokens overrides DefaultNATokens. The empty string is always Absent.
	NATokens []string
	// TrimHeaders strips surrounding whitespace from column names on read.
	TrimHeaders bool
	// BOMPrefix writes a UTF-8 byte order mark before delimited output.
	BOMPrefix bool
	// Sheet selects the workbook sheet. Defaults to the first sheet on read
	// and "Sheet1" on write.
	Sheet  string
	Logger *slog.Logger
}

func isWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// ReaderFor picks a reader by file extension: workbooks for .xlsx and .xlsm,
// delimited text for everything else.
func ReaderFor(path string, opts Options) Reader {
	if isWorkbook(path) {
		return &XLSXReader{Sheet: opts.Sheet, NATokens: opts.NATokens, TrimHeaders: opts.TrimHeaders, Logger: opts.Logger}
	}
	return &CSVReader{Delimiter: opts.Delimiter, NATokens: opts.NATokens, TrimHeaders: opts.TrimHeaders, Logger: opts.Logger}
}

// WriterFor picks a writer by file extension, mirroring ReaderFor.
func WriterFor(path string, opts Options) Writer {
	if isWorkbook(path) {
		return &XLSXWriter{Sheet: opts.Sheet, Logger: opts.Logger}
	}
	return &CSVWriter{Delimiter: opts.Delimiter, BOMPrefix: opts.BOMPrefix, Logger: opts.Logger}
}

// FormatReader dispatches on each path's extension.
type FormatReader struct{ Options Options }

func (r FormatReader) Read(ctx context.Context, path string) (*Table, error) {
	return ReaderFor(path, r.Options).Read(ctx, path)
}

// FormatWriter dispatches on each path's extension.
type FormatWriter struct{ Options Options }

func (w FormatWriter) Write(ctx context.Context, t *Table, path string) error {
	return WriterFor(path, w.Options).Write(ctx, t, path)
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
