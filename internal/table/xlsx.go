package table

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "fincleaner/internal/errors"
)

const defaultSheet = "Sheet1"

// XLSXReader reads the first (or a named) sheet of a workbook. The first row
// is the header.
type XLSXReader struct {
	Sheet       string
	NATokens    []string
	TrimHeaders bool
	Logger      *slog.Logger
}

func (r *XLSXReader) Read(ctx context.Context, path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewLoadError("failed to read dataset", err).WithContext("path", path)
	}
	defer f.Close()

	sheet := r.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewLoadError("failed to parse dataset", fmt.Errorf("%s: workbook has no sheets", path))
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewLoadError("failed to parse dataset", fmt.Errorf("%s: %w", path, err)).
			WithContext("path", path).
			WithContext("sheet", sheet)
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewLoadError("failed to parse dataset", err).WithContext("path", path)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewLoadError("failed to parse dataset", fmt.Errorf("%s: %w", path, ErrNoColumns)).
			WithContext("path", path)
	}

	header := rows[0]
	if r.TrimHeaders {
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}
	}

	t, err := FromRecords(header, rows[1:], r.NATokens)
	if err != nil {
		return nil, apperrors.NewLoadError("failed to parse dataset", fmt.Errorf("%s: %w", path, err)).
			WithContext("path", path)
	}

	loggerOrDefault(r.Logger).DebugContext(ctx, "Read workbook",
		slog.String("file_path", path),
		slog.String("sheet", sheet),
		slog.Int("rows", t.NumRows()))
	return t, nil
}

// XLSXWriter writes a table to a single-sheet workbook. Numbers are stored
// as numeric cells, Absent as empty cells.
type XLSXWriter struct {
	Sheet  string
	Logger *slog.Logger
}

func (w *XLSXWriter) Write(ctx context.Context, t *Table, path string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewWriteError("failed to write dataset", err).WithContext("path", path)
	}

	loggerOrDefault(w.Logger).InfoContext(ctx, "Writing workbook",
		slog.String("file_path", path),
		slog.Int("record_count", t.NumRows()))

	f, err := NewWorkbook(w.Sheet, t)
	if err != nil {
		return apperrors.NewWriteError("failed to write dataset", err).WithContext("path", path)
	}
	defer f.Close()

	if err := SaveWorkbook(f, path); err != nil {
		return apperrors.NewWriteError("failed to write dataset", err).WithContext("path", path)
	}
	return nil
}

// NewWorkbook returns a workbook whose only sheet holds t, header in row 1.
func NewWorkbook(sheet string, t *Table) (*excelize.File, error) {
	if sheet == "" {
		sheet = defaultSheet
	}

	f := excelize.NewFile()
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := WriteSheet(f, sheet, t); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WriteSheet writes t to an existing sheet starting at A1.
func WriteSheet(f *excelize.File, sheet string, t *Table) error {
	header := make([]interface{}, t.NumCols())
	for i, name := range t.Header() {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for r := 0; r < t.NumRows(); r++ {
		row := make([]interface{}, t.NumCols())
		for c, v := range t.Row(r) {
			row[c] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// SaveWorkbook saves f to path, creating the parent directory.
func SaveWorkbook(f *excelize.File, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return f.SaveAs(path)
}

func cellValue(v Value) interface{} {
	switch v.Kind() {
	case KindNumber:
		f, _ := v.Float()
		return f
	case KindText:
		return v.Str()
	default:
		return nil
	}
}
