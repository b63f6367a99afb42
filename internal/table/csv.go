package table

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "fincleaner/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrNoColumns is returned for input without a header row.
var ErrNoColumns = errors.New("no columns to parse from file")

// CSVReader reads delimited text with a header row.
type CSVReader struct {
	Delimiter   rune
	NATokens    []string
	TrimHeaders bool
	Logger      *slog.Logger
}

// NewCSVReader creates a comma-delimited reader with the default NA tokens.
func NewCSVReader() *CSVReader {
	return &CSVReader{Delimiter: ','}
}

// Read loads the file at path. Failures are LOAD errors.
func (r *CSVReader) Read(ctx context.Context, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewLoadError("failed to read dataset", err).WithContext("path", path)
	}
	defer f.Close()

	t, err := r.Parse(ctx, f)
	if err != nil {
		return nil, apperrors.NewLoadError("failed to parse dataset", fmt.Errorf("%s: %w", path, err)).
			WithContext("path", path)
	}

	loggerOrDefault(r.Logger).DebugContext(ctx, "Read CSV file",
		slog.String("file_path", path),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()))
	return t, nil
}

// Parse reads a table from src.
func (r *CSVReader) Parse(ctx context.Context, src io.Reader) (*Table, error) {
	br := bufio.NewReader(src)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	if r.Delimiter != 0 {
		cr.Comma = r.Delimiter
	}
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoColumns
	}
	if err != nil {
		return nil, err
	}
	if r.TrimHeaders {
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}
	}

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}

	return FromRecords(header, rows, r.NATokens)
}

// CSVWriter writes a table as delimited text: header then rows, in column
// order, with no index column.
type CSVWriter struct {
	Delimiter rune
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
	Logger    *slog.Logger
}

// NewCSVWriter creates a comma-delimited writer without a BOM.
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{Delimiter: ','}
}

// Write creates or truncates path. Failures are WRITE errors.
func (w *CSVWriter) Write(ctx context.Context, t *Table, path string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewWriteError("failed to write dataset", err).WithContext("path", path)
	}

	loggerOrDefault(w.Logger).InfoContext(ctx, "Writing CSV file",
		slog.String("file_path", path),
		slog.Int("record_count", t.NumRows()))

	if err := w.write(t, path); err != nil {
		return apperrors.NewWriteError("failed to write dataset", err).WithContext("path", path)
	}
	return nil
}

func (w *CSVWriter) write(t *Table, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if w.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			file.Close()
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if w.Delimiter != 0 {
		writer.Comma = w.Delimiter
	}

	if err := writer.Write(t.Header()); err != nil {
		file.Close()
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range t.Records() {
		if err := writer.Write(record); err != nil {
			file.Close()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
