package analysis

import (
	"fmt"
	"strings"

	apperrors "fincleaner/internal/errors"
	"fincleaner/internal/table"
)

// RowMatcher reports whether a row of the table it was compiled for matches.
type RowMatcher func(row int) bool

// Predicate compiles a RowMatcher against a table, failing when it refers to
// columns the table does not have.
type Predicate func(t *table.Table) (RowMatcher, error)

// Equals matches rows whose cell in column equals value. Numeric columns
// compare numerically, so "1" matches 1.0; other columns compare the cell text.
// Absent cells never match.
func Equals(column, value string) Predicate {
	return func(t *table.Table) (RowMatcher, error) {
		col, ok := t.Column(column)
		if !ok {
			return nil, unknownColumn(column)
		}

		if col.Kind() == table.KindNumber {
			want, ok := table.ParseNumber(value)
			return func(row int) bool {
				return ok && col.Values[row].Equal(want)
			}, nil
		}

		return func(row int) bool {
			v := col.Values[row]
			return !v.IsAbsent() && v.String() == value
		}, nil
	}
}

// Filter returns the rows of t matching p, in their original order.
func Filter(t *table.Table, p Predicate) (*table.Table, error) {
	match, err := p(t)
	if err != nil {
		return nil, err
	}

	var rows []int
	for r := 0; r < t.NumRows(); r++ {
		if match(r) {
			rows = append(rows, r)
		}
	}
	return t.SelectRows(rows), nil
}

// Drop returns t without the named columns. Every name must exist.
func Drop(t *table.Table, columns ...string) (*table.Table, error) {
	drop := make(map[string]bool, len(columns))
	var missing []string
	for _, name := range columns {
		if _, ok := t.ColumnIndex(name); !ok {
			missing = append(missing, name)
		}
		drop[name] = true
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("columns not found: %s", strings.Join(missing, ", "))).
			WithContext("columns", missing)
	}

	var keep []table.Column
	for _, c := range t.Columns() {
		if !drop[c.Name] {
			keep = append(keep, c)
		}
	}
	return table.New(keep...)
}

// NumericColumns returns the Number columns of t in order.
func NumericColumns(t *table.Table) []table.Column {
	var cols []table.Column
	for _, c := range t.Columns() {
		if c.Kind() == table.KindNumber {
			cols = append(cols, c)
		}
	}
	return cols
}

// Distinct returns the non-absent values of column in order of first appearance.
func Distinct(t *table.Table, column string) ([]string, error) {
	col, ok := t.Column(column)
	if !ok {
		return nil, unknownColumn(column)
	}

	seen := make(map[string]bool)
	var out []string
	for _, v := range col.Values {
		if v.IsAbsent() {
			continue
		}
		s := v.String()
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out, nil
}

func unknownColumn(name string) error {
	return apperrors.NewValidationError(fmt.Sprintf("column %q not found", name)).WithContext("column", name)
}
