package table

import (
	"fmt"
	"strings"
)

// Column is a named sequence of cells.
type Column struct {
	Name   string
	Values []Value
}

// Kind returns the column's dominant kind.
func (c Column) Kind() Kind {
	return InferKind(c.Values)
}

// Table is an ordered set of uniquely named columns of equal length.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// New builds a table from columns. All columns must have the same length and
// distinct names. Values are copied.
func New(columns ...Column) (*Table, error) {
	t := &Table{
		columns: make([]Column, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if i > 0 && len(c.Values) != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, len(c.Values), t.rows)
		}
		t.rows = len(c.Values)
		t.index[c.Name] = i
		t.columns[i] = Column{Name: c.Name, Values: append([]Value(nil), c.Values...)}
	}
	return t, nil
}

// NewWithHeader returns an empty table with the given column names.
func NewWithHeader(names ...string) (*Table, error) {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n}
	}
	return New(cols...)
}

// AppendRow adds one row. It must have exactly one value per column.
func (t *Table) AppendRow(values ...Value) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}
	for i := range t.columns {
		t.columns[i].Values = append(t.columns[i].Values, values[i])
	}
	t.rows++
	return nil
}

func (t *Table) NumRows() int { return t.rows }
func (t *Table) NumCols() int { return len(t.columns) }

// Header returns the column names in order.
func (t *Table) Header() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Columns returns copies of the columns in order.
func (t *Table) Columns() []Column {
	cols := make([]Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = Column{Name: c.Name, Values: append([]Value(nil), c.Values...)}
	}
	return cols
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	c := t.columns[i]
	return Column{Name: c.Name, Values: append([]Value(nil), c.Values...)}, true
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Cell returns the value at row, col. It panics when either is out of range.
func (t *Table) Cell(row, col int) Value {
	return t.columns[col].Values[row]
}

// Set replaces the value at row, col.
func (t *Table) Set(row, col int, v Value) error {
	if col < 0 || col >= len(t.columns) || row < 0 || row >= t.rows {
		return fmt.Errorf("cell (%d, %d) out of range for %dx%d table", row, col, t.rows, len(t.columns))
	}
	t.columns[col].Values[row] = v
	return nil
}

// Row returns the values of one row in column order.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	for c := range t.columns {
		row[c] = t.columns[c].Values[i]
	}
	return row
}

// Rows returns every row in order.
func (t *Table) Rows() [][]Value {
	rows := make([][]Value, t.rows)
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}

// Records renders every row as strings in column order.
func (t *Table) Records() [][]string {
	records := make([][]string, t.rows)
	for i := range records {
		rec := make([]string, len(t.columns))
		for c := range t.columns {
			rec[c] = t.columns[c].Values[i].String()
		}
		records[i] = rec
	}
	return records
}

// SelectRows returns a new table holding the given rows in the given order.
func (t *Table) SelectRows(rows []int) *Table {
	out := &Table{
		columns: make([]Column, len(t.columns)),
		index:   make(map[string]int, len(t.columns)),
		rows:    len(rows),
	}
	for c, col := range t.columns {
		values := make([]Value, len(rows))
		for i, r := range rows {
			values[i] = col.Values[r]
		}
		out.columns[c] = Column{Name: col.Name, Values: values}
		out.index[col.Name] = c
	}
	return out
}

// AbsentCount returns the number of Absent cells.
func (t *Table) AbsentCount() int {
	n := 0
	for _, c := range t.columns {
		for _, v := range c.Values {
			if v.IsAbsent() {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out, _ := New(t.columns...)
	return out
}

// Equal reports whether both tables have the same header, row count and cells.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.rows != o.rows || len(t.columns) != len(o.columns) {
		return false
	}
	for c := range t.columns {
		if t.columns[c].Name != o.columns[c].Name {
			return false
		}
		for r := 0; r < t.rows; r++ {
			if !t.columns[c].Values[r].Equal(o.columns[c].Values[r]) {
				return false
			}
		}
	}
	return true
}

// Map returns a new table with fn applied to every cell, visiting columns in
// order and rows in order within each column.
func (t *Table) Map(fn func(row, col int, v Value) Value) *Table {
	out := t.Clone()
	for c := range out.columns {
		values := out.columns[c].Values
		for r := range values {
			values[r] = fn(r, c, values[r])
		}
	}
	return out
}

// TrimHeaders returns a copy with surrounding whitespace removed from every
// column name. Names left blank or repeated are renamed as on read.
func (t *Table) TrimHeaders() *Table {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = strings.TrimSpace(c.Name)
	}
	cols := t.Columns()
	for i, name := range UniqueNames(names) {
		cols[i].Name = name
	}
	out, _ := New(cols...)
	return out
}
