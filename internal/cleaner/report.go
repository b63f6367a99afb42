package cleaner

import (
	"time"

	"fincleaner/internal/table"
)

const (
	operationNullFill = "null_fill"
	reasonAbsent      = "absent_value"
)

// FillOperation records one Absent cell replaced during cleaning.
type FillOperation struct {
	Column    string `json:"column"`
	Row       int    `json:"row"`
	Operation string `json:"operation"`
	Reason    string `json:"reason"`
	NewValue  string `json:"new_value"`
}

// FillReport summarises the last successful clean.
type FillReport struct {
	RunID       string          `json:"run_id"`
	Source      string          `json:"source"`
	Output      string          `json:"output"`
	Rows        int             `json:"rows"`
	Columns     int             `json:"columns"`
	CellsFilled int             `json:"cells_filled"`
	ColumnFills map[string]int  `json:"column_fills"`
	Operations  []FillOperation `json:"operations,omitempty"`
	CleanedAt   time.Time       `json:"cleaned_at"`
	Duration    time.Duration   `json:"duration_ns"`
}

// ReplaceAbsent returns a copy of t with every Absent cell set to Number(0),
// regardless of the column's kind, and the list of cells it filled in column
// then row order. t is not modified.
func ReplaceAbsent(t *table.Table) (*table.Table, []FillOperation) {
	header := t.Header()

	var ops []FillOperation
	out := t.Map(func(row, col int, v table.Value) table.Value {
		if !v.IsAbsent() {
			return v
		}
		ops = append(ops, FillOperation{
			Column:    header[col],
			Row:       row,
			Operation: operationNullFill,
			Reason:    reasonAbsent,
			NewValue:  table.Zero.String(),
		})
		return table.Zero
	})
	return out, ops
}

func newFillReport(runID, source, output string, t *table.Table, ops []FillOperation, start time.Time) FillReport {
	fills := make(map[string]int)
	for _, name := range t.Header() {
		fills[name] = 0
	}
	for _, op := range ops {
		fills[op.Column]++
	}
	return FillReport{
		RunID:       runID,
		Source:      source,
		Output:      output,
		Rows:        t.NumRows(),
		Columns:     t.NumCols(),
		CellsFilled: len(ops),
		ColumnFills: fills,
		Operations:  ops,
		CleanedAt:   start,
		Duration:    time.Since(start),
	}
}

func (r FillReport) clone() FillReport {
	out := r
	if r.ColumnFills != nil {
		out.ColumnFills = make(map[string]int, len(r.ColumnFills))
		for k, v := range r.ColumnFills {
			out.ColumnFills[k] = v
		}
	}
	out.Operations = append([]FillOperation(nil), r.Operations...)
	return out
}
