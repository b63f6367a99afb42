package table

import (
	"fmt"
	"strings"
)

// DefaultNATokens are the cell spellings read as Absent. They match the
// defaults of the pandas CSV reader the input files are produced for.
var DefaultNATokens = []string{
	"", "NA", "N/A", "n/a", "NaN", "nan", "-NaN", "-nan",
	"NULL", "null", "None", "#N/A", "#NA", "<NA>", "#N/A N/A",
	"1.#IND", "1.#QNAN", "-1.#IND", "-1.#QNAN",
}

type naSet map[string]struct{}

func newNASet(tokens []string) naSet {
	if tokens == nil {
		tokens = DefaultNATokens
	}
	set := make(naSet, len(tokens)+1)
	set[""] = struct{}{}
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func (s naSet) absent(raw string) bool {
	_, ok := s[raw]
	return ok
}

// InferKind returns the dominant kind of a column: Number when every
// non-absent cell is a Number (including an all-absent column), Text otherwise.
func InferKind(values []Value) Kind {
	for _, v := range values {
		if v.IsText() {
			return KindText
		}
	}
	return KindNumber
}

// FromRecords builds a table from a header and raw string rows. Short rows are
// padded with Absent; a row longer than the header is an error. Each column
// becomes Number if all its non-absent cells parse as decimals, otherwise its
// non-absent cells are kept verbatim as Text.
func FromRecords(header []string, rows [][]string, naTokens []string) (*Table, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("no columns to parse")
	}
	names := normalizeHeader(header)
	na := newNASet(naTokens)

	raw := make([][]string, len(names))
	for i := range raw {
		raw[i] = make([]string, len(rows))
	}
	for r, row := range rows {
		if len(row) > len(names) {
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", r+1, len(names), len(row))
		}
		for c, cell := range row {
			raw[c][r] = cell
		}
	}

	cols := make([]Column, len(names))
	for c, name := range names {
		cols[c] = Column{Name: name, Values: inferValues(raw[c], na)}
	}
	return New(cols...)
}

func inferValues(raw []string, na naSet) []Value {
	values := make([]Value, len(raw))
	numeric := true
	for i, cell := range raw {
		if na.absent(cell) {
			continue
		}
		v, ok := ParseNumber(cell)
		if !ok {
			numeric = false
			break
		}
		values[i] = v
	}
	if numeric {
		return values
	}

	for i, cell := range raw {
		if na.absent(cell) {
			values[i] = Absent()
			continue
		}
		values[i] = Text(cell)
	}
	return values
}

// UniqueNames applies the header rules of the readers to names: blank names
// become "Unnamed: i" and repeats get ".1", ".2" suffixes.
func UniqueNames(names []string) []string { return normalizeHeader(names) }

// normalizeHeader names blank headers "Unnamed: i" and suffixes repeated
// names with ".1", ".2" and so on.
func normalizeHeader(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	dupes := make(map[string]int)
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for used[name] {
			dupes[h]++
			name = fmt.Sprintf("%s.%d", h, dupes[h])
		}
		used[name] = true
		names[i] = name
	}
	return names
}
