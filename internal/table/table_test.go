package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := New(
		Column{Name: "group", Values: []Value{Text("X"), Text("Y")}},
		Column{Name: "2020_Q1", Values: []Value{NumberFromInt(10), Absent()}},
	)
	require.NoError(t, err)
	return tbl
}

func TestNew(t *testing.T) {
	t.Run("rejects ragged columns", func(t *testing.T) {
		_, err := New(
			Column{Name: "a", Values: []Value{Zero}},
			Column{Name: "b", Values: []Value{Zero, Zero}},
		)
		assert.Error(t, err)
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		_, err := New(Column{Name: "a"}, Column{Name: "a"})
		assert.Error(t, err)
	})

	t.Run("copies input values", func(t *testing.T) {
		values := []Value{Zero}
		tbl, err := New(Column{Name: "a", Values: values})
		require.NoError(t, err)
		values[0] = Text("changed")
		assert.True(t, tbl.Cell(0, 0).Equal(Zero))
	})
}

func TestTable_Accessors(t *testing.T) {
	tbl := sampleTable(t)

	assert.Equal(t, []string{"group", "2020_Q1"}, tbl.Header())
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, 2, tbl.NumCols())
	assert.Equal(t, 1, tbl.AbsentCount())
	assert.Equal(t, [][]string{{"X", "10"}, {"Y", ""}}, tbl.Records())

	col, ok := tbl.Column("2020_Q1")
	require.True(t, ok)
	assert.Equal(t, KindNumber, col.Kind())

	_, ok = tbl.Column("missing")
	assert.False(t, ok)

	idx, ok := tbl.ColumnIndex("group")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	row := tbl.Row(1)
	assert.True(t, row[0].Equal(Text("Y")))
	assert.True(t, row[1].IsAbsent())
	assert.Len(t, tbl.Rows(), 2)
}

func TestTable_SetAndAppend(t *testing.T) {
	tbl := sampleTable(t)

	require.NoError(t, tbl.Set(1, 1, Zero))
	assert.Equal(t, 0, tbl.AbsentCount())
	assert.Error(t, tbl.Set(5, 0, Zero))

	require.NoError(t, tbl.AppendRow(Text("Z"), NumberFromInt(3)))
	assert.Equal(t, 3, tbl.NumRows())
	assert.Error(t, tbl.AppendRow(Text("only one")))
}

func TestTable_CloneIsIndependent(t *testing.T) {
	tbl := sampleTable(t)
	clone := tbl.Clone()
	require.True(t, tbl.Equal(clone))

	require.NoError(t, clone.Set(0, 0, Text("changed")))
	assert.False(t, tbl.Equal(clone))
	assert.Equal(t, "X", tbl.Cell(0, 0).Str())

	cols := tbl.Columns()
	cols[0].Values[0] = Text("mutated")
	assert.Equal(t, "X", tbl.Cell(0, 0).Str())
}

func TestTable_SelectRows(t *testing.T) {
	tbl := sampleTable(t)
	sel := tbl.SelectRows([]int{1})

	assert.Equal(t, tbl.Header(), sel.Header())
	assert.Equal(t, 1, sel.NumRows())
	assert.Equal(t, "Y", sel.Cell(0, 0).Str())
}

func TestTable_TrimHeaders(t *testing.T) {
	tbl, err := New(
		Column{Name: " Company ", Values: []Value{Text("Acme")}},
		Column{Name: "Revenue", Values: []Value{Absent()}},
		Column{Name: "Revenue ", Values: []Value{NumberFromInt(1)}},
		Column{Name: "  ", Values: []Value{NumberFromInt(2)}},
	)
	require.NoError(t, err)

	trimmed := tbl.TrimHeaders()

	assert.Equal(t, []string{"Company", "Revenue", "Revenue.1", "Unnamed: 3"}, trimmed.Header())
	assert.True(t, trimmed.Cell(0, 1).IsAbsent())
	assert.Equal(t, " Company ", tbl.Header()[0])
	_, ok := trimmed.Column("Company")
	assert.True(t, ok)
}

func TestUniqueNames(t *testing.T) {
	assert.Equal(t, []string{"by", "A", "A.1", "by.1"}, UniqueNames([]string{"by", "A", "A", "by"}))
}

func TestColumnKind(t *testing.T) {
	assert.Equal(t, KindNumber, Column{Values: []Value{Absent(), Absent()}}.Kind())
	assert.Equal(t, KindText, Column{Values: []Value{Zero, Text("a")}}.Kind())
}

func TestTable_Equal(t *testing.T) {
	a := sampleTable(t)
	b := sampleTable(t)
	assert.True(t, a.Equal(b))

	var nilTable *Table
	assert.False(t, a.Equal(nilTable))
	assert.True(t, nilTable.Equal(nil))

	renamed, err := New(
		Column{Name: "grp", Values: []Value{Text("X"), Text("Y")}},
		Column{Name: "2020_Q1", Values: []Value{NumberFromInt(10), Absent()}},
	)
	require.NoError(t, err)
	assert.False(t, a.Equal(renamed))
}
