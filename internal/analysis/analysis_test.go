package analysis

import (
	"context"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fincleaner/internal/errors"
	"fincleaner/internal/shared/testutil"
	"fincleaner/internal/table"
)

const cleanedForecast = `group,category,job_code,2020_Q1,2020_Q2,2020_Q3
X,1,J1,10,0,30
X,1,J2,0,5,0
Y,1,J1,4,6,8
Y,2,J3,1,0,1
Z,1,J2,2,2,0
`

func loadCSV(t *testing.T, content string, trim bool) *table.Table {
	t.Helper()
	path := testutil.WriteFile(t, t.TempDir(), "data.csv", content)
	tbl, err := (&table.CSVReader{TrimHeaders: trim}).Read(context.Background(), path)
	require.NoError(t, err)
	return tbl
}

func categoryOne(t *testing.T) *table.Table {
	t.Helper()
	filtered, err := Filter(loadCSV(t, cleanedForecast, false), Equals("category", "1"))
	require.NoError(t, err)
	return filtered
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFilter(t *testing.T) {
	tbl := loadCSV(t, cleanedForecast, false)

	tests := []struct {
		name   string
		column string
		value  string
		want   int
	}{
		{name: "numeric column", column: "category", value: "1", want: 4},
		{name: "numeric column decimal spelling", column: "category", value: "1.0", want: 4},
		{name: "numeric column non-number", column: "category", value: "one", want: 0},
		{name: "text column", column: "group", value: "Y", want: 2},
		{name: "no match", column: "group", value: "W", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Filter(tbl, Equals(tt.column, tt.value))
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.NumRows())
			assert.Equal(t, tbl.Header(), out.Header())
		})
	}

	t.Run("unknown column", func(t *testing.T) {
		_, err := Filter(tbl, Equals("region", "EU"))
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})

	t.Run("input untouched", func(t *testing.T) {
		assert.Equal(t, 5, tbl.NumRows())
	})
}

func TestDrop(t *testing.T) {
	tbl := loadCSV(t, cleanedForecast, false)

	out, err := Drop(tbl, "group", "category", "job_code")
	require.NoError(t, err)
	assert.Equal(t, []string{"2020_Q1", "2020_Q2", "2020_Q3"}, out.Header())
	assert.Equal(t, 6, tbl.NumCols())

	_, err = Drop(tbl, "group", "region")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	assert.Contains(t, err.Error(), "region")
}

func TestNumericColumnsAndDistinct(t *testing.T) {
	tbl := loadCSV(t, cleanedForecast, false)

	var names []string
	for _, c := range NumericColumns(tbl) {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"category", "2020_Q1", "2020_Q2", "2020_Q3"}, names)

	groups, err := Distinct(tbl, "group")
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y", "Z"}, groups)

	_, err = Distinct(tbl, "nope")
	assert.Error(t, err)
}

func TestDistribution(t *testing.T) {
	data, err := Drop(categoryOne(t), "group", "category", "job_code")
	require.NoError(t, err)

	dist, err := Distribution(data)
	require.NoError(t, err)
	require.Len(t, dist, 3)

	q1 := dist[0]
	assert.Equal(t, "2020_Q1", q1.Label)
	assert.Equal(t, 4, q1.Count)
	assert.Equal(t, 0.0, q1.Min)
	assert.Equal(t, 10.0, q1.Max)
	assert.Equal(t, 3.0, q1.Median)
	assert.Equal(t, 4.0, q1.Mean)

	quartiles, err := stats.Quartile(stats.Float64Data{10, 0, 4, 2})
	require.NoError(t, err)
	assert.Equal(t, quartiles.Q1, q1.Q1)
	assert.Equal(t, quartiles.Q3, q1.Q3)
	assert.Empty(t, q1.Outliers)

	t.Run("needs numeric columns", func(t *testing.T) {
		text, err := Drop(data, "2020_Q1", "2020_Q2", "2020_Q3")
		require.NoError(t, err)
		_, err = Distribution(text)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})
}

func TestDescribe(t *testing.T) {
	t.Run("outliers", func(t *testing.T) {
		bs, err := Describe("p", []float64{1, 2, 3, 4, 5, 6, 7, 100})
		require.NoError(t, err)
		assert.Equal(t, 2.5, bs.Q1)
		assert.Equal(t, 4.5, bs.Median)
		assert.Equal(t, 6.5, bs.Q3)
		assert.Equal(t, []float64{100}, bs.Outliers)
	})

	t.Run("single value", func(t *testing.T) {
		bs, err := Describe("p", []float64{7})
		require.NoError(t, err)
		assert.Equal(t, BoxStats{Label: "p", Count: 1, Min: 7, Q1: 7, Median: 7, Q3: 7, Max: 7, Mean: 7, Outliers: []float64{}}, bs)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Describe("p", nil)
		assert.ErrorIs(t, err, stats.ErrEmptyInput)
	})
}

func TestGroupTotals(t *testing.T) {
	data, err := Drop(categoryOne(t), "category")
	require.NoError(t, err)

	totals, err := GroupTotals(data, "job_code")
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "J1", totals[0].Key)
	assert.True(t, totals[0].Total.Equal(dec("58")), totals[0].Total.String())
	assert.Equal(t, "J2", totals[1].Key)
	assert.True(t, totals[1].Total.Equal(dec("9")), totals[1].Total.String())

	t.Run("numeric identifier columns are summed", func(t *testing.T) {
		totals, err := GroupTotals(categoryOne(t), "job_code")
		require.NoError(t, err)
		assert.True(t, totals[0].Total.Equal(dec("60")))
	})

	t.Run("numeric keys sort numerically", func(t *testing.T) {
		tbl := loadCSV(t, "k,v\n10,1\n2,2\n10,3\n", false)
		totals, err := GroupTotals(tbl, "k")
		require.NoError(t, err)
		assert.Equal(t, "2", totals[0].Key)
		assert.Equal(t, "10", totals[1].Key)
		assert.True(t, totals[1].Total.Equal(dec("4")))
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := GroupTotals(data, "region")
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})
}

func TestCompareGroups(t *testing.T) {
	data, err := Drop(categoryOne(t), "category")
	require.NoError(t, err)

	cmp, err := CompareGroups(data, "group", "job_code", "X", "Y")
	require.NoError(t, err)

	assert.Equal(t, []string{"J1", "J2"}, cmp.Keys)
	assert.True(t, cmp.FirstTotals[0].Equal(dec("40")))
	assert.True(t, cmp.FirstTotals[1].Equal(dec("5")))
	assert.True(t, cmp.SecondTotals[0].Equal(dec("18")))
	assert.True(t, cmp.SecondTotals[1].IsZero(), "missing key aligns to zero")

	_, err = CompareGroups(data, "group", "job_code", "X", "Q")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestCompareMetric(t *testing.T) {
	tbl := loadCSV(t, testutil.FinancialStatementsCSV, true)

	cmp, err := CompareMetric(tbl, "Company", "Revenue", "Acme", "Globex")
	require.NoError(t, err)
	assert.Equal(t, []float64{100.5, 120, 130.25}, cmp.First.Values)
	assert.InDelta(t, 116.9167, cmp.First.Average, 0.001)
	assert.Equal(t, []float64{80, 95}, cmp.Second.Values)
	assert.Equal(t, 87.5, cmp.Second.Average)
	assert.Equal(t, "Globex", cmp.Second.Stats.Label)

	tests := []struct {
		name    string
		metric  string
		first   string
		wantErr apperrors.ErrorType
	}{
		{name: "unknown company", metric: "Revenue", first: "Initech", wantErr: apperrors.ErrTypeNotFound},
		{name: "unknown metric", metric: "Profit", first: "Acme", wantErr: apperrors.ErrTypeValidation},
		{name: "text metric", metric: "Company", first: "Acme", wantErr: apperrors.ErrTypeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompareMetric(tbl, "Company", tt.metric, tt.first, "Globex")
			assert.Equal(t, tt.wantErr, apperrors.TypeOf(err))
		})
	}
}

func TestResultTables(t *testing.T) {
	data, err := Drop(categoryOne(t), "category")
	require.NoError(t, err)

	totals, err := GroupTotals(data, "job_code")
	require.NoError(t, err)
	tt, err := TotalsTable("job_code", totals)
	require.NoError(t, err)
	assert.Equal(t, []string{"job_code", "total"}, tt.Header())
	assert.Equal(t, [][]string{{"J1", "58"}, {"J2", "9"}}, tt.Records())

	cmp, err := CompareGroups(data, "group", "job_code", "X", "Y")
	require.NoError(t, err)
	ct, err := ComparisonTable(cmp)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"J1", "40", "18"}, {"J2", "5", "0"}}, ct.Records())

	bs, err := Describe("2020_Q1", []float64{1, 2, 3, 4, 5, 6, 7, 100})
	require.NoError(t, err)
	dt, err := DistributionTable([]BoxStats{bs})
	require.NoError(t, err)
	assert.Equal(t, []string{"2020_Q1", "8", "1", "2.5", "4.5", "6.5", "100", "16", "100"}, dt.Records()[0])
}

func TestResultTables_CollidingNames(t *testing.T) {
	data, err := Drop(categoryOne(t), "category")
	require.NoError(t, err)

	same, err := CompareGroups(data, "group", "job_code", "X", "X")
	require.NoError(t, err)
	ct, err := ComparisonTable(same)
	require.NoError(t, err)
	assert.Equal(t, []string{"job_code", "X", "X.1"}, ct.Header())
	assert.Equal(t, [][]string{{"J1", "40", "40"}, {"J2", "5", "5"}}, ct.Records())

	totals, err := GroupTotals(data, "job_code")
	require.NoError(t, err)
	tt, err := TotalsTable("total", totals)
	require.NoError(t, err)
	assert.Equal(t, []string{"total", "total.1"}, tt.Header())

	bs, err := Describe("Acme", []float64{1, 2})
	require.NoError(t, err)
	mt, err := MetricTable(MetricComparison{EntityColumn: "count", First: EntityMetric{Stats: bs}, Second: EntityMetric{Stats: bs}})
	require.NoError(t, err)
	assert.Equal(t, "count", mt.Header()[0])
	assert.Equal(t, "count.1", mt.Header()[1])
}
