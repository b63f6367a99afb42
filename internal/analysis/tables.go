package analysis

import (
	"strings"

	"fincleaner/internal/table"
)

var boxHeader = []string{"count", "min", "q1", "median", "q3", "max", "mean", "outliers"}

// DistributionTable lays out box statistics one row per series.
func DistributionTable(dist []BoxStats) (*table.Table, error) {
	rows := make([][]table.Value, len(dist))
	for i, bs := range dist {
		rows[i] = boxRow(bs)
	}
	return build(append([]string{"period"}, boxHeader...), rows)
}

// TotalsTable lays out group totals one row per key.
func TotalsTable(by string, totals []GroupTotal) (*table.Table, error) {
	rows := make([][]table.Value, len(totals))
	for i, gt := range totals {
		rows[i] = []table.Value{table.Text(gt.Key), table.Number(gt.Total)}
	}
	return build([]string{by, "total"}, rows)
}

// ComparisonTable lays out a group comparison one row per key with a column
// per group.
func ComparisonTable(cmp GroupComparison) (*table.Table, error) {
	rows := make([][]table.Value, len(cmp.Keys))
	for i, k := range cmp.Keys {
		rows[i] = []table.Value{table.Text(k), table.Number(cmp.FirstTotals[i]), table.Number(cmp.SecondTotals[i])}
	}
	return build([]string{cmp.By, cmp.First, cmp.Second}, rows)
}

// MetricTable lays out both entities' box statistics, one row per entity.
func MetricTable(cmp MetricComparison) (*table.Table, error) {
	rows := [][]table.Value{boxRow(cmp.First.Stats), boxRow(cmp.Second.Stats)}
	return build(append([]string{cmp.EntityColumn}, boxHeader...), rows)
}

// build names the columns after user input (group, entity and key names), so
// collisions are suffixed the way a read header would be.
func build(header []string, rows [][]table.Value) (*table.Table, error) {
	t, err := table.NewWithHeader(table.UniqueNames(header)...)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := t.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func boxRow(bs BoxStats) []table.Value {
	outliers := make([]string, len(bs.Outliers))
	for i, o := range bs.Outliers {
		outliers[i] = table.NumberFromFloat(o).String()
	}
	return []table.Value{
		table.Text(bs.Label),
		table.NumberFromInt(int64(bs.Count)),
		table.NumberFromFloat(bs.Min),
		table.NumberFromFloat(bs.Q1),
		table.NumberFromFloat(bs.Median),
		table.NumberFromFloat(bs.Q3),
		table.NumberFromFloat(bs.Max),
		table.NumberFromFloat(bs.Mean),
		table.Text(strings.Join(outliers, " ")),
	}
}
