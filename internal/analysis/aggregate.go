package analysis

import (
	"fmt"
	"slices"
	"sort"

	"github.com/shopspring/decimal"

	apperrors "fincleaner/internal/errors"
	"fincleaner/internal/table"
)

// GroupTotal is the summed value of one group.
type GroupTotal struct {
	Key   string          `json:"key"`
	Total decimal.Decimal `json:"total"`
}

// GroupTotals groups the rows of t by column by and, for each key, sums every
// number in every other numeric column of the group's rows. Rows with an
// absent key are ignored. Keys are sorted numerically when they are all
// numbers, lexically otherwise.
func GroupTotals(t *table.Table, by string) ([]GroupTotal, error) {
	keyCol, ok := t.Column(by)
	if !ok {
		return nil, unknownColumn(by)
	}

	sums := make(map[string]decimal.Decimal)
	for _, c := range NumericColumns(t) {
		if c.Name == by {
			continue
		}
		for r, v := range c.Values {
			key := keyCol.Values[r]
			if key.IsAbsent() {
				continue
			}
			d, ok := v.Decimal()
			if !ok {
				continue
			}
			sums[key.String()] = sums[key.String()].Add(d)
		}
	}
	// Keys whose rows hold no numbers still get a zero total.
	for _, v := range keyCol.Values {
		if !v.IsAbsent() {
			if _, ok := sums[v.String()]; !ok {
				sums[v.String()] = decimal.Zero
			}
		}
	}

	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sortKeys(keys)

	out := make([]GroupTotal, len(keys))
	for i, k := range keys {
		out[i] = GroupTotal{Key: k, Total: sums[k]}
	}
	return out, nil
}

// GroupComparison holds the totals of two groups over the union of their keys.
type GroupComparison struct {
	GroupColumn  string            `json:"group_column"`
	By           string            `json:"by"`
	First        string            `json:"first"`
	Second       string            `json:"second"`
	Keys         []string          `json:"keys"`
	FirstTotals  []decimal.Decimal `json:"first_totals"`
	SecondTotals []decimal.Decimal `json:"second_totals"`
}

// CompareGroups computes GroupTotals by by for the rows of groupColumn equal
// to first and to second, aligned over the sorted union of keys. A key one
// group lacks totals zero.
func CompareGroups(t *table.Table, groupColumn, by, first, second string) (GroupComparison, error) {
	groups, err := Distinct(t, groupColumn)
	if err != nil {
		return GroupComparison{}, err
	}
	for _, g := range []string{first, second} {
		if !slices.Contains(groups, g) {
			return GroupComparison{}, apperrors.NewNotFoundError(fmt.Sprintf("group %q", g)).
				WithContext("available", groups)
		}
	}

	totalsFor := func(group string) (map[string]decimal.Decimal, error) {
		rows, err := Filter(t, Equals(groupColumn, group))
		if err != nil {
			return nil, err
		}
		totals, err := GroupTotals(rows, by)
		if err != nil {
			return nil, err
		}
		m := make(map[string]decimal.Decimal, len(totals))
		for _, gt := range totals {
			m[gt.Key] = gt.Total
		}
		return m, nil
	}

	a, err := totalsFor(first)
	if err != nil {
		return GroupComparison{}, err
	}
	b, err := totalsFor(second)
	if err != nil {
		return GroupComparison{}, err
	}

	var keys []string
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, dup := a[k]; !dup {
			keys = append(keys, k)
		}
	}
	sortKeys(keys)

	cmp := GroupComparison{
		GroupColumn:  groupColumn,
		By:           by,
		First:        first,
		Second:       second,
		Keys:         keys,
		FirstTotals:  make([]decimal.Decimal, len(keys)),
		SecondTotals: make([]decimal.Decimal, len(keys)),
	}
	for i, k := range keys {
		cmp.FirstTotals[i] = a[k]
		cmp.SecondTotals[i] = b[k]
	}
	return cmp, nil
}

// EntityMetric is one entity's values of a metric.
type EntityMetric struct {
	Name    string    `json:"name"`
	Values  []float64 `json:"values"`
	Average float64   `json:"average"`
	Stats   BoxStats  `json:"stats"`
}

// MetricComparison contrasts one numeric column between two entities.
type MetricComparison struct {
	EntityColumn string       `json:"entity_column"`
	Metric       string       `json:"metric"`
	First        EntityMetric `json:"first"`
	Second       EntityMetric `json:"second"`
}

// CompareMetric collects the non-absent values of metric for the rows of
// entityColumn equal to first and to second.
func CompareMetric(t *table.Table, entityColumn, metric, first, second string) (MetricComparison, error) {
	entities, err := Distinct(t, entityColumn)
	if err != nil {
		return MetricComparison{}, err
	}
	for _, e := range []string{first, second} {
		if !slices.Contains(entities, e) {
			return MetricComparison{}, apperrors.NewNotFoundError(fmt.Sprintf("%s %q", entityColumn, e)).
				WithContext("available", entities)
		}
	}

	col, ok := t.Column(metric)
	if !ok {
		return MetricComparison{}, unknownColumn(metric)
	}
	if col.Kind() != table.KindNumber {
		return MetricComparison{}, apperrors.NewValidationError(fmt.Sprintf("column %q is not numeric", metric)).
			WithContext("column", metric)
	}

	collect := func(entity string) (EntityMetric, error) {
		rows, err := Filter(t, Equals(entityColumn, entity))
		if err != nil {
			return EntityMetric{}, err
		}
		c, _ := rows.Column(metric)
		values := numbers(c.Values)
		if len(values) == 0 {
			return EntityMetric{}, apperrors.NewNotFoundError(fmt.Sprintf("%s values for %q", metric, entity))
		}
		bs, err := Describe(entity, values)
		if err != nil {
			return EntityMetric{}, err
		}
		return EntityMetric{Name: entity, Values: values, Average: bs.Mean, Stats: bs}, nil
	}

	cmp := MetricComparison{EntityColumn: entityColumn, Metric: metric}
	if cmp.First, err = collect(first); err != nil {
		return MetricComparison{}, err
	}
	if cmp.Second, err = collect(second); err != nil {
		return MetricComparison{}, err
	}
	return cmp, nil
}

func sortKeys(keys []string) {
	nums := make(map[string]decimal.Decimal, len(keys))
	for _, k := range keys {
		v, ok := table.ParseNumber(k)
		if !ok {
			sort.Strings(keys)
			return
		}
		nums[k], _ = v.Decimal()
	}
	sort.Slice(keys, func(i, j int) bool {
		return nums[keys[i]].LessThan(nums[keys[j]])
	})
}
