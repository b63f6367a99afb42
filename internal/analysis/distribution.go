package analysis

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	apperrors "fincleaner/internal/errors"
	"fincleaner/internal/table"
)

// BoxStats is the five-number summary of one series plus its mean and the
// points outside the 1.5 IQR fences.
type BoxStats struct {
	Label    string    `json:"label"`
	Count    int       `json:"count"`
	Min      float64   `json:"min"`
	Q1       float64   `json:"q1"`
	Median   float64   `json:"median"`
	Q3       float64   `json:"q3"`
	Max      float64   `json:"max"`
	Mean     float64   `json:"mean"`
	Outliers []float64 `json:"outliers"`
}

// Describe summarises values. Quartiles are Tukey hinges.
func Describe(label string, values []float64) (BoxStats, error) {
	data := stats.Float64Data(values)
	if data.Len() == 0 {
		return BoxStats{}, fmt.Errorf("describe %s: %w", label, stats.ErrEmptyInput)
	}

	bs := BoxStats{Label: label, Count: data.Len(), Outliers: []float64{}}
	bs.Min, _ = stats.Min(data)
	bs.Max, _ = stats.Max(data)
	bs.Median, _ = stats.Median(data)
	bs.Mean, _ = stats.Mean(data)

	if data.Len() < 2 {
		bs.Q1, bs.Q3 = bs.Median, bs.Median
		return bs, nil
	}

	q, err := stats.Quartile(data)
	if err != nil {
		return BoxStats{}, fmt.Errorf("describe %s: %w", label, err)
	}
	bs.Q1, bs.Q3 = q.Q1, q.Q3

	outliers, err := stats.QuartileOutliers(data)
	if err != nil {
		return BoxStats{}, fmt.Errorf("describe %s: %w", label, err)
	}
	bs.Outliers = append(bs.Outliers, outliers.Mild...)
	bs.Outliers = append(bs.Outliers, outliers.Extreme...)
	sort.Float64s(bs.Outliers)
	return bs, nil
}

// Distribution describes every numeric column of t over its rows. Columns
// without any number are skipped.
func Distribution(t *table.Table) ([]BoxStats, error) {
	cols := NumericColumns(t)
	if len(cols) == 0 {
		return nil, apperrors.NewValidationError("table has no numeric columns")
	}

	out := make([]BoxStats, 0, len(cols))
	for _, c := range cols {
		values := numbers(c.Values)
		if len(values) == 0 {
			continue
		}
		bs, err := Describe(c.Name, values)
		if err != nil {
			return nil, err
		}
		out = append(out, bs)
	}
	return out, nil
}

func numbers(values []table.Value) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}
