// Package analysis derives report data from cleaned tables: row filters,
// column drops, box statistics per period, group totals and two-way
// comparisons. Every function returns new values and leaves its input alone.
package analysis
