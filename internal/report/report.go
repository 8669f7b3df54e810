// Package report summarizes how a category column is distributed across
// the values of another column.
package report

import (
	"fmt"

	"github.com/roach88/hitprep/internal/config"
	"github.com/roach88/hitprep/internal/table"
)

// AmountColumn is the name of the count column in a frequency report.
const AmountColumn = "amount of tweets"

// Frequency builds a frequency report.
//
// For every value v of groupValues, in order, the rows whose categoryColumn
// equals v form a subset. For every distinct value d of groupColumn across
// the whole table, in sorted order, one report row is emitted:
// (v, d, "matched / subset") where matched counts subset rows whose
// groupColumn equals d.
func Frequency(t *table.Table, categoryColumn, groupColumn string, groupValues []string) (*table.Table, error) {
	for _, c := range []string{categoryColumn, groupColumn} {
		if !t.HasColumn(c) {
			return nil, config.NewMissingColumnError(c)
		}
	}

	out, err := table.New(categoryColumn, groupColumn, AmountColumn)
	if err != nil {
		return nil, fmt.Errorf("report columns: %w", err)
	}

	distinct := t.Distinct(groupColumn)
	for _, v := range groupValues {
		subset := t.WhereIn(categoryColumn, v)
		counts := make(map[string]int, len(distinct))
		groups, _ := subset.Column(groupColumn)
		for _, g := range groups {
			counts[g]++
		}
		for _, d := range distinct {
			cell := fmt.Sprintf("%d / %d", counts[d], subset.Len())
			if err := out.Append(out.Len(), []string{v, d, cell}); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
