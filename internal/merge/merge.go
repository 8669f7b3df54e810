// Package merge consolidates per-annotator tables into one dataset.
package merge

import (
	"github.com/roach88/hitprep/internal/config"
	"github.com/roach88/hitprep/internal/table"
)

// Result is the outcome of a merge.
type Result struct {
	// Table holds every input row, in input order, under the union of the
	// input columns.
	Table *table.Table

	// ColumnCounts maps each column name to the number of inputs that
	// carry it.
	ColumnCounts map[string]int

	// InconsistentColumns lists, in column order, the columns that are
	// missing from at least one input. Rows from those inputs have empty
	// values under these columns.
	InconsistentColumns []string
}

// Consistent reports whether every input had the same column set.
func (r *Result) Consistent() bool {
	return len(r.InconsistentColumns) == 0
}

// Merge concatenates tables under the union of their columns. Each column
// name appears once, in the order it is first seen. Row labels are kept
// from the inputs.
//
// An empty input list is a configuration error.
func Merge(tables []*table.Table) (*Result, error) {
	if len(tables) == 0 {
		return nil, config.NewEmptyInputSetError("")
	}

	var columns []string
	counts := make(map[string]int)
	for _, t := range tables {
		for _, c := range t.Columns() {
			if counts[c] == 0 {
				columns = append(columns, c)
			}
			counts[c]++
		}
	}

	merged, err := table.New(columns...)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		// Position of each merged column in t, or -1 when t lacks it.
		src := make([]int, len(columns))
		for i, c := range columns {
			src[i] = -1
			if j, ok := t.ColumnIndex(c); ok {
				src[i] = j
			}
		}
		for i := 0; i < t.Len(); i++ {
			row := t.Row(i)
			values := make([]string, len(columns))
			for k, j := range src {
				if j >= 0 {
					values[k] = row.Values[j]
				}
			}
			if err := merged.Append(row.Label, values); err != nil {
				return nil, err
			}
		}
	}

	var inconsistent []string
	for _, c := range columns {
		if counts[c] != len(tables) {
			inconsistent = append(inconsistent, c)
		}
	}

	return &Result{
		Table:               merged,
		ColumnCounts:        counts,
		InconsistentColumns: inconsistent,
	}, nil
}
