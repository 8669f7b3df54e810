package batch

import (
	"github.com/roach88/hitprep/internal/config"
	"github.com/roach88/hitprep/internal/table"
)

// StratumCount records how one (dim1, dim2) combination was sampled.
type StratumCount struct {
	Dim1      string `json:"dim1"`
	Dim2      string `json:"dim2"`
	Available int    `json:"available"`
	Selected  int    `json:"selected"`
}

// Sampled is the balanced sample drawn from a table.
type Sampled struct {
	// Table holds the selected rows in combination order.
	Table *table.Table

	// Cap is the per-combination maximum.
	Cap int

	// Strata lists every combination in iteration order.
	Strata []StratumCount
}

// StratumCap returns the per-combination sample size for totalTarget
// records spread over dim1Size x dim2Size combinations.
//
// The division is applied one dimension at a time, truncating after each
// step, and two extra records are allowed per combination. Both sizes
// must be positive.
func StratumCap(totalTarget, dim1Size, dim2Size int) int {
	c := totalTarget / dim1Size
	c = c / dim2Size
	return c + 2
}

// Sample draws a balanced sample over two categorical dimensions.
//
// Rows are first restricted to the allowed values of dim1 and then of
// dim2. For every combination (v1, v2), outer loop over dim1 values and
// inner loop over dim2 values in their given order, the first Cap matching
// rows are taken in table order. Combinations with fewer rows contribute
// all of them.
func Sample(t *table.Table, dim1, dim2 config.Stratum, totalTarget int) (*Sampled, error) {
	for _, dim := range []config.Stratum{dim1, dim2} {
		if !t.HasColumn(dim.Column) {
			return nil, config.NewMissingColumnError(dim.Column)
		}
		if len(dim.Values) == 0 {
			return nil, config.NewInvalidStratumError(dim.Column, "allowed values must be non-empty")
		}
	}

	filtered := t.WhereIn(dim1.Column, dim1.Values...).WhereIn(dim2.Column, dim2.Values...)
	limit := StratumCap(totalTarget, len(dim1.Values), len(dim2.Values))

	var (
		parts  []*table.Table
		strata []StratumCount
	)
	for _, v1 := range dim1.Values {
		sub := filtered.WhereIn(dim1.Column, v1)
		for _, v2 := range dim2.Values {
			matching := sub.WhereIn(dim2.Column, v2)
			selected := matching.Head(limit)
			parts = append(parts, selected)
			strata = append(strata, StratumCount{
				Dim1:      v1,
				Dim2:      v2,
				Available: matching.Len(),
				Selected:  selected.Len(),
			})
		}
	}

	out, err := table.Concat(t.Columns(), parts...)
	if err != nil {
		return nil, err
	}
	return &Sampled{Table: out, Cap: limit, Strata: strata}, nil
}
