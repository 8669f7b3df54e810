package table

import (
	"fmt"
	"sort"
)

// Table is an ordered set of named columns over an ordered sequence of rows.
//
// Every row holds exactly one value per column. Missing values are the
// empty string. A Table is never modified by the operations below: each
// one returns a new Table that shares row values with its source.
type Table struct {
	columns []string
	index   map[string]int
	rows    []Row
}

// Row is one record. Label is the row's position in the table it was
// originally read from and survives filtering, slicing and permutation.
type Row struct {
	Label  int
	Values []string
}

// New creates an empty table with the given columns.
// Column names must be unique.
func New(columns ...string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		index[c] = i
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{columns: cols, index: index}, nil
}

// MustNew is like New but panics on duplicate columns. Intended for tests
// and for column sets built by this package's callers from unique names.
func MustNew(columns ...string) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.columns)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// HasColumn reports whether the table has a column named name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Append adds a row. values must have one entry per column.
func (t *Table) Append(label int, values []string) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row %d has %d values, table has %d columns", label, len(values), len(t.columns))
	}
	t.rows = append(t.rows, Row{Label: label, Values: values})
	return nil
}

// Row returns the i-th row.
func (t *Table) Row(i int) Row {
	return t.rows[i]
}

// Value returns the value of column col in row i, or "" if the column
// does not exist.
func (t *Table) Value(i int, col string) string {
	c, ok := t.index[col]
	if !ok {
		return ""
	}
	return t.rows[i].Values[c]
}

// Column returns all values of the named column in row order.
func (t *Table) Column(name string) ([]string, bool) {
	c, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Values[c]
	}
	return out, true
}

// Labels returns the row labels in row order.
func (t *Table) Labels() []int {
	out := make([]int, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Label
	}
	return out
}

// derive returns a table over rows that shares t's columns.
func (t *Table) derive(rows []Row) *Table {
	return &Table{columns: t.columns, index: t.index, rows: rows}
}

// WhereIn keeps the rows whose value in col is one of allowed.
// An unknown column yields an empty table.
func (t *Table) WhereIn(col string, allowed ...string) *Table {
	c, ok := t.index[col]
	if !ok {
		return t.derive(nil)
	}
	set := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		set[v] = struct{}{}
	}
	var rows []Row
	for _, r := range t.rows {
		if _, keep := set[r.Values[c]]; keep {
			rows = append(rows, r)
		}
	}
	return t.derive(rows)
}

// Head returns the first n rows (all of them when the table is shorter).
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.rows) {
		n = len(t.rows)
	}
	return t.derive(t.rows[:n:n])
}

// Permute returns the rows reordered so that row i of the result is row
// perm[i] of t. perm must be a permutation of 0..Len()-1.
func (t *Table) Permute(perm []int) (*Table, error) {
	if len(perm) != len(t.rows) {
		return nil, fmt.Errorf("permutation has %d entries, table has %d rows", len(perm), len(t.rows))
	}
	seen := make([]bool, len(perm))
	rows := make([]Row, len(perm))
	for i, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return nil, fmt.Errorf("invalid permutation entry %d at %d", p, i)
		}
		seen[p] = true
		rows[i] = t.rows[p]
	}
	return t.derive(rows), nil
}

// Distinct returns the distinct values of col, sorted.
func (t *Table) Distinct(col string) []string {
	c, ok := t.index[col]
	if !ok {
		return nil
	}
	set := make(map[string]struct{})
	for _, r := range t.rows {
		set[r.Values[c]] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Concat appends the rows of all tables in order. All tables must have
// the same columns in the same order; labels are kept.
func Concat(columns []string, tables ...*Table) (*Table, error) {
	out, err := New(columns...)
	if err != nil {
		return nil, err
	}
	for i, t := range tables {
		if !sameColumns(out.columns, t.columns) {
			return nil, fmt.Errorf("table %d has columns %v, want %v", i, t.columns, out.columns)
		}
		out.rows = append(out.rows, t.rows...)
	}
	return out, nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
