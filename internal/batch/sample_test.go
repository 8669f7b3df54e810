package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hitprep/internal/config"
	"github.com/roach88/hitprep/internal/csvio"
	"github.com/roach88/hitprep/internal/table"
	"github.com/roach88/hitprep/internal/testutil"
)

func parse(t *testing.T, s string) *table.Table {
	t.Helper()
	tbl, err := csvio.ParseString(s)
	require.NoError(t, err)
	return tbl
}

func TestStratumCap(t *testing.T) {
	tests := []struct {
		total, d1, d2 int
		want          int
	}{
		{90, 3, 3, 12},
		{4, 2, 1, 4},
		// Truncation happens after each division
		{10, 3, 3, 3},
		{5, 3, 3, 2},
		{0, 3, 3, 2},
		{100, 1, 1, 102},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StratumCap(tt.total, tt.d1, tt.d2), "StratumCap(%d, %d, %d)", tt.total, tt.d1, tt.d2)
	}
}

func TestSample_NestedOrder(t *testing.T) {
	tbl := parse(t, "id,disease,talk_about\n"+
		"1,B,y\n2,A,y\n3,B,x\n4,A,x\n5,C,x\n6,A,z\n")

	s, err := Sample(tbl,
		config.Stratum{Column: "disease", Values: []string{"A", "B"}},
		config.Stratum{Column: "talk_about", Values: []string{"x", "y"}},
		4)
	require.NoError(t, err)

	// Cap is 4/2/2+2 = 3, so every combination is taken whole
	assert.Equal(t, 3, s.Cap)
	ids, _ := s.Table.Column("id")
	assert.Equal(t, []string{"4", "2", "3", "1"}, ids)
	assert.Equal(t, []int{3, 1, 2, 0}, s.Table.Labels())
	assert.Equal(t, tbl.Columns(), s.Table.Columns())

	assert.Equal(t, []StratumCount{
		{Dim1: "A", Dim2: "x", Available: 1, Selected: 1},
		{Dim1: "A", Dim2: "y", Available: 1, Selected: 1},
		{Dim1: "B", Dim2: "x", Available: 1, Selected: 1},
		{Dim1: "B", Dim2: "y", Available: 1, Selected: 1},
	}, s.Strata)
}

func TestSample_CapsEachCombination(t *testing.T) {
	// 3 files of 30 records: combinations 0-2 have 12 records, the rest 9
	var tables []*table.Table
	for f := 0; f < 3; f++ {
		tables = append(tables, parse(t, testutil.AnnotationCSV(30, f*30)))
	}
	all, err := table.Concat(tables[0].Columns(), tables...)
	require.NoError(t, err)

	dim1 := config.Stratum{Column: "disease", Values: testutil.Diseases}
	dim2 := config.Stratum{Column: "talk_about", Values: testutil.TalkAbout}

	s, err := Sample(all, dim1, dim2, 45)
	require.NoError(t, err)

	// 45/3/3+2 = 7
	require.Equal(t, 7, s.Cap)
	assert.Equal(t, 63, s.Table.Len())
	for _, sc := range s.Strata {
		assert.Equal(t, 7, sc.Selected, "%s/%s", sc.Dim1, sc.Dim2)
		assert.Equal(t, min(sc.Available, s.Cap), sc.Selected)
	}

	// First combination is HIV/celeb and takes rows in table order
	ids, _ := s.Table.Column("tweet_id")
	assert.Equal(t, []string{"1", "10", "19", "28", "31", "40", "49"}, ids[:7])
}

func TestSample_ShortCombinations(t *testing.T) {
	tbl := parse(t, "id,d1,d2\n1,A,x\n2,A,x\n3,A,x\n4,B,x\n")

	s, err := Sample(tbl,
		config.Stratum{Column: "d1", Values: []string{"A", "B"}},
		config.Stratum{Column: "d2", Values: []string{"x", "y"}},
		0)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Cap)
	ids, _ := s.Table.Column("id")
	assert.Equal(t, []string{"1", "2", "4"}, ids)
	assert.Equal(t, 0, s.Strata[1].Available)
	assert.Equal(t, 0, s.Strata[3].Selected)
}

func TestSample_Errors(t *testing.T) {
	tbl := parse(t, "id,disease\n1,A\n")

	_, err := Sample(tbl,
		config.Stratum{Column: "disease", Values: []string{"A"}},
		config.Stratum{Column: "talk_about", Values: []string{"x"}},
		10)
	require.Error(t, err)
	assert.True(t, config.HasCode(err, config.CodeMissingColumn))
	assert.Contains(t, err.Error(), "talk_about")

	_, err = Sample(tbl,
		config.Stratum{Column: "disease"},
		config.Stratum{Column: "id", Values: []string{"1"}},
		10)
	require.Error(t, err)
	assert.True(t, config.HasCode(err, config.CodeInvalidStratum))
}
