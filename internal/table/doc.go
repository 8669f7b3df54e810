// Package table provides the in-memory tabular dataset shared by the
// merger, the batcher and the frequency report.
//
// A Table is column-named and row-ordered. Rows carry the label they had
// in the file they were read from, so diagnostic snapshots can show where
// each sampled record came from.
package table
