// Package batch builds HIT batches from annotated records.
//
// A build runs four steps:
//
//  1. Stratified sampling: rows are restricted to the allowed values of two
//     categorical dimensions and at most Cap rows are taken from every
//     (dim1, dim2) combination. Cap is RowWidth*Count divided by the size
//     of each dimension in turn, plus two.
//  2. Shuffling: the sample is permuted uniformly at random.
//  3. Packing: every RowWidth consecutive records become one output row
//     whose columns are "{output}_{k}" for k in 1..RowWidth.
//  4. Truncation: packing stops after Count rows; leftover records are
//     dropped.
//
// The stratified and shuffled tables are handed to a Snapshotter so runs
// can be audited. A sample too small to fill Count rows produces fewer
// rows and a warning, never an error.
package batch
