// Package csvio moves tables between disk and memory.
//
// Reading accepts the formats annotators export: comma-separated (.csv),
// tab-separated (.tsv) and Excel workbooks (.xlsx). Writing always
// produces comma-separated UTF-8 with a header row, optionally preceded
// by an unnamed index column holding each row's label.
package csvio
