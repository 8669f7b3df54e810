package csvio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/roach88/hitprep/internal/table"
)

// WriteOptions controls how a table is written.
type WriteOptions struct {
	// Index prepends the row labels as an unnamed first column.
	Index bool
}

// Encode writes t as comma-delimited UTF-8 text with a header row.
func Encode(w io.Writer, t *table.Table, opts WriteOptions) error {
	cw := csv.NewWriter(w)

	header := t.Columns()
	if opts.Index {
		header = append([]string{""}, header...)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		record := row.Values
		if opts.Index {
			record = append([]string{strconv.Itoa(row.Label)}, row.Values...)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes t to path, creating parent directories as needed.
// The file is flushed and closed on every path; the first error wins.
func WriteFile(path string, t *table.Table, opts WriteOptions) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", path, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := Encode(bw, t, opts); err != nil {
		_ = bw.Flush()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
