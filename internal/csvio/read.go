package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/hitprep/internal/config"
	"github.com/roach88/hitprep/internal/table"
)

// Supported input extensions.
var supportedExts = map[string]bool{
	".csv":  true,
	".tsv":  true,
	".xlsx": true,
}

// Sheet names that never hold annotation data.
var metadataSheets = map[string]bool{
	"info":     true,
	"metadata": true,
	"about":    true,
	"readme":   true,
	"notes":    true,
}

const utf8BOM = "\ufeff"

// ErrEmptyFile is returned when a file has no header row.
var ErrEmptyFile = errors.New("empty table file")

// ReadFile reads a CSV, TSV or XLSX file into a Table. The first row is the
// header; data rows are labelled 0..n-1.
func ReadFile(path string) (*table.Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv", ".tsv":
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			return nil, config.NewMissingRequiredFileError(path)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()

		comma := ','
		if ext == ".tsv" {
			comma = '\t'
		}
		t, err := Decode(f, comma)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return t, nil
	case ".xlsx":
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, config.NewMissingRequiredFileError(path)
		}
		t, err := readExcel(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
}

// Decode parses delimited text into a Table.
func Decode(r io.Reader, comma rune) (*table.Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // short rows are padded below

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	if len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], utf8BOM)
	}
	return build(records[0], records[1:])
}

func readExcel(path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in Excel file")
	}

	// First sheet that is not metadata; fall back to the last one.
	sheetName := sheets[len(sheets)-1]
	for _, sheet := range sheets {
		if !metadataSheets[strings.ToLower(sheet)] {
			sheetName = sheet
			break
		}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return build(rows[0], rows[1:])
}

// build turns a header and raw records into a Table. Header names are
// NFC-normalized and de-duplicated; short records are padded with empty
// values.
func build(header []string, records [][]string) (*table.Table, error) {
	t, err := table.New(headerNames(header)...)
	if err != nil {
		return nil, err
	}
	width := len(header)
	for i, rec := range records {
		if len(rec) > width {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(rec), width)
		}
		values := make([]string, width)
		copy(values, rec)
		if err := t.Append(i, values); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// headerNames normalizes header cells to NFC and renames repeated names
// "name.1", "name.2", ... so every column is addressable.
func headerNames(header []string) []string {
	names := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	for i, h := range header {
		name := norm.NFC.String(h)
		if taken[name] {
			base := name
			for n := 1; taken[name]; n++ {
				name = base + "." + strconv.Itoa(n)
			}
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

// ListTables returns the readable table files directly inside dir, sorted
// by name. Hidden files, directories and unsupported extensions are skipped.
func ListTables(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, config.NewMissingRequiredFileError(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !supportedExts[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// ParseString is a convenience for tests and small fixtures.
func ParseString(s string) (*table.Table, error) {
	return Decode(strings.NewReader(s), ',')
}
