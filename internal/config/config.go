package config

import (
	"path/filepath"
	"strings"
)

// Config is the complete description of one HIT preparation run.
// Paths are relative to the working directory unless absolute.
type Config struct {
	// InputDir holds the per-annotator exports to merge.
	InputDir string `yaml:"input_dir" json:"input_dir"`

	// MergedPath is where the consolidated annotations table is written.
	MergedPath string `yaml:"merged_path" json:"merged_path"`

	// TempDir receives the diagnostic artifacts (statistics and snapshots).
	TempDir string `yaml:"temp_dir" json:"temp_dir"`

	// StatisticsFile is the frequency report file name inside TempDir.
	StatisticsFile string `yaml:"statistics_file" json:"statistics_file"`

	// StratifiedSnapshot is the post-sampling snapshot file name inside TempDir.
	StratifiedSnapshot string `yaml:"stratified_snapshot" json:"stratified_snapshot"`

	// ShuffledSnapshot is the post-shuffle snapshot file name inside TempDir.
	ShuffledSnapshot string `yaml:"shuffled_snapshot" json:"shuffled_snapshot"`

	// OutputPath is where the packed HIT table is written.
	OutputPath string `yaml:"output_path" json:"output_path"`

	Report ReportConfig `yaml:"report" json:"report"`
	Batch  BatchConfig  `yaml:"batch" json:"batch"`
}

// ReportConfig selects the columns of the category frequency report.
type ReportConfig struct {
	CategoryColumn string   `yaml:"category_column" json:"category_column"`
	GroupColumn    string   `yaml:"group_column" json:"group_column"`
	GroupValues    []string `yaml:"group_values" json:"group_values"`
}

// BatchConfig controls stratified sampling and row packing.
type BatchConfig struct {
	Fields   []FieldMapping `yaml:"fields" json:"fields"`
	Dim1     Stratum        `yaml:"dim1" json:"dim1"`
	Dim2     Stratum        `yaml:"dim2" json:"dim2"`
	RowWidth int            `yaml:"row_width" json:"row_width"`
	Count    int            `yaml:"count" json:"count"`

	// Seed fixes the shuffle for reproducible runs. Zero means unseeded.
	Seed uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// FieldMapping copies Source from every sampled record into output
// columns named "{Output}_{k}".
type FieldMapping struct {
	Source string `yaml:"source" json:"source"`
	Output string `yaml:"output" json:"output"`
}

// Stratum is one categorical dimension: a column and its allowed values
// in iteration order.
type Stratum struct {
	Column string   `yaml:"column" json:"column"`
	Values []string `yaml:"values" json:"values"`
}

// Default returns the configuration of the reference annotation project.
func Default() *Config {
	return &Config{
		InputDir:           "Annotations Data",
		MergedPath:         "All annotations.csv",
		TempDir:            "Temporary csv file for analysis",
		StatisticsFile:     "statistic_analysis.csv",
		StratifiedSnapshot: "sub_csv_temp.csv",
		ShuffledSnapshot:   "Shuffle rows data.csv",
		OutputPath:         "Hits_data.csv",
		Report: ReportConfig{
			CategoryColumn: "disease",
			GroupColumn:    "talk_about",
			GroupValues:    []string{"Asthma", "HIV", "Fibromyalgia"},
		},
		Batch: BatchConfig{
			Fields: []FieldMapping{
				{Source: "tweet_id", Output: "tweet_id"},
				{Source: "user_id", Output: "user_id"},
				{Source: "text", Output: "tweet_text"},
			},
			Dim1:     Stratum{Column: "disease", Values: []string{"HIV", "Fibromyalgia", "Asthma"}},
			Dim2:     Stratum{Column: "talk_about", Values: []string{"celeb", "himself", "none"}},
			RowWidth: 5,
			Count:    18,
		},
	}
}

// StatisticsPath returns the frequency report location.
func (c *Config) StatisticsPath() string {
	return filepath.Join(c.TempDir, c.StatisticsFile)
}

// StratifiedSnapshotPath returns the post-sampling snapshot location.
func (c *Config) StratifiedSnapshotPath() string {
	return filepath.Join(c.TempDir, c.StratifiedSnapshot)
}

// ShuffledSnapshotPath returns the post-shuffle snapshot location.
func (c *Config) ShuffledSnapshotPath() string {
	return filepath.Join(c.TempDir, c.ShuffledSnapshot)
}

// Validate performs presence checks. It does not look at any data.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"input_dir", c.InputDir},
		{"merged_path", c.MergedPath},
		{"temp_dir", c.TempDir},
		{"statistics_file", c.StatisticsFile},
		{"stratified_snapshot", c.StratifiedSnapshot},
		{"shuffled_snapshot", c.ShuffledSnapshot},
		{"output_path", c.OutputPath},
		{"report.category_column", c.Report.CategoryColumn},
		{"report.group_column", c.Report.GroupColumn},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return NewInvalidConfigError("", r.name+" is required")
		}
	}

	if len(c.Report.GroupValues) == 0 {
		return NewInvalidConfigError("", "report.group_values must be non-empty")
	}

	return c.Batch.Validate()
}

// Validate checks the batch section on its own, so that commands which
// only build a batch do not need the full path layout.
func (b *BatchConfig) Validate() error {
	if len(b.Fields) == 0 {
		return NewInvalidConfigError("", "batch.fields must be non-empty")
	}
	for i, f := range b.Fields {
		if f.Source == "" || f.Output == "" {
			return NewInvalidConfigError("", "batch.fields entries need both source and output")
		}
		for _, other := range b.Fields[:i] {
			if other.Output == f.Output {
				return NewInvalidConfigError("", "duplicate output field "+f.Output)
			}
		}
	}
	for _, dim := range []Stratum{b.Dim1, b.Dim2} {
		if dim.Column == "" {
			return NewInvalidStratumError(dim.Column, "column is required")
		}
		if len(dim.Values) == 0 {
			return NewInvalidStratumError(dim.Column, "allowed values must be non-empty")
		}
	}
	if b.RowWidth < 1 {
		return NewInvalidRowWidthError(b.RowWidth)
	}
	if b.Count < 1 {
		return NewInvalidBatchCountError(b.Count)
	}
	return nil
}
