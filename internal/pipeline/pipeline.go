// Package pipeline runs the HIT preparation stages end to end: merge the
// annotator exports, report category frequencies, and build the batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/hitprep/internal/batch"
	"github.com/roach88/hitprep/internal/config"
	"github.com/roach88/hitprep/internal/csvio"
	"github.com/roach88/hitprep/internal/merge"
	"github.com/roach88/hitprep/internal/report"
	"github.com/roach88/hitprep/internal/table"
)

// Pipeline runs the configured stages. Create one with New.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	shuffler batch.Shuffler
	ids      RunIDGenerator
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithShuffler overrides the shuffler chosen from the batch seed.
func WithShuffler(s batch.Shuffler) Option {
	return func(p *Pipeline) {
		p.shuffler = s
	}
}

// WithRunIDGenerator sets the run ID generator. Default: UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(p *Pipeline) {
		p.ids = g
	}
}

// New creates a Pipeline for cfg. cfg is validated on Run, not here.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		logger: slog.Default(),
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.shuffler == nil {
		p.shuffler = ShufflerFor(cfg.Batch.Seed)
	}
	return p
}

// ShufflerFor returns a seeded shuffler, or a random one when seed is 0.
func ShufflerFor(seed uint64) batch.Shuffler {
	if seed == 0 {
		return batch.RandomShuffler{}
	}
	return batch.NewSeededShuffler(seed)
}

// Artifacts lists the files a run wrote.
type Artifacts struct {
	Merged     string `json:"merged"`
	Statistics string `json:"statistics"`
	Stratified string `json:"stratified"`
	Shuffled   string `json:"shuffled"`
	Output     string `json:"output"`
}

// Result summarizes a completed run.
type Result struct {
	RunID               string               `json:"run_id"`
	ConfigFingerprint   string               `json:"config_fingerprint"`
	InputFiles          []string             `json:"input_files"`
	MergedRows          int                  `json:"merged_rows"`
	InconsistentColumns []string             `json:"inconsistent_columns,omitempty"`
	Cap                 int                  `json:"cap"`
	SampledRows         int                  `json:"sampled_rows"`
	Strata              []batch.StratumCount `json:"strata"`
	Requested           int                  `json:"requested"`
	Produced            int                  `json:"produced"`
	Shortfall           bool                 `json:"shortfall"`
	Artifacts           Artifacts            `json:"artifacts"`
}

// Run executes every stage in order. The first error aborts the run;
// artifacts already written are left in place.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}

	fingerprint, err := config.Fingerprint(p.cfg)
	if err != nil {
		return nil, err
	}
	res := &Result{RunID: p.ids.Generate(), ConfigFingerprint: fingerprint}
	log := p.logger.With("run_id", res.RunID)
	log.Info("run started", "input_dir", p.cfg.InputDir, "config", fingerprint[:12])

	if err := os.MkdirAll(p.cfg.TempDir, 0755); err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}

	// Merge
	paths, err := csvio.ListTables(p.cfg.InputDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, config.NewEmptyInputSetError(p.cfg.InputDir)
	}
	res.InputFiles = paths
	merged, err := MergeFiles(paths, log)
	if err != nil {
		return nil, err
	}
	if err := csvio.WriteFile(p.cfg.MergedPath, merged.Table, csvio.WriteOptions{}); err != nil {
		return nil, fmt.Errorf("writing merged table: %w", err)
	}
	res.InconsistentColumns = merged.InconsistentColumns
	res.Artifacts.Merged = p.cfg.MergedPath
	log.Info("merged annotations", "files", len(paths), "rows", merged.Table.Len(), "path", p.cfg.MergedPath)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The downstream stages read the merged artifact, not the in-memory table.
	tbl, err := ReadMerged(p.cfg.MergedPath)
	if err != nil {
		return nil, err
	}
	res.MergedRows = tbl.Len()

	// Report
	freq, err := report.Frequency(tbl, p.cfg.Report.CategoryColumn, p.cfg.Report.GroupColumn, p.cfg.Report.GroupValues)
	if err != nil {
		return nil, err
	}
	if err := csvio.WriteFile(p.cfg.StatisticsPath(), freq, csvio.WriteOptions{}); err != nil {
		return nil, fmt.Errorf("writing frequency report: %w", err)
	}
	res.Artifacts.Statistics = p.cfg.StatisticsPath()
	log.Debug("frequency report written", "rows", freq.Len(), "path", p.cfg.StatisticsPath())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Batch
	b := &batch.Builder{
		Shuffler: p.shuffler,
		Snapshots: FileSnapshotter{Paths: map[batch.Stage]string{
			batch.StageStratified: p.cfg.StratifiedSnapshotPath(),
			batch.StageShuffled:   p.cfg.ShuffledSnapshotPath(),
		}},
		Logger: log,
	}
	packed, err := b.Build(tbl, batch.SpecFrom(p.cfg.Batch))
	if err != nil {
		return nil, err
	}
	if err := csvio.WriteFile(p.cfg.OutputPath, packed.Table, csvio.WriteOptions{}); err != nil {
		return nil, fmt.Errorf("writing batch: %w", err)
	}
	res.Artifacts.Stratified = p.cfg.StratifiedSnapshotPath()
	res.Artifacts.Shuffled = p.cfg.ShuffledSnapshotPath()
	res.Artifacts.Output = p.cfg.OutputPath
	res.Cap = packed.Sample.Cap
	res.SampledRows = packed.Sample.Table.Len()
	res.Strata = packed.Sample.Strata
	res.Requested = packed.Requested
	res.Produced = packed.Table.Len()
	res.Shortfall = packed.Shortfall

	log.Info("run finished", "hits", res.Produced, "path", p.cfg.OutputPath)
	return res, nil
}

// MergeFiles reads every path and merges the tables, logging a warning
// when their column sets differ.
func MergeFiles(paths []string, log *slog.Logger) (*merge.Result, error) {
	tables := make([]*table.Table, 0, len(paths))
	for _, path := range paths {
		t, err := csvio.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		log.Debug("read input table", "path", path, "rows", t.Len(), "columns", t.Width())
		tables = append(tables, t)
	}

	res, err := merge.Merge(tables)
	if err != nil {
		return nil, err
	}
	if !res.Consistent() {
		log.Warn("inconsistent columns across files: some files have more or fewer columns, or different header names",
			"columns", res.InconsistentColumns)
	}
	return res, nil
}

// ReadMerged reads the merged table back, reporting a missing file as a
// MISSING_REQUIRED_FILE configuration error.
func ReadMerged(path string) (*table.Table, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, config.NewMissingRequiredFileError(path)
	}
	return csvio.ReadFile(path)
}
