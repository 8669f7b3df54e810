package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/hitprep/internal/batch"
	"github.com/roach88/hitprep/internal/csvio"
	"github.com/roach88/hitprep/internal/pipeline"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Output    string
	Width     int
	Count     int
	Seed      uint64
	Snapshots string
}

// BatchResult is the JSON payload of the batch command.
type BatchResult struct {
	Cap         int                  `json:"cap"`
	SampledRows int                  `json:"sampled_rows"`
	Strata      []batch.StratumCount `json:"strata"`
	Requested   int                  `json:"requested"`
	Produced    int                  `json:"produced"`
	Shortfall   bool                 `json:"shortfall"`
	Output      string               `json:"output"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <table>",
		Short: "Build a HIT batch from a merged table",
		Long: `Draw a stratified sample from a table, shuffle it and pack it into
HIT rows of --width records each.

Flags override the batch section of the configuration.

Example:
  hitprep batch "All annotations.csv" -o Hits_data.csv
  hitprep batch "All annotations.csv" --width 4 --count 25 --seed 7`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "batch path (default: output_path from config)")
	cmd.Flags().IntVar(&opts.Width, "width", 0, "records per HIT (default: batch.row_width)")
	cmd.Flags().IntVar(&opts.Count, "count", 0, "number of HITs (default: batch.count)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "shuffle seed, 0 for random (default: batch.seed)")
	cmd.Flags().StringVar(&opts.Snapshots, "snapshots", "", "directory for the stratified and shuffled snapshots (default: none)")

	return cmd
}

func runBatch(opts *BatchOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return reportError(formatter, err)
	}
	if cmd.Flags().Changed("width") {
		cfg.Batch.RowWidth = opts.Width
	}
	if cmd.Flags().Changed("count") {
		cfg.Batch.Count = opts.Count
	}
	if cmd.Flags().Changed("seed") {
		cfg.Batch.Seed = opts.Seed
	}
	if err := cfg.Batch.Validate(); err != nil {
		return reportError(formatter, err)
	}
	out := cfg.OutputPath
	if opts.Output != "" {
		out = opts.Output
	}

	tbl, err := pipeline.ReadMerged(path)
	if err != nil {
		return reportError(formatter, err)
	}

	b := &batch.Builder{
		Shuffler: opts.Shuffler,
		Logger:   opts.newLogger(cmd.ErrOrStderr()),
	}
	if b.Shuffler == nil {
		b.Shuffler = pipeline.ShufflerFor(cfg.Batch.Seed)
	}
	if opts.Snapshots != "" {
		b.Snapshots = pipeline.FileSnapshotter{Paths: map[batch.Stage]string{
			batch.StageStratified: filepath.Join(opts.Snapshots, cfg.StratifiedSnapshot),
			batch.StageShuffled:   filepath.Join(opts.Snapshots, cfg.ShuffledSnapshot),
		}}
	}

	packed, err := b.Build(tbl, batch.SpecFrom(cfg.Batch))
	if err != nil {
		return reportError(formatter, err)
	}
	if err := csvio.WriteFile(out, packed.Table, csvio.WriteOptions{}); err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, ErrCodeWriteFailed, err)
	}

	res := BatchResult{
		Cap:         packed.Sample.Cap,
		SampledRows: packed.Sample.Table.Len(),
		Strata:      packed.Sample.Strata,
		Requested:   packed.Requested,
		Produced:    packed.Table.Len(),
		Shortfall:   packed.Shortfall,
		Output:      out,
	}
	text := fmt.Sprintf("Wrote %d of %d HITs -> %s", res.Produced, res.Requested, out)
	return formatter.Success(res, text)
}
