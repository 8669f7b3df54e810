package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/hitprep/internal/pipeline"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Merge, report and build the HIT batch",
		Long: `Run every stage with the configured paths.

All exports in the input directory are merged into one table, the
category frequency report is written to the temporary directory, and a
stratified, shuffled sample is packed into the HIT batch file.

Example:
  hitprep run
  hitprep run --config hitprep.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(rootOpts, cmd)
		},
	}

	return cmd
}

func runPipeline(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return reportError(formatter, err)
	}

	pipeOpts := []pipeline.Option{pipeline.WithLogger(opts.newLogger(cmd.ErrOrStderr()))}
	if opts.Shuffler != nil {
		pipeOpts = append(pipeOpts, pipeline.WithShuffler(opts.Shuffler))
	}
	if opts.RunIDs != nil {
		pipeOpts = append(pipeOpts, pipeline.WithRunIDGenerator(opts.RunIDs))
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.New(cfg, pipeOpts...).Run(ctx)
	if err != nil {
		return reportError(formatter, err)
	}

	formatter.RunID = res.RunID
	return formatter.Success(res, runSummary(res))
}

func runSummary(res *pipeline.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Merged %d file(s), %d rows -> %s\n", len(res.InputFiles), res.MergedRows, res.Artifacts.Merged)
	if len(res.InconsistentColumns) > 0 {
		fmt.Fprintf(&b, "Columns missing from some files: %s\n", strings.Join(res.InconsistentColumns, ", "))
	}
	fmt.Fprintf(&b, "Frequency report -> %s\n", res.Artifacts.Statistics)
	fmt.Fprintf(&b, "Sampled %d rows (cap %d per combination)\n", res.SampledRows, res.Cap)
	fmt.Fprintf(&b, "Wrote %d of %d HITs -> %s", res.Produced, res.Requested, res.Artifacts.Output)
	if res.Shortfall {
		b.WriteString(" (not enough sampled records)")
	}
	return b.String()
}
