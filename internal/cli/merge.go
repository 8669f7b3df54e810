package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hitprep/internal/config"
	"github.com/roach88/hitprep/internal/csvio"
	"github.com/roach88/hitprep/internal/pipeline"
)

// MergeOptions holds flags for the merge command.
type MergeOptions struct {
	*RootOptions
	Output string
}

// MergeResult is the JSON payload of the merge command.
type MergeResult struct {
	Files               []string `json:"files"`
	Rows                int      `json:"rows"`
	Columns             []string `json:"columns"`
	InconsistentColumns []string `json:"inconsistent_columns,omitempty"`
	Output              string   `json:"output"`
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MergeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "merge [input-dir]",
		Short: "Merge annotator exports into one table",
		Long: `Merge every CSV, TSV and XLSX file in a directory into one table.

Columns are the union of all input columns. Files lacking a column get
empty values in it, and a warning is logged.

Example:
  hitprep merge "Annotations Data" -o "All annotations.csv"`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "merged table path (default: merged_path from config)")

	return cmd
}

func runMerge(opts *MergeOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	log := opts.newLogger(cmd.ErrOrStderr())

	cfg, err := opts.loadConfig()
	if err != nil {
		return reportError(formatter, err)
	}
	dir := cfg.InputDir
	if len(args) == 1 {
		dir = args[0]
	}
	out := cfg.MergedPath
	if opts.Output != "" {
		out = opts.Output
	}

	paths, err := csvio.ListTables(dir)
	if err != nil {
		return reportError(formatter, err)
	}
	if len(paths) == 0 {
		return reportError(formatter, config.NewEmptyInputSetError(dir))
	}
	formatter.VerboseLog("Found %d table(s) in %s", len(paths), dir)

	merged, err := pipeline.MergeFiles(paths, log)
	if err != nil {
		return reportError(formatter, err)
	}
	if err := csvio.WriteFile(out, merged.Table, csvio.WriteOptions{}); err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, ErrCodeWriteFailed, err)
	}

	res := MergeResult{
		Files:               paths,
		Rows:                merged.Table.Len(),
		Columns:             merged.Table.Columns(),
		InconsistentColumns: merged.InconsistentColumns,
		Output:              out,
	}
	return formatter.Success(res, fmt.Sprintf("Merged %d file(s), %d rows -> %s", len(paths), res.Rows, out))
}
