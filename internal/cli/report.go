package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hitprep/internal/csvio"
	"github.com/roach88/hitprep/internal/report"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Output string
}

// ReportResult is the JSON payload of the report command.
type ReportResult struct {
	Rows   [][]string `json:"rows"`
	Output string     `json:"output,omitempty"`
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report <table>",
		Short: "Report category frequencies of a table",
		Long: `Count, for every configured category value, how its records are
spread over the values of the group column.

Without --output the report is printed; with it the report is written as CSV.

Example:
  hitprep report "All annotations.csv"
  hitprep report "All annotations.csv" -o statistic_analysis.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the report to this CSV file")

	return cmd
}

func runReport(opts *ReportOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return reportError(formatter, err)
	}

	tbl, err := csvio.ReadFile(path)
	if err != nil {
		return reportError(formatter, err)
	}
	freq, err := report.Frequency(tbl, cfg.Report.CategoryColumn, cfg.Report.GroupColumn, cfg.Report.GroupValues)
	if err != nil {
		return reportError(formatter, err)
	}

	res := ReportResult{Output: opts.Output}
	for i := 0; i < freq.Len(); i++ {
		res.Rows = append(res.Rows, freq.Row(i).Values)
	}

	if opts.Output != "" {
		if err := csvio.WriteFile(opts.Output, freq, csvio.WriteOptions{}); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitFailure, ErrCodeWriteFailed, err)
		}
		return formatter.Success(res, fmt.Sprintf("Frequency report (%d rows) -> %s", freq.Len(), opts.Output))
	}

	if opts.Format == "json" {
		return formatter.Success(res, "")
	}
	return csvio.Encode(cmd.OutOrStdout(), freq, csvio.WriteOptions{})
}
