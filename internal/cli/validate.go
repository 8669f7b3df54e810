package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hitprep/internal/config"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Print bool
}

// ValidationResult is the JSON payload of the validate command.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	Source string         `json:"source"`
	Config *config.Config `json:"config,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration without touching any data",
		Long: `Load the configuration named by --config (or the defaults) and run its
presence checks. Column checks need data and happen when a batch is built.

With --print the effective configuration is printed as YAML.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Print, "print", false, "print the effective configuration")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return reportError(formatter, err)
	}
	if err := cfg.Validate(); err != nil {
		return reportError(formatter, err)
	}

	source := opts.Config
	if source == "" {
		source = "defaults"
	}
	formatter.VerboseLog("Loaded configuration from %s", source)

	res := ValidationResult{Valid: true, Source: source}
	if opts.Print {
		res.Config = cfg
	}
	if opts.Format == "json" {
		return formatter.Success(res, "")
	}

	fmt.Fprintf(formatter.Writer, "✓ Configuration valid (%s)\n", source)
	if opts.Print {
		data, err := config.Marshal(cfg)
		if err != nil {
			return reportError(formatter, err)
		}
		_, err = formatter.Writer.Write(data)
		return err
	}
	return nil
}
