// Command hitprep prepares crowdsourcing HIT batches from annotator exports.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/roach88/hitprep/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code. The elapsed time
// is printed on every path, including after a panic. With --format json it
// goes to stderr so stdout stays a single JSON document.
func run(args []string, stdout, stderr io.Writer) (code int) {
	start := time.Now()
	timing := stdout
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "panic: %v\n%s", r, debug.Stack())
			code = cli.ExitFailure
		}
		fmt.Fprintf(timing, "\nThe total time taken for the run program is %.2f\n", time.Since(start).Seconds())
	}()

	cmd := cli.NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if format, _ := cmd.PersistentFlags().GetString("format"); format == "json" {
		timing = stderr
	}
	if err == nil {
		return cli.ExitSuccess
	}
	// Commands print their own errors; anything else came from cobra.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return cli.GetExitCode(err)
}
