package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/hitprep/internal/config"
)

// Error codes printed by commands.
const (
	ErrCodeGeneric             = "E001" // Generic/unknown error
	ErrCodeMissingColumn       = "E101" // Required column absent
	ErrCodeEmptyInputSet       = "E102" // No files to merge
	ErrCodeInvalidBatchCount   = "E103" // Non-positive HIT count
	ErrCodeMissingRequiredFile = "E104" // Expected file or directory absent
	ErrCodeInvalidRowWidth     = "E105" // Non-positive records per HIT
	ErrCodeInvalidStratum      = "E106" // Unusable stratification dimension
	ErrCodeInvalidConfig       = "E107" // Malformed configuration
	ErrCodeWriteFailed         = "E201" // Artifact write error
)

var configErrorCodes = map[config.ErrorCode]string{
	config.CodeMissingColumn:       ErrCodeMissingColumn,
	config.CodeEmptyInputSet:       ErrCodeEmptyInputSet,
	config.CodeInvalidBatchCount:   ErrCodeInvalidBatchCount,
	config.CodeMissingRequiredFile: ErrCodeMissingRequiredFile,
	config.CodeInvalidRowWidth:     ErrCodeInvalidRowWidth,
	config.CodeInvalidStratum:      ErrCodeInvalidStratum,
	config.CodeInvalidConfig:       ErrCodeInvalidConfig,
}

// errorDetails is the JSON detail payload for configuration errors.
type errorDetails struct {
	Kind   config.ErrorCode `json:"kind"`
	Column string           `json:"column,omitempty"`
	Path   string           `json:"path,omitempty"`
}

// reportError prints err through the formatter and returns the ExitError
// for it. Configuration errors exit with ExitCommandError, anything else
// with ExitFailure.
func reportError(f *OutputFormatter, err error) error {
	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		code, ok := configErrorCodes[cfgErr.Code]
		if !ok {
			code = ErrCodeGeneric
		}
		_ = f.Error(code, cfgErr.Message, errorDetails{
			Kind:   cfgErr.Code,
			Column: cfgErr.Column,
			Path:   cfgErr.Path,
		})
		return WrapExitError(ExitCommandError, code, err)
	}

	// Unexpected errors carry their full wrap chain: in the JSON details,
	// or as a trace on the diagnostic writer in text mode.
	chain := errorChain(err)
	if f.Format == "json" {
		_ = f.Error(ErrCodeGeneric, err.Error(), chain)
	} else {
		_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		w := f.ErrWriter
		if w == nil {
			w = f.Writer
		}
		for i, c := range chain {
			fmt.Fprintf(w, "  #%d %s\n", i, c)
		}
	}
	return WrapExitError(ExitFailure, ErrCodeGeneric, err)
}

// errorChain lists err and every error it wraps, outermost first, each
// with its concrete type.
func errorChain(err error) []string {
	var chain []string
	for err != nil {
		chain = append(chain, fmt.Sprintf("%T: %v", err, err))
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				chain = append(chain, errorChain(e)...)
			}
			break
		}
		err = errors.Unwrap(err)
	}
	return chain
}
