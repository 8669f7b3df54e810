package config

import (
	"errors"
	"fmt"
)

// Error represents an unrecoverable configuration problem detected while
// preparing a batch.
//
// Configuration errors include:
//   - Missing column: a required source column is absent from the table
//   - Empty input set: there are no files to merge
//   - Invalid batch count: zero or negative number of HITs requested
//   - Missing required file: an upstream artifact does not exist on disk
//
// Error is propagated to the top-level handler, which prints Message and
// maps Code to a process exit code.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Column names the offending column (MissingColumn, InvalidStratum).
	Column string

	// Path names the offending file or directory.
	Path string
}

// ErrorCode categorizes configuration errors.
type ErrorCode string

const (
	// CodeMissingColumn indicates a required column is not in the table.
	CodeMissingColumn ErrorCode = "MISSING_COLUMN"

	// CodeEmptyInputSet indicates there are no tables to merge.
	CodeEmptyInputSet ErrorCode = "EMPTY_INPUT_SET"

	// CodeInvalidBatchCount indicates a non-positive batch count.
	CodeInvalidBatchCount ErrorCode = "INVALID_BATCH_COUNT"

	// CodeMissingRequiredFile indicates an expected file or directory is absent.
	CodeMissingRequiredFile ErrorCode = "MISSING_REQUIRED_FILE"

	// CodeInvalidRowWidth indicates a non-positive number of records per HIT.
	CodeInvalidRowWidth ErrorCode = "INVALID_ROW_WIDTH"

	// CodeInvalidStratum indicates a stratification dimension without a
	// column or without allowed values.
	CodeInvalidStratum ErrorCode = "INVALID_STRATUM"

	// CodeInvalidConfig indicates a malformed or incomplete configuration file.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode reports whether err is (or wraps) a configuration error with code.
func HasCode(err error, code ErrorCode) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// IsConfigError reports whether err is (or wraps) a configuration error.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// NewMissingColumnError creates an Error for a column absent from the table.
func NewMissingColumnError(column string) *Error {
	return &Error{
		Code:    CodeMissingColumn,
		Message: fmt.Sprintf("The '%s' does not exist", column),
		Column:  column,
	}
}

// NewEmptyInputSetError creates an Error for a merge with nothing to merge.
func NewEmptyInputSetError(dir string) *Error {
	return &Error{
		Code:    CodeEmptyInputSet,
		Message: "There are no files that need to be consolidated.",
		Path:    dir,
	}
}

// NewInvalidBatchCountError creates an Error for a non-positive batch count.
func NewInvalidBatchCountError(count int) *Error {
	return &Error{
		Code:    CodeInvalidBatchCount,
		Message: fmt.Sprintf("The number of hits can not be '%d'", count),
	}
}

// NewInvalidRowWidthError creates an Error for a non-positive row width.
func NewInvalidRowWidthError(width int) *Error {
	return &Error{
		Code:    CodeInvalidRowWidth,
		Message: fmt.Sprintf("The number of tweets per hit can not be '%d'", width),
	}
}

// NewMissingRequiredFileError creates an Error for an absent file.
func NewMissingRequiredFileError(path string) *Error {
	return &Error{
		Code:    CodeMissingRequiredFile,
		Message: fmt.Sprintf("The '%s' does not exist!", path),
		Path:    path,
	}
}

// NewInvalidStratumError creates an Error for an unusable stratification dimension.
func NewInvalidStratumError(column, reason string) *Error {
	return &Error{
		Code:    CodeInvalidStratum,
		Message: fmt.Sprintf("stratum %q: %s", column, reason),
		Column:  column,
	}
}

// NewInvalidConfigError creates an Error for a malformed configuration.
func NewInvalidConfigError(path, reason string) *Error {
	return &Error{
		Code:    CodeInvalidConfig,
		Message: reason,
		Path:    path,
	}
}
