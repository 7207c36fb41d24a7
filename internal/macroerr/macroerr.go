// Package macroerr defines the error type shared by every stage of macro
// expansion. All of these errors are fatal to the run that produced them.
package macroerr

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the kind of failure.
type ErrorCode int

const (
	// Lexical errors.
	ErrMacroName ErrorCode = iota
	ErrMissingBrace

	// Structural errors.
	ErrUnbalanced

	// Table errors.
	ErrRedefined
	ErrNotDefined
	ErrUndefinedMacro

	// Termination errors.
	ErrUnterminated

	// Collaborator errors.
	ErrInclude
	ErrStore

	ErrNestingLimit
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrMacroName:      "ErrMacroName",
	ErrMissingBrace:   "ErrMissingBrace",
	ErrUnbalanced:     "ErrUnbalanced",
	ErrRedefined:      "ErrRedefined",
	ErrNotDefined:     "ErrNotDefined",
	ErrUndefinedMacro: "ErrUndefinedMacro",
	ErrUnterminated:   "ErrUnterminated",
	ErrInclude:        "ErrInclude",
	ErrStore:          "ErrStore",
	ErrNestingLimit:   "ErrNestingLimit",
}

// String returns the ErrorCode as a human-readable name.
func (c ErrorCode) String() string {
	if s := errorCodeStrings[c]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(c))
}

// Error is a fatal expansion failure. The caller can use errors.As to
// recover it and inspect Code for the specific reason.
type Error struct {
	Code        ErrorCode // Describes the kind of error
	Description string    // Human-readable description of the issue
	Err         error     // Underlying cause, if any
}

// Error satisfies the error interface and prints human-readable errors.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with the given code and description.
func New(c ErrorCode, desc string) *Error {
	return &Error{Code: c, Description: desc}
}

// Newf creates an Error with a formatted description.
func Newf(c ErrorCode, format string, args ...any) *Error {
	return &Error{Code: c, Description: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error carrying an underlying cause.
func Wrap(c ErrorCode, err error, desc string) *Error {
	return &Error{Code: c, Description: desc, Err: err}
}

// Is returns true if err is, or wraps, an Error with the given code.
func Is(err error, c ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == c
	}
	return false
}
