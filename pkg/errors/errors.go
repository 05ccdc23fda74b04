// Package errors provides structured error types for monist.
//
// Every failure that reaches the command line carries a machine-readable
// [Code] so callers can tell the error families apart:
//   - structural errors (duplicate member names, dependency cycles, missing
//     workspace declarations) abort before any plan is computed
//   - input errors (bad versions, bad configuration) abort before any write
//   - execution errors report the first failing subprocess
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidVersion, "%s is not a valid semver version", v)
//	if errors.Is(err, errors.ErrCodeInvalidVersion) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidManifest, origErr, "cannot read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Structural errors
	ErrCodeDuplicateMember    Code = "DUPLICATE_MEMBER_NAME"
	ErrCodeCyclicDependency   Code = "CYCLIC_DEPENDENCY"
	ErrCodeMissingWorkspaces  Code = "MISSING_MEMBER_DECLARATION"
	ErrCodeVerificationFailed Code = "VERIFICATION_FAILED"

	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidVersion  Code = "INVALID_VERSION"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeScriptConflict  Code = "SCRIPT_CONFLICT"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Execution errors
	ErrCodeCommandFailed Code = "COMMAND_FAILED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or *CommandError with a
// matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not a coded error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message (and cause) without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

// CommandError describes a subprocess that did not exit cleanly.
type CommandError struct {
	Dir      string // Working directory of the process
	Command  string // Pretty-printed command line
	ExitCode int    // Exit status, -1 when the process was signaled
	Signal   string // Terminating signal name, empty when the process exited
	Cause    error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Signal != "" {
		return fmt.Sprintf("%s: %s terminated by signal %s", e.Dir, e.Command, e.Signal)
	}
	return fmt.Sprintf("%s: %s exited with code %d", e.Dir, e.Command, e.ExitCode)
}

// Unwrap returns the underlying cause.
func (e *CommandError) Unwrap() error {
	return e.Cause
}

// Code returns the error code for this error type.
func (e *CommandError) Code() Code {
	return ErrCodeCommandFailed
}
