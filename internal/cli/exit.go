// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cli defines the process exit contract shared by all subcommands.
// Implements: prd001-server-delegation (R4);
//
//	docs/ARCHITECTURE § Exit Codes.
package cli

import "fmt"

// Exit codes used across the tool. Delegated server runs exit with
// whatever code the web frontend returned, which may collide with these;
// callers that need to tell the cases apart should read stderr.
const (
	// CodeOK is the success exit code.
	CodeOK = 0

	// CodeError is the general failure exit code.
	CodeError = 1

	// CodeUsage is the exit code for malformed invocations: unknown
	// subcommands, unknown flags, and missing required flags.
	CodeUsage = 2
)

// ExitError carries a specific process exit code alongside an error.
// main unwraps it to decide the exit status instead of always using 1.
type ExitError struct {
	Code int
	Err  error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// Usagef returns an ExitError with CodeUsage and a formatted message.
func Usagef(format string, args ...any) *ExitError {
	return &ExitError{Code: CodeUsage, Err: fmt.Errorf(format, args...)}
}

// Exit returns an ExitError carrying code. A nil err leaves only the code;
// that is how a delegated server's status is mirrored without inventing
// an error message the frontend never printed.
func Exit(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}
