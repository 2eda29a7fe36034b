package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/notionctl/internal/failure"
)

// Process exit codes.
const (
	exitGeneral    = 1
	exitCredential = 2
	exitArgument   = 3
	exitRateLimit  = 4
)

// ExitError is an error that carries a specific process exit code.
// Cobra's RunE returns this to signal the desired exit code to main.
// Reported is set once the error report has been written to stderr.
type ExitError struct {
	Code     int
	Kind     failure.Kind
	Message  string
	Reported bool
}

func (e *ExitError) Error() string {
	return e.Message
}

// exitError creates a new ExitError with the given code, kind and formatted message.
func exitError(code int, kind failure.Kind, format string, args ...any) *ExitError {
	return &ExitError{
		Code:    code,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// argumentError is the ExitError for bad flags, arguments and options.
func argumentError(format string, args ...any) *ExitError {
	return exitError(exitArgument, failure.InvalidArgument, format, args...)
}

// exitCodeFor maps a failure kind to an exit code.
func exitCodeFor(kind failure.Kind) int {
	switch kind {
	case failure.CredentialNotFound, failure.AuthError:
		return exitCredential
	case failure.MissingArgument, failure.InvalidArgument, failure.UnknownTool:
		return exitArgument
	case failure.RateLimited:
		return exitRateLimit
	default:
		return exitGeneral
	}
}

// asExitError classifies any command error. Errors from the failure
// taxonomy keep their kind; anything else is an InternalError.
func asExitError(err error) *ExitError {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	fe := failure.As(err)
	return &ExitError{
		Code:    exitCodeFor(fe.Kind),
		Kind:    fe.Kind,
		Message: err.Error(),
	}
}

// execute runs root and writes an error report to stderr for any failure
// not already reported by a tool command. The returned error is always an
// *ExitError.
func execute(root *cobra.Command, stderr io.Writer) error {
	err := root.Execute()
	if err == nil {
		return nil
	}
	exitErr := asExitError(err)
	if !exitErr.Reported {
		report := errorReport{
			Error:   true,
			Kind:    string(exitErr.Kind),
			Message: exitErr.Message,
		}
		if rerr := render(stderr, formatJSON, report); rerr != nil {
			fmt.Fprintf(stderr, "Error: %v\n", exitErr.Message)
		}
		exitErr.Reported = true
	}
	return exitErr
}
