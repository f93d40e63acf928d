package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"go.uber.org/zap"
)

// exitFailure is the code for errors that carry no specific exit code.
const exitFailure = 1

// ExitError is an error that maps to a process exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: %v (exit code %d)", e.Message, e.Err, e.Code)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitError creates an error that will cause the CLI to exit with the given code.
func exitError(code int, message string, err error) error {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitWithCode logs a failure and returns it as an ExitError.
func ExitWithCode(logger *zap.Logger, code int, message string, err error) error {
	logger.Error(message, zap.Int("exit_code", code), zap.Error(err))
	return exitError(code, message, err)
}

// ExitCode returns the process exit code for err. Interrupted contexts map
// to the SIGINT code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, context.Canceled) {
		return foundry.ExitSignalInt
	}
	return exitFailure
}
