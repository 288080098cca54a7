package model

import "fmt"

// ExitCode defines the process exit codes of the CLI.
// Every fatal condition maps to a non-zero code so that scripts wrapping
// ts-scaffold can tell a refused target directory from a failed npm run.
type ExitCode int

const (
	// ExitSuccess indicates the scaffold completed.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error, typically a
	// filesystem failure such as a permission error or a full disk.
	ExitGeneralError ExitCode = 1

	// ExitUsageError indicates invalid input: an unknown option, a target
	// directory that already exists, or "." in a non-empty directory.
	ExitUsageError ExitCode = 2

	// ExitCommandFailed indicates an external command (npm, tsc, git)
	// exited non-zero or could not be started.
	ExitCommandFailed ExitCode = 3

	// ExitInvalidDocument indicates a generated tsconfig.json or
	// package.json failed to parse or validate.
	ExitInvalidDocument ExitCode = 4

	// ExitUserCancelled indicates the user closed an interactive prompt.
	ExitUserCancelled ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
