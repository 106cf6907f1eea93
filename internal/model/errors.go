package model

import "fmt"

// ExitCode defines the standard CLI exit codes. These codes allow scripts
// and CI systems to programmatically determine the outcome of a command.
//
// Per the error-handling policy: warnings and skipped effects never affect
// the exit code. Only a git-primitive failure or an effect failure under
// the abort policy makes a command exit non-zero.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully,
	// possibly with warnings surfaced in the report.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the configuration file could not be
	// loaded or failed validation.
	ExitConfigError ExitCode = 2

	// ExitGitError indicates a Git operation (worktree add/remove/list)
	// failed. Git failures are critical: no effect phase runs after one.
	ExitGitError ExitCode = 3

	// ExitLockError indicates the repository lock could not be acquired.
	// The command refuses to proceed rather than risk concurrent mutation
	// of worktree state.
	ExitLockError ExitCode = 4

	// ExitEffectError indicates an effect failed with continue_on_error
	// disabled while the chain policy was abort.
	ExitEffectError ExitCode = 5

	// ExitWorktreeNotFound indicates the specified worktree does not exist.
	ExitWorktreeNotFound ExitCode = 6

	// ExitUserCancelled indicates the user declined an interactive prompt.
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
