package cli

import (
	"errors"
	"fmt"
)

// Exit codes follow linter convention: clean, findings, failure.
const (
	// ExitOK means the command completed and found nothing to report.
	ExitOK = 0
	// ExitFindings means the command completed but produced findings
	// (lint errors, discrepancy issues).
	ExitFindings = 1
	// ExitFailure means the command could not complete: bad usage,
	// unreadable config, runtime failure.
	ExitFailure = 2
)

// ExitError carries an explicit process exit code alongside the
// underlying error. Commands return it when the exit code must
// distinguish findings from failure.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError.
func NewExitError(code int, err error) *ExitError {
	return &ExitError{
		Code: code,
		Err:  err,
	}
}

// ExitCode maps an error to a process exit code: nil is a clean run, an
// ExitError anywhere in the chain supplies its code, and any other
// error is a failure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}
