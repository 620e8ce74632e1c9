// Package domain defines core types, consumed interfaces, and errors for the
// query benchmark.
package domain

import "fmt"

// ConfigError indicates a missing or out-of-range run-configuration option.
// It is fatal: nothing is submitted once one is raised.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// TestFileError indicates a malformed test plan file. Fatal, like ConfigError.
type TestFileError struct {
	Message string
}

func (e *TestFileError) Error() string { return e.Message }

// SubmitError indicates the Data API rejected a statement outright. It fails
// the step and aborts the remaining chain for that attempt only.
type SubmitError struct {
	Message string
}

func (e *SubmitError) Error() string { return e.Message }

// PollError indicates a transient failure while polling statement status.
// Polling is retried within the remaining wait budget.
type PollError struct {
	Message string
}

func (e *PollError) Error() string { return e.Message }

// IncompleteError indicates the poll budget was exhausted before the
// statement reached a terminal status.
type IncompleteError struct {
	Message string
}

func (e *IncompleteError) Error() string { return e.Message }

// ErrConfig creates a ConfigError with a formatted message.
func ErrConfig(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// ErrTestFile creates a TestFileError with a formatted message.
func ErrTestFile(format string, args ...interface{}) *TestFileError {
	return &TestFileError{Message: fmt.Sprintf(format, args...)}
}

// ErrSubmit creates a SubmitError with a formatted message.
func ErrSubmit(format string, args ...interface{}) *SubmitError {
	return &SubmitError{Message: fmt.Sprintf(format, args...)}
}

// ErrPoll creates a PollError with a formatted message.
func ErrPoll(format string, args ...interface{}) *PollError {
	return &PollError{Message: fmt.Sprintf(format, args...)}
}

// ErrIncomplete creates an IncompleteError with a formatted message.
func ErrIncomplete(format string, args ...interface{}) *IncompleteError {
	return &IncompleteError{Message: fmt.Sprintf(format, args...)}
}
