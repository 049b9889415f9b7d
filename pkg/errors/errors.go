package errors

import (
	"fmt"
)

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures sequence validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// MissingConfigError reports a required environment variable that is absent or
// empty. No step runs when this is returned.
type MissingConfigError struct {
	Variable string
}

// NewMissingConfigError constructs a MissingConfigError for the named variable.
func NewMissingConfigError(variable string) error {
	return &MissingConfigError{Variable: variable}
}

func (e *MissingConfigError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("missing configuration: environment variable %s is not set or empty", e.Variable)
}

// StepError represents a runtime failure while executing a step. ExitCode is
// -1 when the step never produced one (spawn failure, timeout, HTTP error).
type StepError struct {
	StepID   string
	ExitCode int
	Err      error
}

// NewStepError constructs a StepError.
func NewStepError(stepID string, exitCode int, err error) error {
	return &StepError{StepID: stepID, ExitCode: exitCode, Err: err}
}

func (e *StepError) Error() string {
	if e == nil {
		return ""
	}
	if e.ExitCode >= 0 {
		return fmt.Sprintf("step %s failed with exit code %d: %v", e.StepID, e.ExitCode, e.Err)
	}
	if e.StepID != "" {
		return fmt.Sprintf("step %s failed: %v", e.StepID, e.Err)
	}
	return fmt.Sprintf("step failed: %v", e.Err)
}

// Unwrap exposes the root error.
func (e *StepError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
