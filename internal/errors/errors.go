package errors

import (
	"fmt"
)

// HiveError is the structured error type for hivesearch. It carries the
// context needed for error handling, logging, and user presentation.
type HiveError struct {
	// Code is the unique error code (e.g., "ERR_406_INVALID_PATH").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *HiveError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *HiveError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with HiveError.
func (e *HiveError) Is(target error) bool {
	if t, ok := target.(*HiveError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *HiveError) WithDetail(key, value string) *HiveError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new HiveError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *HiveError {
	return &HiveError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a HiveError from an existing error.
// The error's message becomes the HiveError message.
func Wrap(code string, err error) *HiveError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// InvalidInput creates an input validation error.
func InvalidInput(message string) *HiveError {
	return New(ErrCodeInvalidInput, message, nil)
}

// PathError creates a root-path access error.
func PathError(message string, cause error) *HiveError {
	return New(ErrCodeInvalidPath, message, cause)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *HiveError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *HiveError {
	return New(ErrCodeInternal, message, cause)
}

// CodeOf returns the error code if err is a HiveError, or "" otherwise.
func CodeOf(err error) string {
	if he, ok := err.(*HiveError); ok {
		return he.Code
	}
	return ""
}
