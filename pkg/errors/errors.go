// Package errors provides structured error types for bookthickness.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures, surfaced at the API boundary
//   - NOT_FOUND: A requested resource does not exist
//   - TIMEOUT, CANCELED: The search was interrupted by its context
//   - INTERNAL_ERROR: An engine invariant was violated (a defect)
//
// A fixed (spine, page count) trial that has no embedding is not an error; it
// is reported as a NotFound result by package book.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSpine, "vertex %d appears twice", v)
//	if errors.Is(err, errors.ErrCodeInvalidSpine) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "search interrupted at %d pages", k)
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidEdge   Code = "INVALID_EDGE"
	ErrCodeInvalidSpine  Code = "INVALID_SPINE"
	ErrCodeInvalidPages  Code = "INVALID_PAGES"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource errors
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeFileNotFound      Code = "FILE_NOT_FOUND"
	ErrCodeResourceExhausted Code = "RESOURCE_EXHAUSTED"

	// Interruption errors
	ErrCodeTimeout  Code = "TIMEOUT"
	ErrCodeCanceled Code = "CANCELED"

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
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsValidation reports whether err carries one of the INVALID_* codes.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidEdge, ErrCodeInvalidSpine,
		ErrCodeInvalidPages, ErrCodeInvalidFormat, ErrCodeInvalidConfig:
		return true
	}
	return false
}

// Interrupted converts a context error into a TIMEOUT or CANCELED error.
// Other errors are returned unchanged.
func Interrupted(err error, format string, args ...any) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(ErrCodeTimeout, err, format, args...)
	case errors.Is(err, context.Canceled):
		return Wrap(ErrCodeCanceled, err, format, args...)
	}
	return err
}
