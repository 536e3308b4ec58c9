// Package errors provides structured error handling for tabular. Every
// failure the engines raise is synchronous and locally produced, so the
// taxonomy is small: a handful of typed categories that callers can
// branch on with IsType or errors.As.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error.
type ErrorType string

const (
	// ErrorTypeColumnNotFound represents a reference to a column name
	// absent from the table's column list.
	ErrorTypeColumnNotFound ErrorType = "column_not_found"
	// ErrorTypeShapeMismatch represents an explicit index, flag array or
	// assignment array whose length does not match the expected count.
	ErrorTypeShapeMismatch ErrorType = "shape_mismatch"
	// ErrorTypeValidation represents an invalid argument, such as a
	// negative limit or inverted clip bounds.
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeDuplicate represents an operation that would produce two
	// identical column names.
	ErrorTypeDuplicate ErrorType = "duplicate"
	// ErrorTypeUnsupported represents a configuration the engine refuses
	// loudly rather than silently degrading.
	ErrorTypeUnsupported ErrorType = "unsupported"
	// ErrorTypeData represents malformed input data on IO boundaries.
	ErrorTypeData ErrorType = "data"
	// ErrorTypeInternal represents internal invariant failures.
	ErrorTypeInternal ErrorType = "internal"
)

// Error is a structured error with a category and optional context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error.
func (e *Error) WithDetail(key string, v interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = v
	return e
}

// New creates a new error with the given type and message.
func New(errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// Newf creates a new error with a formatted message.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with additional context. Returns nil when
// err is nil.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Type: errType, Message: message, Cause: err}
}

// IsType checks if the error is of the given type.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// ColumnNotFound builds the error raised when a referenced column does
// not exist on a table. Raised before any data is scanned.
func ColumnNotFound(column string) *Error {
	return Newf(ErrorTypeColumnNotFound, "column does not exist: %q", column).
		WithDetail("column", column)
}

// ShapeMismatch builds the error raised when an array argument has the
// wrong length. what names the offending argument.
func ShapeMismatch(what string, expected, received int) *Error {
	return Newf(ErrorTypeShapeMismatch, "%s length mismatch: expected %d, received %d", what, expected, received).
		WithDetail("expected", expected).
		WithDetail("received", received)
}
