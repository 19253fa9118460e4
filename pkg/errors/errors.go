// Package errors defines the coded errors shared by the infection CLI and
// HTTP API.
//
// Every failure that reaches a user carries a [Code]. The CLI turns usage
// codes into exit status 2, and the server writes the code and [Detail] into
// its JSON error body.
//
//	err := errors.New(errors.ErrCodeUnknownNode, "seed %q does not exist", name)
//	if errors.Is(err, errors.ErrCodeUnknownNode) {
//	    ...
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	// Bad user input
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidGraph  Code = "INVALID_GRAPH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPolicy Code = "INVALID_POLICY"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Missing resources
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeUnknownNode  Code = "UNKNOWN_NODE"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Snapshot backend failures
	ErrCodeStore Code = "STORE_ERROR"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Usage reports whether c describes a mistake in how the tool was invoked
// rather than a failure while running.
func (c Code) Usage() bool {
	switch c {
	case ErrCodeInvalidInput, ErrCodeInvalidPolicy, ErrCodeInvalidConfig, ErrCodeUnknownNode:
		return true
	}
	return false
}

// Error is an error with a code, a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// as finds the outermost *Error in err's chain.
func as(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := as(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix or cause. Errors
// without a code are returned as their Error string.
func UserMessage(err error) string {
	if e, ok := as(err); ok {
		return e.Message
	}
	return err.Error()
}

// Detail is UserMessage followed by the cause, if any.
func Detail(err error) string {
	e, ok := as(err)
	if !ok {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}
