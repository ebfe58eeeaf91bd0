// Package errors provides structured error types for repolens.
//
// Every failure that crosses a component boundary carries a machine-readable
// [Code] so callers can decide whether to skip, fall back, or abort. None of
// the codes below abort sibling work inside a run:
//   - TRANSIENT_FETCH: the repository host failed or timed out
//   - MALFORMED_MANIFEST: a dependency manifest could not be parsed
//   - ORACLE_CONTRACT: the oracle returned output that does not match the
//     requested shape
//   - INVALID_REPOSITORY: an identity is missing its owner or name
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidRepository, "missing owner for %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidRepository) {
//	    // skip and report
//	}
//
//	err := errors.Wrap(errors.ErrCodeTransientFetch, origErr, "readme for %s", repo)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Pipeline taxonomy
	ErrCodeTransientFetch    Code = "TRANSIENT_FETCH"
	ErrCodeMalformedManifest Code = "MALFORMED_MANIFEST"
	ErrCodeOracleContract    Code = "ORACLE_CONTRACT"
	ErrCodeInvalidRepository Code = "INVALID_REPOSITORY"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Authentication errors
	ErrCodeUnauthorized Code = "UNAUTHORIZED"

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
// Only the outermost *Error in the chain is consulted.
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

// UserMessage returns the message without the code prefix for *Error values
// and the plain error string otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Skippable reports whether err belongs to the taxonomy of failures that
// degrade a single repository rather than the whole run.
func Skippable(err error) bool {
	switch GetCode(err) {
	case ErrCodeTransientFetch, ErrCodeMalformedManifest, ErrCodeOracleContract,
		ErrCodeInvalidRepository, ErrCodeNotFound, ErrCodeNetwork, ErrCodeTimeout:
		return true
	}
	return false
}

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
	Message    string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	if e.Message != "" {
		return "rate limited: " + e.Message
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
