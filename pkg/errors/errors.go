// Package errors provides structured, code-carrying errors for punktf.
//
// Codes are stable strings so tests and callers can branch on the category of
// a failure without matching on message text.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Source tree errors
	ErrSourceNotFound ErrorCode = "SOURCE_NOT_FOUND"
	ErrSourceInvalid  ErrorCode = "SOURCE_INVALID"

	// Profile resolution errors
	ErrProfileNotFound ErrorCode = "PROFILE_NOT_FOUND"
	ErrProfileInvalid  ErrorCode = "PROFILE_INVALID"
	ErrProfileCycle    ErrorCode = "PROFILE_CYCLE"

	// Deployment errors
	ErrDeployFailed  ErrorCode = "DEPLOY_FAILED"
	ErrDeployAborted ErrorCode = "DEPLOY_ABORTED"
	ErrNoTarget      ErrorCode = "NO_TARGET"

	// Template errors
	ErrTemplateParse  ErrorCode = "TEMPLATE_PARSE"
	ErrTemplateRender ErrorCode = "TEMPLATE_RENDER"

	// Hook errors
	ErrHookParse  ErrorCode = "HOOK_PARSE"
	ErrHookFailed ErrorCode = "HOOK_FAILED"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
)

// PunktfError represents a structured error with code and details
type PunktfError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PunktfError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PunktfError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a PunktfError with the same code
func (e *PunktfError) Is(target error) bool {
	var targetErr *PunktfError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PunktfError with the given code and message
func New(code ErrorCode, message string) *PunktfError {
	return &PunktfError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PunktfError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PunktfError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a PunktfError. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *PunktfError {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PunktfError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail adds a detail to the error
func (e *PunktfError) WithDetail(key string, value interface{}) *PunktfError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var punktfErr *PunktfError
	if errors.As(err, &punktfErr) {
		return punktfErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PunktfError
func GetErrorCode(err error) ErrorCode {
	var punktfErr *PunktfError
	if errors.As(err, &punktfErr) {
		return punktfErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a PunktfError
func GetErrorDetails(err error) map[string]interface{} {
	var punktfErr *PunktfError
	if errors.As(err, &punktfErr) {
		return punktfErr.Details
	}
	return nil
}
