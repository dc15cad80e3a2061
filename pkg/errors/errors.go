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
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"
	ErrNotFound ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad       ErrorCode = "CONFIG_LOAD"
	ErrConfigParse      ErrorCode = "CONFIG_PARSE"
	ErrWebAPIKeyMissing ErrorCode = "WEBAPI_KEY_MISSING"

	// Initialization errors
	ErrNotInitialized ErrorCode = "NOT_INITIALIZED"

	// Process errors
	ErrProcessSpawn ErrorCode = "PROCESS_SPAWN"
	ErrProcessExit  ErrorCode = "PROCESS_EXIT"

	// Parse errors
	ErrManifestParse   ErrorCode = "MANIFEST_PARSE"
	ErrDescriptorParse ErrorCode = "DESCRIPTOR_PARSE"
	ErrWebAPIParse     ErrorCode = "WEBAPI_PARSE"

	// Network errors
	ErrWebAPIRequest ErrorCode = "WEBAPI_REQUEST"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrChecksum     ErrorCode = "CHECKSUM"
	ErrCopy         ErrorCode = "COPY"
	ErrState        ErrorCode = "STATE"
)

// ModsyncError represents a structured error with code and details
type ModsyncError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ModsyncError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ModsyncError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *ModsyncError) Is(target error) bool {
	var targetErr *ModsyncError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ModsyncError with the given code and message
func New(code ErrorCode, message string) *ModsyncError {
	return &ModsyncError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ModsyncError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ModsyncError {
	return &ModsyncError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a ModsyncError
func Wrap(err error, code ErrorCode, message string) *ModsyncError {
	if err == nil {
		return nil
	}
	return &ModsyncError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ModsyncError {
	if err == nil {
		return nil
	}
	return &ModsyncError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *ModsyncError) WithDetail(key string, value interface{}) *ModsyncError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var msErr *ModsyncError
	if errors.As(err, &msErr) {
		return msErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a ModsyncError
func GetErrorCode(err error) ErrorCode {
	var msErr *ModsyncError
	if errors.As(err, &msErr) {
		return msErr.Code
	}
	return ErrUnknown
}
