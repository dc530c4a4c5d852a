// Package errors defines the coded error taxonomy shared by the action pipeline.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type for AI operations.
type ErrorCode string

const (
	// ErrCodeServiceUnavailable indicates the completion service is not configured.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeLLMUnavailable indicates the completion service failed to answer.
	ErrCodeLLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	// ErrCodeParse indicates a model reply that is not valid JSON for the expected schema.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
	// ErrCodeValidation indicates a required field is missing or blank.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrCodePersistence indicates that no store accepted the record.
	ErrCodePersistence ErrorCode = "PERSISTENCE_ERROR"
	// ErrCodeStoreNotConfigured indicates the identity-scoped store is absent.
	ErrCodeStoreNotConfigured ErrorCode = "STORE_NOT_CONFIGURED"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// AIError represents a structured error for AI operations.
type AIError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AIError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *AIError) WithContext(key string, value any) *AIError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ServiceUnavailable creates a service unavailable error.
func ServiceUnavailable(msg string) *AIError {
	return &AIError{Code: ErrCodeServiceUnavailable, Message: msg}
}

// LLMUnavailable creates an LLM unavailable error.
func LLMUnavailable(msg string, cause error) *AIError {
	return &AIError{Code: ErrCodeLLMUnavailable, Message: msg, Cause: cause}
}

// Parse creates a parse error for a model reply.
func Parse(msg string, cause error) *AIError {
	return &AIError{Code: ErrCodeParse, Message: msg, Cause: cause}
}

// Validation creates a validation error naming the offending field.
func Validation(field string) *AIError {
	return (&AIError{Code: ErrCodeValidation, Message: field + " is required"}).WithContext("field", field)
}

// Persistence creates a persistence error.
func Persistence(msg string, cause error) *AIError {
	return &AIError{Code: ErrCodePersistence, Message: msg, Cause: cause}
}

// StoreNotConfigured creates a store not configured error.
func StoreNotConfigured() *AIError {
	return &AIError{Code: ErrCodeStoreNotConfigured, Message: "identity store not configured"}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *AIError {
	return &AIError{Code: ErrCodeInvalidArgument, Message: msg}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *AIError {
	return &AIError{Code: code, Message: msg, Cause: cause}
}

// IsCode reports whether any error in err's chain is an AIError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var aiErr *AIError
	for err != nil {
		if !errors.As(err, &aiErr) {
			return false
		}
		if aiErr.Code == code {
			return true
		}
		err = aiErr.Cause
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not an AIError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var aiErr *AIError
	if errors.As(err, &aiErr) {
		return aiErr.Code
	}
	return defaultCode
}
