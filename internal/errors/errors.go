// Package errors defines the stable error taxonomy for census-mcp.
//
// Resolution misses (no area matched, unknown metric id) are represented as
// not-found result values by the query layer, never as errors from this
// package; the codes here cover request validation, execution failures, and
// timeouts that must surface to the caller exactly once.
package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ValidationFailed indicates malformed or out-of-range request parameters
	ValidationFailed ErrorCode = "VALIDATION_FAILED"
	// LocationNotFound indicates no geographic area matched a lookup
	LocationNotFound ErrorCode = "LOCATION_NOT_FOUND"
	// Timeout indicates a query exceeded its deadline
	Timeout ErrorCode = "TIMEOUT"
	// ExecutionFailed indicates the underlying store returned an error
	ExecutionFailed ErrorCode = "EXECUTION_FAILED"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// QueryError is the error type surfaced by every census-mcp operation.
type QueryError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // underlying error, not exported to JSON
}

// New creates a new QueryError
func New(code ErrorCode, message string, cause error) *QueryError {
	return &QueryError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *QueryError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *QueryError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *QueryError) WithDetails(details interface{}) *QueryError {
	e.Details = details
	return e
}

// NewInvalidParameterError creates a validation error for a named parameter.
func NewInvalidParameterError(param, reason string) *QueryError {
	msg := fmt.Sprintf("invalid parameter %q", param)
	if reason != "" {
		msg = fmt.Sprintf("invalid parameter %q: %s", param, reason)
	}
	return New(ValidationFailed, msg, nil)
}

// NewNotFoundError creates a not-found error for a named entity.
// Used only at the protocol boundary; resolver operations report misses as
// result values.
func NewNotFoundError(kind, id string) *QueryError {
	return New(LocationNotFound, fmt.Sprintf("%s %q not found", kind, id), nil)
}

// NewTimeoutError creates a timeout error for an operation.
func NewTimeoutError(operation string, cause error) *QueryError {
	return New(Timeout, fmt.Sprintf("%s timed out", operation), cause)
}

// NewOperationError wraps an underlying store failure.
func NewOperationError(operation string, cause error) *QueryError {
	return New(ExecutionFailed, fmt.Sprintf("%s failed", operation), cause)
}

// CodeOf extracts the error code from err, or InternalError for foreign errors.
func CodeOf(err error) ErrorCode {
	if qe, ok := err.(*QueryError); ok {
		return qe.Code
	}
	return InternalError
}
