// Package errors defines the structured error taxonomy for the PIDS licensing
// service. Collaborator-specific failures are translated into these errors at
// the application-service boundary; HTTP handlers only ever see this taxonomy.
package errors

import (
	"errors"
	"net/http"
)

// Taxonomy codes. Every error surfaced to a caller carries exactly one.
const (
	CodeValidation   = "validation_error"
	CodeConflict     = "conflict"
	CodeNotFound     = "not_found"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeThrottled    = "throttled"
	CodeUnavailable  = "unavailable"
	CodeInternal     = "internal_error"
)

// AppError is a structured application error carrying the taxonomy code and
// the HTTP status it maps to. The wrapped cause is for server-side logs only
// and is never serialized to a response.
type AppError struct {
	Code       string
	HTTPStatus int
	Message    string
	Details    map[string]string
	cause      error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error-chain support.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithError attaches a cause to the error chain and returns the error.
func (e *AppError) WithError(cause error) *AppError {
	e.cause = cause
	return e
}

// WithDetails attaches field-level detail to the error and returns the error.
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// New creates an AppError with an explicit code and HTTP status.
func New(code string, httpStatus int, message string) *AppError {
	return &AppError{Code: code, HTTPStatus: httpStatus, Message: message}
}

// ================================================================================
// Taxonomy Constructors
// ================================================================================

// ErrValidation reports missing or malformed input.
func ErrValidation(message string) *AppError {
	return New(CodeValidation, http.StatusBadRequest, message)
}

// ErrConflict reports a duplicate create or an idempotency-window hit.
func ErrConflict(message string) *AppError {
	return New(CodeConflict, http.StatusConflict, message)
}

// ErrNotFound reports a missing record or user.
func ErrNotFound(message string) *AppError {
	return New(CodeNotFound, http.StatusNotFound, message)
}

// ErrUnauthorized reports a bad credential or an expired/revoked token.
func ErrUnauthorized(message string) *AppError {
	return New(CodeUnauthorized, http.StatusUnauthorized, message)
}

// ErrForbidden reports an upstream access denial or an invalid token.
func ErrForbidden(message string) *AppError {
	return New(CodeForbidden, http.StatusForbidden, message)
}

// ErrThrottled reports an upstream rate limit.
func ErrThrottled(message string) *AppError {
	return New(CodeThrottled, http.StatusTooManyRequests, message)
}

// ErrUnavailable reports upstream connectivity loss.
func ErrUnavailable(message string) *AppError {
	return New(CodeUnavailable, http.StatusServiceUnavailable, message)
}

// ErrInternal reports anything unclassified.
func ErrInternal(message string) *AppError {
	return New(CodeInternal, http.StatusInternalServerError, message)
}

// ================================================================================
// Utilities
// ================================================================================

// AsAppError attempts to extract an AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Normalize returns err as an AppError, wrapping unclassified errors as
// internal. Handlers use this as the final safety net before responding.
func Normalize(err error) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return ErrInternal("Server error. Try again later.").WithError(err)
}

// IsNotFound reports whether err carries the not_found code.
func IsNotFound(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == CodeNotFound
}
