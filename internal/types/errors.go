package types

import (
	"errors"
	"fmt"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

const (
	// Feed source failures. Both abort the pipeline: no digest is ever
	// built from a failed or partial fetch.
	ErrCodeFeedFetchFailed   ErrorCode = "feed_fetch_failed"
	ErrCodeFeedLinkMalformed ErrorCode = "feed_link_malformed"

	// Storage failures.
	ErrCodeStorageUnavailable ErrorCode = "storage_unavailable"

	// Delivery failures. These are recovered locally by the dispatcher:
	// logged, never propagated to the process exit status.
	ErrCodeEmailBlocked          ErrorCode = "email_blocked"
	ErrCodeEmailNotConfigured    ErrorCode = "email_not_configured"
	ErrCodeUpstreamRateLimited   ErrorCode = "upstream_rate_limited"
	ErrCodeUpstreamUnavailable   ErrorCode = "upstream_unavailable"
	ErrCodeUpstreamEmailProvider ErrorCode = "upstream_email_provider"

	// Catch-all for bugs and impossible states.
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected"
)

// AppError is the application error type. It carries a stable code for
// categorization, a human-readable message, an optional wrapped cause,
// and optional structured details (e.g. the HTTP status of a failed
// feed fetch).
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// NewAppError creates an AppError with the given code, message, and
// wrapped cause (may be nil).
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAppErrorWithDetails creates an AppError carrying structured details.
func NewAppErrorWithDetails(code ErrorCode, message string, err error, details map[string]any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// CodeOf extracts the ErrorCode from err if it is (or wraps) an
// AppError, and ErrCodeInternalUnexpected otherwise.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternalUnexpected
}
