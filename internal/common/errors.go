// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Request validation errors.
	ErrMissingOrganization = errors.New("organization id is required")
	ErrEmptyBatch          = errors.New("no legacy accounts to migrate")
	ErrBatchTooLarge       = errors.New("batch exceeds maximum of 500 accounts")
	ErrInvalidMode         = errors.New("invalid migration mode")

	// Resolution errors.
	ErrNoCanonicalAccounts = errors.New("no canonical accounts exist for organization")
	ErrTemplateNotFound    = errors.New("template not found")
	ErrConflictAbort       = errors.New("migration aborted on conflict")

	// Oracle errors.
	ErrNoVerdict = errors.New("oracle returned no verdict")

	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsValidation reports whether the error is a request validation failure that
// should surface before any matching work occurs.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingOrganization) ||
		errors.Is(err, ErrEmptyBatch) ||
		errors.Is(err, ErrBatchTooLarge) ||
		errors.Is(err, ErrInvalidMode)
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
