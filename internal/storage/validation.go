package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledgerlift/ledgerlift/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrEmptySlice     = errors.New("slice cannot be empty")
	ErrInvalidAccount = errors.New("invalid canonical account")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateCanonicalAccounts validates a slice of accounts bound for
// bulk creation.
func validateCanonicalAccounts(accounts []model.CanonicalAccount) error {
	if len(accounts) == 0 {
		return fmt.Errorf("%w: accounts", ErrEmptySlice)
	}
	for i, account := range accounts {
		if err := validateCanonicalAccount(&account); err != nil {
			return fmt.Errorf("account at index %d: %w", i, err)
		}
	}
	return nil
}

// validateCanonicalAccount validates a single canonical account.
func validateCanonicalAccount(account *model.CanonicalAccount) error {
	if account.Code == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidAccount)
	}
	if account.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAccount)
	}
	if !account.Type.Valid() {
		return fmt.Errorf("%w: unknown account type %q", ErrInvalidAccount, account.Type)
	}
	return nil
}
