// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/ledgerlift/ledgerlift/internal/model"
)

// Storage defines the contract for our persistence layer. The resolution core
// only touches it at batch boundaries: used codes are read once before the
// fold, ready accounts are written once after it.
type Storage interface {
	// Canonical account operations
	GetUsedCodes(ctx context.Context, organizationID string) (map[string]struct{}, error)
	CountAccounts(ctx context.Context, organizationID string) (int, error)
	BulkCreateAccounts(ctx context.Context, organizationID string, accounts []model.CanonicalAccount) (*model.BulkCreationResult, error)

	// Template operations
	GetTemplateAccounts(ctx context.Context, businessType string) ([]model.TemplateAccount, error)
	SaveTemplateAccounts(ctx context.Context, businessType string, accounts []model.TemplateAccount) error
	ListTemplateTypes(ctx context.Context) ([]string, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
