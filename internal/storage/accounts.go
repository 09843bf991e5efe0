package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ledgerlift/ledgerlift/internal/model"
)

// GetUsedCodes returns the set of account codes already taken within an
// organization.
func (s *SQLiteStorage) GetUsedCodes(ctx context.Context, organizationID string) (map[string]struct{}, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(organizationID, "organizationID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT code FROM accounts WHERE organization_id = ?`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query used codes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	used := make(map[string]struct{})
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan code: %w", err)
		}
		used[code] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate codes: %w", err)
	}

	return used, nil
}

// CountAccounts returns the number of canonical accounts stored for an
// organization.
func (s *SQLiteStorage) CountAccounts(ctx context.Context, organizationID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(organizationID, "organizationID"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE organization_id = ?`, organizationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	return count, nil
}

// BulkCreateAccounts inserts canonical accounts for an organization. Accounts
// whose code already exists are skipped rather than treated as failures, so a
// re-run of the same batch is safe.
func (s *SQLiteStorage) BulkCreateAccounts(ctx context.Context, organizationID string, accounts []model.CanonicalAccount) (*model.BulkCreationResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(organizationID, "organizationID"); err != nil {
		return nil, err
	}
	if err := validateCanonicalAccounts(accounts); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO accounts
			(organization_id, code, name, type, description, notes, opening_balance, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	result := &model.BulkCreationResult{}
	for _, account := range accounts {
		res, err := stmt.ExecContext(ctx,
			organizationID,
			account.Code,
			account.Name,
			string(account.Type),
			account.Description,
			account.Notes,
			account.OpeningBalance,
			account.IsActive,
		)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors,
				fmt.Sprintf("account %s: %v", account.Code, err))
			continue
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			result.Skipped++
			continue
		}
		result.Created++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bulk create: %w", err)
	}

	slog.Info("Bulk account creation complete",
		"organization", organizationID,
		"created", result.Created,
		"skipped", result.Skipped,
		"failed", result.Failed)

	return result, nil
}
