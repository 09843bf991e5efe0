package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ledgerlift/ledgerlift/internal/common"
	"github.com/ledgerlift/ledgerlift/internal/model"
)

// GetTemplateAccounts loads the canonical template for a business type.
// Returns common.ErrTemplateNotFound when no template exists for the type.
func (s *SQLiteStorage) GetTemplateAccounts(ctx context.Context, businessType string) ([]model.TemplateAccount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(businessType, "businessType"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT account_code, account_name, account_type, description,
		       keywords, aliases, confidence, usage_frequency, priority, is_critical
		FROM template_accounts
		WHERE business_type = ?
		ORDER BY account_code
	`, businessType)
	if err != nil {
		return nil, fmt.Errorf("failed to query template accounts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var accounts []model.TemplateAccount
	for rows.Next() {
		var (
			account      model.TemplateAccount
			accountType  string
			keywordsJSON string
			aliasesJSON  string
		)
		if err := rows.Scan(
			&account.AccountCode,
			&account.AccountName,
			&accountType,
			&account.Description,
			&keywordsJSON,
			&aliasesJSON,
			&account.Confidence,
			&account.UsageFrequency,
			&account.Priority,
			&account.IsCritical,
		); err != nil {
			return nil, fmt.Errorf("failed to scan template account: %w", err)
		}

		account.AccountType = model.AccountType(accountType)
		if keywordsJSON != "" {
			if err := json.Unmarshal([]byte(keywordsJSON), &account.Keywords); err != nil {
				return nil, fmt.Errorf("failed to decode keywords for %s: %w", account.AccountCode, err)
			}
		}
		if aliasesJSON != "" {
			if err := json.Unmarshal([]byte(aliasesJSON), &account.Aliases); err != nil {
				return nil, fmt.Errorf("failed to decode aliases for %s: %w", account.AccountCode, err)
			}
		}

		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate template accounts: %w", err)
	}

	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrTemplateNotFound, businessType)
	}

	return accounts, nil
}

// SaveTemplateAccounts replaces the template for a business type.
func (s *SQLiteStorage) SaveTemplateAccounts(ctx context.Context, businessType string, accounts []model.TemplateAccount) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(businessType, "businessType"); err != nil {
		return err
	}
	if len(accounts) == 0 {
		return fmt.Errorf("%w: accounts", ErrEmptySlice)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM template_accounts WHERE business_type = ?`, businessType); err != nil {
		return fmt.Errorf("failed to clear existing template: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO template_accounts
			(business_type, account_code, account_name, account_type, description,
			 keywords, aliases, confidence, usage_frequency, priority, is_critical)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, account := range accounts {
		keywordsJSON, err := json.Marshal(account.Keywords)
		if err != nil {
			return fmt.Errorf("failed to encode keywords for %s: %w", account.AccountCode, err)
		}
		aliasesJSON, err := json.Marshal(account.Aliases)
		if err != nil {
			return fmt.Errorf("failed to encode aliases for %s: %w", account.AccountCode, err)
		}

		if _, err := stmt.ExecContext(ctx,
			businessType,
			account.AccountCode,
			account.AccountName,
			string(account.AccountType),
			account.Description,
			string(keywordsJSON),
			string(aliasesJSON),
			account.Confidence,
			account.UsageFrequency,
			account.Priority,
			account.IsCritical,
		); err != nil {
			return fmt.Errorf("failed to insert template account %s: %w", account.AccountCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit template save: %w", err)
	}

	return nil
}

// ListTemplateTypes returns the distinct business types that have templates.
func (s *SQLiteStorage) ListTemplateTypes(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT business_type FROM template_accounts ORDER BY business_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to query template types: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan template type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate template types: %w", err)
	}

	return types, nil
}
