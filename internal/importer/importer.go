// Package importer reads legacy charts of accounts from CSV and XLSX exports.
package importer

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerlift/ledgerlift/internal/model"
)

// Recognized column headers, lowercased. Legacy exports are wildly
// inconsistent about naming, so each field accepts several spellings.
var columnAliases = map[string][]string{
	"code":        {"code", "account code", "account_code", "acct code", "number", "account number"},
	"name":        {"name", "account name", "account_name", "account", "title"},
	"type":        {"type", "account type", "account_type", "category"},
	"description": {"description", "desc", "memo"},
	"parent":      {"parent", "parent code", "parent_code", "parent account"},
	"balance":     {"balance", "opening balance", "opening_balance", "amount"},
	"level":       {"level", "depth"},
	"active":      {"active", "is active", "is_active", "status"},
}

// columnMap resolves header cells to field names.
type columnMap map[string]int

func mapColumns(header []string) columnMap {
	cm := make(columnMap)
	for i, cell := range header {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for field, aliases := range columnAliases {
			if _, taken := cm[field]; taken {
				continue
			}
			for _, alias := range aliases {
				if normalized == alias {
					cm[field] = i
					break
				}
			}
		}
	}
	return cm
}

func (cm columnMap) get(row []string, field string) string {
	idx, ok := cm[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ReadFile reads a legacy chart of accounts, dispatching on file extension.
func ReadFile(path string) ([]model.LegacyAccount, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSVFile(path)
	case ".xlsx":
		return ReadXLSXFile(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

// rowToAccount converts one mapped row into a legacy account. Rows with no
// code or name are reported as errors so a bad export fails loudly.
func rowToAccount(cm columnMap, row []string, rowNum int) (model.LegacyAccount, error) {
	account := model.LegacyAccount{
		OriginalCode: cm.get(row, "code"),
		OriginalName: cm.get(row, "name"),
		OriginalType: cm.get(row, "type"),
		Description:  cm.get(row, "description"),
		ParentCode:   cm.get(row, "parent"),
		IsActive:     true,
	}

	if account.OriginalCode == "" || account.OriginalName == "" {
		return model.LegacyAccount{}, fmt.Errorf("row %d: code and name are required", rowNum)
	}

	if raw := cm.get(row, "balance"); raw != "" {
		balance, err := decimal.NewFromString(cleanAmount(raw))
		if err != nil {
			return model.LegacyAccount{}, fmt.Errorf("row %d: invalid balance %q: %w", rowNum, raw, err)
		}
		account.Balance = balance
	}

	if raw := cm.get(row, "level"); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil {
			return model.LegacyAccount{}, fmt.Errorf("row %d: invalid level %q: %w", rowNum, raw, err)
		}
		account.Level = level
	}

	if raw := cm.get(row, "active"); raw != "" {
		account.IsActive = parseActive(raw)
	}

	return account, nil
}

// cleanAmount strips currency symbols and thousands separators, and converts
// accounting-style parentheses to a leading minus.
func cleanAmount(s string) string {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "").Replace(s)
	if negative && !strings.HasPrefix(s, "-") {
		s = "-" + s
	}
	return s
}

func parseActive(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "false", "no", "0", "inactive", "closed", "archived":
		return false
	default:
		return true
	}
}
