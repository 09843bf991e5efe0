package importer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ledgerlift/ledgerlift/internal/model"
)

// ReadTemplateFile reads a canonical template definition from a JSON file.
// The file is an array of template accounts.
func ReadTemplateFile(path string) ([]model.TemplateAccount, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var accounts []model.TemplateAccount
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse template file %s: %w", path, err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("template file %s contains no accounts", path)
	}

	for i, account := range accounts {
		if account.AccountCode == "" || account.AccountName == "" {
			return nil, fmt.Errorf("template entry %d: accountCode and accountName are required", i)
		}
		if !account.AccountType.Valid() {
			return nil, fmt.Errorf("template entry %d: unknown account type %q", i, account.AccountType)
		}
	}

	return accounts, nil
}
