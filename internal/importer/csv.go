package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ledgerlift/ledgerlift/internal/model"
)

// ReadCSV reads a legacy chart of accounts from a CSV stream. The first row
// must be a header row.
func ReadCSV(r io.Reader) ([]model.LegacyAccount, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv file is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cm := mapColumns(header)
	if _, ok := cm["code"]; !ok {
		return nil, errors.New("no account code column found in header")
	}
	if _, ok := cm["name"]; !ok {
		return nil, errors.New("no account name column found in header")
	}

	var accounts []model.LegacyAccount
	rowNum := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", rowNum+1, err)
		}
		rowNum++

		if isBlankRow(row) {
			continue
		}

		account, err := rowToAccount(cm, row, rowNum)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	if len(accounts) == 0 {
		return nil, errors.New("csv file contains no account rows")
	}

	return accounts, nil
}

// ReadCSVFile reads a legacy chart of accounts from a CSV file on disk.
func ReadCSVFile(path string) ([]model.LegacyAccount, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	return ReadCSV(f)
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
