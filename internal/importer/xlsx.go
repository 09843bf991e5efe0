package importer

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ledgerlift/ledgerlift/internal/model"
)

// ReadXLSX reads a legacy chart of accounts from an XLSX workbook. Only the
// first sheet is read; its first row must be a header row.
func ReadXLSX(r io.Reader) ([]model.LegacyAccount, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	return readWorkbook(f)
}

// ReadXLSXFile reads a legacy chart of accounts from an XLSX file on disk.
func ReadXLSXFile(path string) ([]model.LegacyAccount, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	return readWorkbook(f)
}

func readWorkbook(f *excelize.File) ([]model.LegacyAccount, error) {
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook contains no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, errors.New("workbook is empty")
	}

	cm := mapColumns(rows[0])
	if _, ok := cm["code"]; !ok {
		return nil, errors.New("no account code column found in header")
	}
	if _, ok := cm["name"]; !ok {
		return nil, errors.New("no account name column found in header")
	}

	var accounts []model.LegacyAccount
	for i, row := range rows[1:] {
		rowNum := i + 2
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
		return nil, errors.New("workbook contains no account rows")
	}

	return accounts, nil
}
