package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `Account Code,Account Name,Type,Description,Balance,Active
1010,Petty Cash,Asset,Cash on hand,"1,250.00",yes
2100,Accounts Payable,Liability,,"($3,400.50)",yes
5000,COGS - Food,Expense,,0,no
`

func TestReadCSV(t *testing.T) {
	accounts, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, accounts, 3)

	cash := accounts[0]
	assert.Equal(t, "1010", cash.OriginalCode)
	assert.Equal(t, "Petty Cash", cash.OriginalName)
	assert.Equal(t, "Asset", cash.OriginalType)
	assert.Equal(t, "Cash on hand", cash.Description)
	assert.True(t, cash.Balance.Equal(decimal.RequireFromString("1250.00")))
	assert.True(t, cash.IsActive)

	payable := accounts[1]
	assert.True(t, payable.Balance.Equal(decimal.RequireFromString("-3400.50")),
		"parenthesized amounts are negative, got %s", payable.Balance)

	cogs := accounts[2]
	assert.False(t, cogs.IsActive)
}

func TestReadCSVHeaderVariants(t *testing.T) {
	csv := "number,title,category\n4000,Sales,Revenue\n"

	accounts, err := ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "4000", accounts[0].OriginalCode)
	assert.Equal(t, "Sales", accounts[0].OriginalName)
	assert.Equal(t, "Revenue", accounts[0].OriginalType)
}

func TestReadCSVSkipsBlankRows(t *testing.T) {
	csv := "code,name\n1010,Cash\n,\n2100,Payables\n"

	accounts, err := ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{name: "empty file", csv: ""},
		{name: "no code column", csv: "name,type\nCash,Asset\n"},
		{name: "no name column", csv: "code,type\n1010,Asset\n"},
		{name: "header only", csv: "code,name\n"},
		{name: "row missing code", csv: "code,name\n,Cash\n"},
		{name: "bad balance", csv: "code,name,balance\n1010,Cash,abc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.csv))
			assert.Error(t, err)
		})
	}
}

func mkXLSX(t *testing.T, rows [][]any) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	buf := bytes.NewBuffer(nil)
	require.NoError(t, f.Write(buf))
	return bytes.NewReader(buf.Bytes())
}

func TestReadXLSX(t *testing.T) {
	r := mkXLSX(t, [][]any{
		{"Code", "Name", "Type", "Balance"},
		{"1010", "Petty Cash", "Asset", "1250.00"},
		{"4000", "Sales", "Revenue", "-900"},
	})

	accounts, err := ReadXLSX(r)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, "1010", accounts[0].OriginalCode)
	assert.Equal(t, "Petty Cash", accounts[0].OriginalName)
	assert.True(t, accounts[1].Balance.IsNegative())
}

func TestReadXLSXNoHeader(t *testing.T) {
	r := mkXLSX(t, [][]any{
		{"1010", "Petty Cash"},
	})

	_, err := ReadXLSX(r)
	assert.Error(t, err)
}

func TestCleanAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "1,250.00", want: "1250.00"},
		{input: "$3 400", want: "3400"},
		{input: "(500)", want: "-500"},
		{input: "(-500)", want: "-500"},
		{input: "€1.234", want: "1.234"},
		{input: "0", want: "0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanAmount(tt.input), "input %q", tt.input)
	}
}

func TestReadFileUnsupportedExtension(t *testing.T) {
	_, err := ReadFile("chart.pdf")
	assert.Error(t, err)
}
