package model

import "fmt"

// AccountType is the closed set of canonical account classifications.
type AccountType string

// Canonical account types. Each owns a disjoint 7-digit code range.
const (
	TypeAsset                AccountType = "ASSET"
	TypeLiability            AccountType = "LIABILITY"
	TypeEquity               AccountType = "EQUITY"
	TypeRevenue              AccountType = "REVENUE"
	TypeCostOfSales          AccountType = "COST_OF_SALES"
	TypeDirectExpense        AccountType = "DIRECT_EXPENSE"
	TypeIndirectExpense      AccountType = "INDIRECT_EXPENSE"
	TypeTaxExpense           AccountType = "TAX_EXPENSE"
	TypeExtraordinaryExpense AccountType = "EXTRAORDINARY_EXPENSE"
)

// rangeWidth is the size of each type's numeric code range.
const rangeWidth = 1_000_000

var rangeStarts = map[AccountType]int{
	TypeAsset:                1_000_000,
	TypeLiability:            2_000_000,
	TypeEquity:               3_000_000,
	TypeRevenue:              4_000_000,
	TypeCostOfSales:          5_000_000,
	TypeDirectExpense:        6_000_000,
	TypeIndirectExpense:      7_000_000,
	TypeTaxExpense:           8_000_000,
	TypeExtraordinaryExpense: 9_000_000,
}

// AllAccountTypes returns every canonical type in range order.
func AllAccountTypes() []AccountType {
	return []AccountType{
		TypeAsset,
		TypeLiability,
		TypeEquity,
		TypeRevenue,
		TypeCostOfSales,
		TypeDirectExpense,
		TypeIndirectExpense,
		TypeTaxExpense,
		TypeExtraordinaryExpense,
	}
}

// Valid reports whether t is one of the canonical account types.
func (t AccountType) Valid() bool {
	_, ok := rangeStarts[t]
	return ok
}

// RangeStart returns the first numeric code of t's range.
func (t AccountType) RangeStart() int {
	return rangeStarts[t]
}

// RangeEnd returns the last numeric code of t's range.
func (t AccountType) RangeEnd() int {
	return rangeStarts[t] + rangeWidth - 1
}

// ContainsCode reports whether the numeric code falls inside t's range.
func (t AccountType) ContainsCode(code int) bool {
	start, ok := rangeStarts[t]
	if !ok {
		return false
	}
	return code >= start && code < start+rangeWidth
}

// TypeForCode returns the account type whose range contains the numeric
// code, if any.
func TypeForCode(code int) (AccountType, bool) {
	for _, t := range AllAccountTypes() {
		if t.ContainsCode(code) {
			return t, true
		}
	}
	return "", false
}

// ParseAccountType converts a string into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown account type: %q", s)
	}
	return t, nil
}
