// Package model defines the core domain models used throughout the application.
package model

import "github.com/shopspring/decimal"

// LegacyAccount is one record from an external bookkeeping system's chart of
// accounts. Fields other than OriginalCode and OriginalName are free text and
// frequently absent; absent strings stay empty rather than nil. The record is
// immutable input and is never mutated by the pipeline.
type LegacyAccount struct {
	OriginalCode string          `json:"originalCode" validate:"required"`
	OriginalName string          `json:"originalName" validate:"required"`
	OriginalType string          `json:"originalType,omitempty"`
	Description  string          `json:"description,omitempty"`
	ParentCode   string          `json:"parentCode,omitempty"`
	Balance      decimal.Decimal `json:"balance,omitempty"`
	Level        int             `json:"level,omitempty"`
	IsActive     bool            `json:"isActive"`
}

// DisplayName returns the name to match against, falling back to the
// description when the legacy system exported a blank name.
func (a LegacyAccount) DisplayName() string {
	if a.OriginalName != "" {
		return a.OriginalName
	}
	return a.Description
}
