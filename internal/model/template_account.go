package model

// TemplateAccount is one entry in a curated, business-type-specific canonical
// template. Templates are loaded once per matching session and treated as
// read-only for its lifetime.
type TemplateAccount struct {
	AccountCode    string      `json:"accountCode"`
	AccountName    string      `json:"accountName"`
	AccountType    AccountType `json:"accountType"`
	Description    string      `json:"description,omitempty"`
	Keywords       []string    `json:"keywords,omitempty"`
	Aliases        []string    `json:"aliases,omitempty"`
	Confidence     float64     `json:"confidence,omitempty"`
	UsageFrequency int         `json:"usageFrequency,omitempty"`
	Priority       int         `json:"priority,omitempty"`
	IsCritical     bool        `json:"isCritical,omitempty"`
}

// CanonicalAccount is the persisted shape handed to the persistence
// collaborator's bulk-create operation in execute mode.
type CanonicalAccount struct {
	Code           string      `json:"code"`
	Name           string      `json:"name"`
	Type           AccountType `json:"type"`
	Description    string      `json:"description,omitempty"`
	Notes          string      `json:"notes,omitempty"`
	OpeningBalance string      `json:"openingBalance,omitempty"`
	IsActive       bool        `json:"isActive"`
}
