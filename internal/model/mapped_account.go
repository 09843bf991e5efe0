package model

// MappingStatus is the terminal state of one legacy account after resolution.
type MappingStatus string

// Mapping status constants.
const (
	StatusReady        MappingStatus = "ready"
	StatusConflict     MappingStatus = "conflict"
	StatusManualReview MappingStatus = "manual_review"
)

// SuggestedMapping is the canonical account a legacy account resolved to.
type SuggestedMapping struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Type        AccountType `json:"type"`
	Description string      `json:"description,omitempty"`
	Rationale   string      `json:"rationale"`
	Confidence  float64     `json:"confidence"`
}

// MappedAccount is the orchestrator's output for one legacy account.
type MappedAccount struct {
	Original  LegacyAccount    `json:"original"`
	Suggested SuggestedMapping `json:"suggestedMapping"`
	Status    MappingStatus    `json:"status"`
	Conflicts []string         `json:"conflicts,omitempty"`
}

// ConfidenceBucket labels one bar of the three-bucket confidence histogram.
type ConfidenceBucket string

// Histogram buckets.
const (
	BucketHigh   ConfidenceBucket = "high"   // >= 0.9
	BucketMedium ConfidenceBucket = "medium" // 0.7 - 0.89
	BucketLow    ConfidenceBucket = "low"    // < 0.7
)

// BucketFor places a confidence value into its histogram bucket.
func BucketFor(confidence float64) ConfidenceBucket {
	switch {
	case confidence >= 0.9:
		return BucketHigh
	case confidence >= 0.7:
		return BucketMedium
	default:
		return BucketLow
	}
}

// MigrationSummary is a reduction over the final mapped account list.
type MigrationSummary struct {
	ByOriginalType map[string]int           `json:"byOriginalType"`
	ByResolvedType map[AccountType]int      `json:"byResolvedType"`
	ByConfidence   map[ConfidenceBucket]int `json:"byConfidence"`
}

// BulkCreationResult reports per-item outcomes from the persistence
// collaborator's bulk-create operation.
type BulkCreationResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// MigrationResult aggregates one complete preview or execute run. The
// conflict list repeats the conflicting entries from MappedAccounts so API
// consumers do not have to filter by status themselves.
type MigrationResult struct {
	RunID                       string              `json:"runId"`
	Mode                        string              `json:"migrationMode"`
	Total                       int                 `json:"total"`
	Mapped                      int                 `json:"mapped"`
	Conflicts                   int                 `json:"conflicts"`
	ManualReview                int                 `json:"manualReview"`
	MappedAccounts              []MappedAccount     `json:"mappedAccounts"`
	ConflictsRequiringAttention []MappedAccount     `json:"conflictsRequiringAttention"`
	Summary                     MigrationSummary    `json:"summary"`
	BulkCreation                *BulkCreationResult `json:"bulkCreationResult,omitempty"`
}
