package engine

import (
	"github.com/ledgerlift/ledgerlift/internal/common"
	"github.com/ledgerlift/ledgerlift/internal/model"
)

// MigrationMode selects whether a run persists anything.
type MigrationMode string

// Migration modes.
const (
	ModePreview MigrationMode = "preview"
	ModeExecute MigrationMode = "execute"
)

// MappingStrategy selects how aggressively the resolution cascade works.
type MappingStrategy string

// Mapping strategies.
const (
	// StrategyAISmart runs the full cascade including the semantic oracle.
	StrategyAISmart MappingStrategy = "ai_smart"
	// StrategyCodeBased preserves valid, unused legacy codes before matching.
	StrategyCodeBased MappingStrategy = "code_based"
	// StrategyNameBased runs the lexical cascade without the oracle.
	StrategyNameBased MappingStrategy = "name_based"
	// StrategyCustom behaves like name_based but expects user overrides.
	StrategyCustom MappingStrategy = "custom"
)

// ConflictResolution selects what happens when a resolved code collides with
// an already-allocated one.
type ConflictResolution string

// Conflict resolution policies.
const (
	// ConflictSkip flags the account as a conflict and leaves it untouched.
	ConflictSkip ConflictResolution = "skip"
	// ConflictMerge adopts the existing account under the colliding code.
	ConflictMerge ConflictResolution = "merge"
	// ConflictRename allocates a fresh code for the colliding account.
	ConflictRename ConflictResolution = "rename"
	// ConflictFail aborts the whole batch on the first collision.
	ConflictFail ConflictResolution = "fail"
)

// MaxBatchSize bounds the number of legacy accounts per migration request.
const MaxBatchSize = 500

// MigrationRequest is one batch of legacy accounts to resolve.
type MigrationRequest struct {
	OrganizationID     string
	BusinessType       string
	Mode               MigrationMode
	Strategy           MappingStrategy
	ConflictResolution ConflictResolution
	CustomMappings     map[string]string
	Accounts           []model.LegacyAccount
	PreserveStructure  bool
}

// Validate checks the structural invariants that must hold before any
// matching work starts.
func (r *MigrationRequest) Validate() error {
	if r.OrganizationID == "" {
		return common.ErrMissingOrganization
	}
	if len(r.Accounts) == 0 {
		return common.ErrEmptyBatch
	}
	if len(r.Accounts) > MaxBatchSize {
		return common.ErrBatchTooLarge
	}

	switch r.Mode {
	case ModePreview, ModeExecute:
	case "":
		r.Mode = ModePreview
	default:
		return common.ErrInvalidMode
	}

	if r.Strategy == "" {
		r.Strategy = StrategyAISmart
	}
	if r.ConflictResolution == "" {
		r.ConflictResolution = ConflictSkip
	}
	if r.BusinessType == "" {
		r.BusinessType = "general"
	}

	return nil
}
