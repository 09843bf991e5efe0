// Package engine implements the migration orchestrator that resolves a batch
// of legacy accounts onto the canonical chart of accounts.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/ledgerlift/ledgerlift/internal/allocate"
	"github.com/ledgerlift/ledgerlift/internal/classify"
	"github.com/ledgerlift/ledgerlift/internal/common"
	"github.com/ledgerlift/ledgerlift/internal/match"
	"github.com/ledgerlift/ledgerlift/internal/model"
	"github.com/ledgerlift/ledgerlift/internal/service"
)

const (
	// readyConfidence is the matcher confidence above which a mapping is
	// applied without review.
	readyConfidence = 0.8
	// fallbackReviewConfidence is the classifier confidence below which a
	// fallback mapping is queued for review.
	fallbackReviewConfidence = 0.75
)

// conflictNote is recorded on every account whose resolved code collides
// with an already-allocated one.
const conflictNote = "Account code already exists"

// MigrationEngine orchestrates the resolution of legacy account batches.
type MigrationEngine struct {
	storage    service.Storage
	classifier *classify.Classifier
	oracle     match.Oracle
	progress   func(done, total int)
}

// New creates a migration engine. The oracle may be nil; the cascade then
// stops after the lexical matching strategies.
func New(storage service.Storage, classifier *classify.Classifier, oracle match.Oracle) *MigrationEngine {
	return &MigrationEngine{
		storage:    storage,
		classifier: classifier,
		oracle:     oracle,
	}
}

// SetProgress installs a callback invoked after each account is resolved.
// Used by the CLI to drive a progress bar; the HTTP path leaves it unset.
func (e *MigrationEngine) SetProgress(fn func(done, total int)) {
	e.progress = fn
}

// batchState is the accumulator threaded through the sequential fold. The
// used-code set is this batch's single shared mutable resource; it is owned
// here and never shared across requests.
type batchState struct {
	used     map[string]struct{}
	counters map[model.AccountType]int
}

// resolution is one account's outcome before the conflict check.
type resolution struct {
	suggested  model.SuggestedMapping
	status     model.MappingStatus
	allocated  bool // code came from the allocator and is already reserved
	isOverride bool
}

// Migrate resolves one batch of legacy accounts. In preview mode nothing is
// persisted; in execute mode all ready accounts are handed to the
// persistence collaborator's bulk-create operation.
func (e *MigrationEngine) Migrate(ctx context.Context, req MigrationRequest) (*model.MigrationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	slog.Info("Starting account migration",
		"organization_id", req.OrganizationID,
		"mode", req.Mode,
		"strategy", req.Strategy,
		"accounts", len(req.Accounts))

	used, err := e.storage.GetUsedCodes(ctx, req.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load used codes: %w", err)
	}
	if used == nil {
		used = make(map[string]struct{})
	}

	// Mapping onto existing canonical codes only makes sense when the
	// organization already has some.
	if req.Strategy == StrategyCodeBased {
		count, countErr := e.storage.CountAccounts(ctx, req.OrganizationID)
		if countErr != nil {
			return nil, fmt.Errorf("failed to count canonical accounts: %w", countErr)
		}
		if count == 0 {
			return nil, common.ErrNoCanonicalAccounts
		}
	}

	matcher := e.loadMatcher(ctx, req)

	st := &batchState{
		used:     used,
		counters: make(map[model.AccountType]int),
	}

	results := make([]model.MappedAccount, 0, len(req.Accounts))
	for _, account := range req.Accounts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		mapped := e.resolveAccount(ctx, req, matcher, st, account)
		if req.ConflictResolution == ConflictFail && mapped.Status == model.StatusConflict {
			return nil, fmt.Errorf("%w: legacy account %q resolves to code %s",
				common.ErrConflictAbort, account.OriginalCode, mapped.Suggested.Code)
		}
		results = append(results, mapped)
		if e.progress != nil {
			e.progress(len(results), len(req.Accounts))
		}
	}

	result := &model.MigrationResult{
		RunID:                       uuid.NewString(),
		Mode:                        string(req.Mode),
		Total:                       len(results),
		MappedAccounts:              results,
		ConflictsRequiringAttention: make([]model.MappedAccount, 0),
		Summary:                     summarize(results),
	}
	for _, m := range results {
		switch m.Status {
		case model.StatusReady:
			result.Mapped++
		case model.StatusConflict:
			result.Conflicts++
			result.ConflictsRequiringAttention = append(result.ConflictsRequiringAttention, m)
		case model.StatusManualReview:
			result.ManualReview++
		}
	}

	if req.Mode == ModeExecute {
		bulk, execErr := e.executeReady(ctx, req.OrganizationID, results)
		if execErr != nil {
			return nil, execErr
		}
		result.BulkCreation = bulk
	}

	slog.Info("Account migration complete",
		"run_id", result.RunID,
		"mapped", result.Mapped,
		"conflicts", result.Conflicts,
		"manual_review", result.ManualReview)

	return result, nil
}

// loadMatcher loads the business-type template and builds the matching
// cascade over it. Template load failures downgrade the whole batch to
// rule-based classification instead of failing the request.
func (e *MigrationEngine) loadMatcher(ctx context.Context, req MigrationRequest) *match.Matcher {
	accounts, err := e.storage.GetTemplateAccounts(ctx, req.BusinessType)
	if err != nil {
		slog.Warn("Template load failed, batch falls back to rule-based classification",
			"business_type", req.BusinessType,
			"error", err)
		return nil
	}
	if len(accounts) == 0 {
		slog.Info("No template accounts for business type",
			"business_type", req.BusinessType)
		return nil
	}

	var o match.Oracle
	if req.Strategy == StrategyAISmart {
		o = e.oracle
	}

	return match.NewMatcher(match.NewIndex(accounts), o)
}

// resolveAccount runs one legacy account through override, matching and
// fallback, then applies the conflict check against the used-code set.
func (e *MigrationEngine) resolveAccount(ctx context.Context, req MigrationRequest, matcher *match.Matcher, st *batchState, account model.LegacyAccount) model.MappedAccount {
	res := e.suggest(ctx, req, matcher, st, account)

	mapped := model.MappedAccount{
		Original:  account,
		Suggested: res.suggested,
		Status:    res.status,
	}

	if res.allocated {
		// The allocator reserved this code atomically with returning it.
		return mapped
	}

	if _, taken := st.used[res.suggested.Code]; taken {
		return e.resolveConflict(req, st, mapped, res)
	}

	st.used[res.suggested.Code] = struct{}{}
	return mapped
}

// suggest picks the best canonical mapping for one account without touching
// the used-code set (except through the allocator on the fallback path).
func (e *MigrationEngine) suggest(ctx context.Context, req MigrationRequest, matcher *match.Matcher, st *batchState, account model.LegacyAccount) resolution {
	if code, ok := req.CustomMappings[account.OriginalCode]; ok {
		// Classified anyway so summaries and bookkeeping have a type.
		cls := e.classifier.Classify(account)
		return resolution{
			suggested: model.SuggestedMapping{
				Code:       code,
				Name:       account.OriginalName,
				Type:       cls.Type,
				Confidence: 1.0,
				Rationale:  "user override",
			},
			status:     model.StatusReady,
			isOverride: true,
		}
	}

	if req.Strategy == StrategyCodeBased {
		if res, ok := e.preserveLegacyCode(account, st); ok {
			return res
		}
	}

	if matcher != nil {
		candidates, err := matcher.Match(ctx, match.Request{
			Name:        account.DisplayName(),
			Type:        account.OriginalType,
			Description: account.Description,
		})
		if err != nil {
			slog.Warn("Template matching failed, using rule-based fallback",
				"original_code", account.OriginalCode,
				"error", err)
			return e.fallback(st, account, " (fallback after matching error)")
		}

		if top := candidates.Top(); top != nil {
			if top.Strategy == model.StrategySemanticOracle {
				// The oracle's verdict only wins if it beats the fast path.
				cls := e.classifier.Classify(account)
				if top.Confidence <= cls.Confidence {
					return e.fallback(st, account, "")
				}
			}

			status := model.StatusManualReview
			if top.Confidence > readyConfidence {
				status = model.StatusReady
			}
			return resolution{
				suggested: model.SuggestedMapping{
					Code:        top.Account.AccountCode,
					Name:        top.Account.AccountName,
					Type:        top.Account.AccountType,
					Description: top.Account.Description,
					Confidence:  top.Confidence,
					Rationale:   top.Rationale,
				},
				status: status,
			}
		}
	}

	return e.fallback(st, account, "")
}

// preserveLegacyCode keeps a legacy code that already fits a canonical range
// and is not taken.
func (e *MigrationEngine) preserveLegacyCode(account model.LegacyAccount, st *batchState) (resolution, bool) {
	numeric, err := strconv.Atoi(account.OriginalCode)
	if err != nil {
		return resolution{}, false
	}
	accountType, ok := model.TypeForCode(numeric)
	if !ok {
		return resolution{}, false
	}
	code := fmt.Sprintf("%07d", numeric)
	if _, taken := st.used[code]; taken {
		return resolution{}, false
	}

	return resolution{
		suggested: model.SuggestedMapping{
			Code:       code,
			Name:       account.OriginalName,
			Type:       accountType,
			Confidence: 0.9,
			Rationale:  "legacy code preserved within canonical range",
		},
		status: model.StatusReady,
	}, true
}

// fallback is the classifier + allocator path used when no template is
// loaded, matching produced nothing, or matching failed.
func (e *MigrationEngine) fallback(st *batchState, account model.LegacyAccount, rationaleSuffix string) resolution {
	cls := e.classifier.Classify(account)

	st.counters[cls.Type]++
	code := allocate.Allocate(cls.Type, st.counters[cls.Type], st.used)

	status := model.StatusReady
	if cls.Confidence < fallbackReviewConfidence {
		status = model.StatusManualReview
	}

	return resolution{
		suggested: model.SuggestedMapping{
			Code:       code,
			Name:       account.OriginalName,
			Type:       cls.Type,
			Confidence: cls.Confidence,
			Rationale:  cls.Rationale + rationaleSuffix,
		},
		status:    status,
		allocated: true,
	}
}

// resolveConflict applies the request's conflict policy to an account whose
// resolved code is already taken.
func (e *MigrationEngine) resolveConflict(req MigrationRequest, st *batchState, mapped model.MappedAccount, res resolution) model.MappedAccount {
	switch req.ConflictResolution {
	case ConflictMerge:
		// Adopt the existing canonical account; nothing new is created and
		// the bulk-create step later reports the code as skipped.
		mapped.Suggested.Rationale += " (merged into existing account)"
		return mapped

	case ConflictRename:
		if !res.isOverride {
			// A user's explicit code choice is never silently renamed.
			st.counters[mapped.Suggested.Type]++
			mapped.Suggested.Code = allocate.Allocate(mapped.Suggested.Type, st.counters[mapped.Suggested.Type], st.used)
			mapped.Suggested.Rationale += " (renamed to avoid code conflict)"
			return mapped
		}
	}

	// skip and fail both flag the collision; fail aborts in the batch loop.
	mapped.Status = model.StatusConflict
	mapped.Conflicts = append(mapped.Conflicts, conflictNote)
	return mapped
}

// executeReady hands every ready account to the persistence collaborator.
func (e *MigrationEngine) executeReady(ctx context.Context, organizationID string, results []model.MappedAccount) (*model.BulkCreationResult, error) {
	var ready []model.CanonicalAccount
	for _, m := range results {
		if m.Status != model.StatusReady {
			continue
		}
		ready = append(ready, model.CanonicalAccount{
			Code:           m.Suggested.Code,
			Name:           m.Suggested.Name,
			Type:           m.Suggested.Type,
			Description:    m.Suggested.Description,
			Notes:          m.Suggested.Rationale,
			OpeningBalance: m.Original.Balance.String(),
			IsActive:       true,
		})
	}

	if len(ready) == 0 {
		return &model.BulkCreationResult{}, nil
	}

	bulk, err := e.storage.BulkCreateAccounts(ctx, organizationID, ready)
	if err != nil {
		return nil, fmt.Errorf("bulk account creation failed: %w", err)
	}
	return bulk, nil
}

// summarize reduces the mapped account list into the migration histograms.
func summarize(results []model.MappedAccount) model.MigrationSummary {
	summary := model.MigrationSummary{
		ByOriginalType: make(map[string]int),
		ByResolvedType: make(map[model.AccountType]int),
		ByConfidence:   make(map[model.ConfidenceBucket]int),
	}

	for _, m := range results {
		originalType := m.Original.OriginalType
		if originalType == "" {
			originalType = "unknown"
		}
		summary.ByOriginalType[originalType]++
		summary.ByResolvedType[m.Suggested.Type]++
		summary.ByConfidence[model.BucketFor(m.Suggested.Confidence)]++
	}

	return summary
}
