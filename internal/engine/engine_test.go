package engine

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlift/ledgerlift/internal/classify"
	"github.com/ledgerlift/ledgerlift/internal/common"
	"github.com/ledgerlift/ledgerlift/internal/match"
	"github.com/ledgerlift/ledgerlift/internal/model"
	"github.com/ledgerlift/ledgerlift/internal/oracle"
)

// mockStorage is an in-memory storage double for orchestrator tests.
type mockStorage struct {
	usedCodes        map[string]struct{}
	accountCount     int
	templates        map[string][]model.TemplateAccount
	usedCodesErr     error
	bulkCreateErr    error
	bulkCreateCalls  int
	bulkCreatedCodes []string
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		usedCodes: make(map[string]struct{}),
		templates: make(map[string][]model.TemplateAccount),
	}
}

func (m *mockStorage) GetUsedCodes(_ context.Context, _ string) (map[string]struct{}, error) {
	if m.usedCodesErr != nil {
		return nil, m.usedCodesErr
	}
	out := make(map[string]struct{}, len(m.usedCodes))
	for code := range m.usedCodes {
		out[code] = struct{}{}
	}
	return out, nil
}

func (m *mockStorage) CountAccounts(_ context.Context, _ string) (int, error) {
	return m.accountCount, nil
}

func (m *mockStorage) BulkCreateAccounts(_ context.Context, _ string, accounts []model.CanonicalAccount) (*model.BulkCreationResult, error) {
	m.bulkCreateCalls++
	if m.bulkCreateErr != nil {
		return nil, m.bulkCreateErr
	}
	result := &model.BulkCreationResult{}
	for _, account := range accounts {
		if _, taken := m.usedCodes[account.Code]; taken {
			result.Skipped++
			continue
		}
		m.usedCodes[account.Code] = struct{}{}
		m.bulkCreatedCodes = append(m.bulkCreatedCodes, account.Code)
		result.Created++
	}
	return result, nil
}

func (m *mockStorage) GetTemplateAccounts(_ context.Context, businessType string) ([]model.TemplateAccount, error) {
	accounts, ok := m.templates[businessType]
	if !ok {
		return nil, common.ErrTemplateNotFound
	}
	return accounts, nil
}

func (m *mockStorage) SaveTemplateAccounts(_ context.Context, businessType string, accounts []model.TemplateAccount) error {
	m.templates[businessType] = accounts
	return nil
}

func (m *mockStorage) ListTemplateTypes(_ context.Context) ([]string, error) {
	var types []string
	for t := range m.templates {
		types = append(types, t)
	}
	return types, nil
}

func (m *mockStorage) Migrate(_ context.Context) error { return nil }
func (m *mockStorage) Close() error                    { return nil }

// scriptedOracle implements match.Oracle for orchestrator tests.
type scriptedOracle struct {
	verdict *oracle.Verdict
	err     error
	calls   int
}

func (s *scriptedOracle) PickBest(_ context.Context, _ oracle.Request) (*oracle.Verdict, error) {
	s.calls++
	return s.verdict, s.err
}

func restaurantTemplate() []model.TemplateAccount {
	return []model.TemplateAccount{
		{
			AccountCode: "5001000",
			AccountName: "Food Costs",
			AccountType: model.TypeCostOfSales,
			Keywords:    []string{"food", "ingredients"},
			Aliases:     []string{"cogs food"},
		},
		{
			AccountCode: "7001000",
			AccountName: "Rent",
			AccountType: model.TypeIndirectExpense,
			Keywords:    []string{"rent"},
		},
	}
}

func newTestEngine(store *mockStorage, o match.Oracle) *MigrationEngine {
	return New(store, classify.New(), o)
}

func TestMigrateValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     MigrationRequest
		wantErr error
	}{
		{
			name:    "missing organization",
			req:     MigrationRequest{Accounts: []model.LegacyAccount{{OriginalCode: "1", OriginalName: "Cash"}}},
			wantErr: common.ErrMissingOrganization,
		},
		{
			name:    "empty batch",
			req:     MigrationRequest{OrganizationID: "org1"},
			wantErr: common.ErrEmptyBatch,
		},
		{
			name: "batch too large",
			req: MigrationRequest{
				OrganizationID: "org1",
				Accounts:       make([]model.LegacyAccount, MaxBatchSize+1),
			},
			wantErr: common.ErrBatchTooLarge,
		},
		{
			name: "invalid mode",
			req: MigrationRequest{
				OrganizationID: "org1",
				Mode:           "dry_run",
				Accounts:       []model.LegacyAccount{{OriginalCode: "1", OriginalName: "Cash"}},
			},
			wantErr: common.ErrInvalidMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := newTestEngine(newMockStorage(), nil)
			_, err := eng.Migrate(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMigratePreviewDoesNotPersist(t *testing.T) {
	store := newMockStorage()
	eng := newTestEngine(store, nil)

	result, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID: "org1",
		Accounts: []model.LegacyAccount{
			{OriginalCode: "1010", OriginalName: "Petty Cash"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, string(ModePreview), result.Mode)
	assert.Zero(t, store.bulkCreateCalls)
	assert.Nil(t, result.BulkCreation)
}

func TestMigrateExecutePersistsReady(t *testing.T) {
	store := newMockStorage()
	eng := newTestEngine(store, nil)

	result, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID: "org1",
		Mode:           ModeExecute,
		Accounts: []model.LegacyAccount{
			{OriginalCode: "1010", OriginalName: "Petty Cash"},
			{OriginalCode: "2100", OriginalName: "Accounts Payable"},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, result.BulkCreation)
	assert.Equal(t, 2, result.BulkCreation.Created)
	assert.Equal(t, 1, store.bulkCreateCalls)
	assert.Len(t, store.bulkCreatedCodes, 2)
}

func TestMigrateFallbackWithoutTemplate(t *testing.T) {
	store := newMockStorage() // no templates saved
	eng := newTestEngine(store, nil)

	result, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID: "org1",
		Accounts: []model.LegacyAccount{
			{OriginalCode: "1010", OriginalName: "Petty Cash"},
			{OriginalCode: "9999", OriginalName: "Zzz"},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.MappedAccounts, 2)

	cash := result.MappedAccounts[0]
	assert.Equal(t, model.StatusReady, cash.Status)
	assert.Equal(t, model.TypeAsset, cash.Suggested.Type)
	assert.True(t, model.TypeAsset.ContainsCode(mustAtoi(t, cash.Suggested.Code)))

	unknown := result.MappedAccounts[1]
	assert.Equal(t, model.StatusManualReview, unknown.Status)
	assert.Equal(t, model.TypeDirectExpense, unknown.Suggested.Type)
}

func TestMigrateTemplateMatchWins(t *testing.T) {
	store := newMockStorage()
	store.templates["restaurant"] = restaurantTemplate()
	eng := newTestEngine(store, nil)

	result, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID: "org1",
		BusinessType:   "restaurant",
		Accounts: []model.LegacyAccount{
			{OriginalCode: "5000", OriginalName: "COGS - Food"},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.MappedAccounts, 1)

	mapped := result.MappedAccounts[0]
	assert.Equal(t, model.StatusReady, mapped.Status)
	assert.Equal(t, "5001000", mapped.Suggested.Code)
	assert.Equal(t, "Food Costs", mapped.Suggested.Name)
}

func TestMigrateConflictSkip(t *testing.T) {
	store := newMockStorage()
	store.templates["restaurant"] = restaurantTemplate()
	eng := newTestEngine(store, nil)

	result, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID: "org1",
		BusinessType:   "restaurant",
		Accounts: []model.LegacyAccount{
			{OriginalCode: "5000", OriginalName: "COGS - Food"},
			{OriginalCode: "5001", OriginalName: "Food Costs"},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.MappedAccounts, 2)

	assert.Equal(t, model.StatusReady, result.MappedAccounts[0].Status)

	second := result.MappedAccounts[1]
	assert.Equal(t, model.StatusConflict, second.Status)
	assert.NotEmpty(t, second.Conflicts)
	assert.Equal(t, 1, result.Conflicts)

	require.Len(t, result.ConflictsRequiringAttention, 1)
	assert.Equal(t, "5001", result.ConflictsRequiringAttention[0].Original.OriginalCode)
}

func TestResolveConflictDoesNotMutateUsedCodes(t *testing.T) {
	eng := newTestEngine(newMockStorage(), nil)
	st := &batchState{
		used:     map[string]struct{}{"6001000": {}},
		counters: make(map[model.AccountType]int),
	}
	req := MigrationRequest{
		OrganizationID:     "org1",
		ConflictResolution: ConflictSkip,
		CustomMappings:     map[string]string{"9100": "6001000"},
	}

	mapped := eng.resolveAccount(context.Background(), req, nil, st, model.LegacyAccount{
		OriginalCode: "9100",
		OriginalName: "Special Expense",
	})

	assert.Equal(t, model.StatusConflict, mapped.Status)
	assert.Len(t, st.used, 1)
	assert.Contains(t, st.used, "6001000")
}

func TestMigrateConflictRename(t *testing.T) {
	store := newMockStorage()
	store.templates["restaurant"] = restaurantTemplate()
	eng := newTestEngine(store, nil)

	result, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID:     "org1",
		BusinessType:       "restaurant",
		ConflictResolution: ConflictRename,
		Accounts: []model.LegacyAccount{
			{OriginalCode: "5000", OriginalName: "COGS - Food"},
			{OriginalCode: "5001", OriginalName: "Food Costs"},
		},
	})
	require.NoError(t, err)

	first := result.MappedAccounts[0]
	second := result.MappedAccounts[1]

	assert.NotEqual(t, first.Suggested.Code, second.Suggested.Code)
	assert.NotEqual(t, model.StatusConflict, second.Status)
	assert.Contains(t, second.Suggested.Rationale, "renamed to avoid code conflict")
	assert.True(t, second.Suggested.Type.ContainsCode(mustAtoi(t, second.Suggested.Code)))
}

func TestMigrateConflictMerge(t *testing.T) {
	store := newMockStorage()
	store.templates["restaurant"] = restaurantTemplate()
	eng := newTestEngine(store, nil)

	result, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID:     "org1",
		BusinessType:       "restaurant",
		ConflictResolution: ConflictMerge,
		Accounts: []model.LegacyAccount{
			{OriginalCode: "5000", OriginalName: "COGS - Food"},
			{OriginalCode: "5001", OriginalName: "Food Costs"},
		},
	})
	require.NoError(t, err)

	second := result.MappedAccounts[1]
	assert.Equal(t, "5001000", second.Suggested.Code)
	assert.Equal(t, model.StatusReady, second.Status)
	assert.Contains(t, second.Suggested.Rationale, "merged into existing account")
}

func TestMigrateConflictFailAborts(t *testing.T) {
	store := newMockStorage()
	store.templates["restaurant"] = restaurantTemplate()
	eng := newTestEngine(store, nil)

	_, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID:     "org1",
		BusinessType:       "restaurant",
		ConflictResolution: ConflictFail,
		Accounts: []model.LegacyAccount{
			{OriginalCode: "5000", OriginalName: "COGS - Food"},
			{OriginalCode: "5001", OriginalName: "Food Costs"},
		},
	})
	assert.ErrorIs(t, err, common.ErrConflictAbort)
}

func TestMigrateOverrideCollidingCodeIsConflict(t *testing.T) {
	store := newMockStorage()
	store.usedCodes["6001000"] = struct{}{}
	eng := newTestEngine(store, nil)

	result, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID: "org1",
		CustomMappings: map[string]string{"9100": "6001000"},
		Accounts: []model.LegacyAccount{
			{OriginalCode: "9100", OriginalName: "Special Expense"},
		},
	})
	require.NoError(t, err)

	mapped := result.MappedAccounts[0]
	assert.Equal(t, model.StatusConflict, mapped.Status)
	assert.Equal(t, "6001000", mapped.Suggested.Code)
	assert.NotEmpty(t, mapped.Conflicts)
}

func TestMigrateOverrideKeepsUserCode(t *testing.T) {
	store := newMockStorage()
	eng := newTestEngine(store, nil)

	result, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID: "org1",
		CustomMappings: map[string]string{"9100": "6001000"},
		Accounts: []model.LegacyAccount{
			{OriginalCode: "9100", OriginalName: "Special Expense"},
		},
	})
	require.NoError(t, err)

	mapped := result.MappedAccounts[0]
	assert.Equal(t, model.StatusReady, mapped.Status)
	assert.Equal(t, "6001000", mapped.Suggested.Code)
	assert.InDelta(t, 1.0, mapped.Suggested.Confidence, 1e-9)
	assert.Equal(t, "user override", mapped.Suggested.Rationale)
}

func TestMigrateCodeBasedRequiresCanonicalAccounts(t *testing.T) {
	store := newMockStorage() // accountCount stays 0
	eng := newTestEngine(store, nil)

	_, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID: "org1",
		Strategy:       StrategyCodeBased,
		Accounts: []model.LegacyAccount{
			{OriginalCode: "1010", OriginalName: "Petty Cash"},
		},
	})
	assert.ErrorIs(t, err, common.ErrNoCanonicalAccounts)
}

func TestMigrateCodeBasedPreservesValidLegacyCode(t *testing.T) {
	store := newMockStorage()
	store.accountCount = 3
	eng := newTestEngine(store, nil)

	result, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID: "org1",
		Strategy:       StrategyCodeBased,
		Accounts: []model.LegacyAccount{
			{OriginalCode: "1200500", OriginalName: "Weird Name Nothing Matches"},
		},
	})
	require.NoError(t, err)

	mapped := result.MappedAccounts[0]
	assert.Equal(t, model.StatusReady, mapped.Status)
	assert.Equal(t, "1200500", mapped.Suggested.Code)
	assert.Equal(t, model.TypeAsset, mapped.Suggested.Type)
}

func TestMigrateOracleVerdictMustBeatClassifier(t *testing.T) {
	store := newMockStorage()
	store.templates["general"] = restaurantTemplate()

	// The classifier is very sure "Petty Cash Float" is an asset (0.95); a
	// weaker oracle verdict must not displace it.
	weak := &scriptedOracle{verdict: &oracle.Verdict{SelectedIndex: 0, Confidence: 0.6}}
	eng := newTestEngine(store, weak)

	result, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID: "org1",
		Strategy:       StrategyAISmart,
		Accounts: []model.LegacyAccount{
			{OriginalCode: "1015", OriginalName: "Petty Cash Float"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, weak.calls)

	mapped := result.MappedAccounts[0]
	assert.Equal(t, model.TypeAsset, mapped.Suggested.Type)
	assert.NotEqual(t, "5001000", mapped.Suggested.Code)
}

func TestMigrateOracleVerdictAdoptedWhenStronger(t *testing.T) {
	store := newMockStorage()
	store.templates["general"] = restaurantTemplate()

	strong := &scriptedOracle{verdict: &oracle.Verdict{
		SelectedIndex: 0,
		Confidence:    0.9,
		Rationale:     "semantically equivalent",
	}}
	eng := newTestEngine(store, strong)

	result, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID: "org1",
		Strategy:       StrategyAISmart,
		Accounts: []model.LegacyAccount{
			{OriginalCode: "9100", OriginalName: "Zzz Unmatchable"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, strong.calls)

	mapped := result.MappedAccounts[0]
	assert.Equal(t, "5001000", mapped.Suggested.Code)
	assert.Equal(t, model.StatusReady, mapped.Status)
	assert.Equal(t, "semantically equivalent", mapped.Suggested.Rationale)
}

func TestMigrateNameBasedSkipsOracle(t *testing.T) {
	store := newMockStorage()
	store.templates["general"] = restaurantTemplate()

	o := &scriptedOracle{verdict: &oracle.Verdict{SelectedIndex: 0, Confidence: 0.9}}
	eng := newTestEngine(store, o)

	_, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID: "org1",
		Strategy:       StrategyNameBased,
		Accounts: []model.LegacyAccount{
			{OriginalCode: "9100", OriginalName: "Zzz Unmatchable"},
		},
	})
	require.NoError(t, err)
	assert.Zero(t, o.calls)
}

func TestMigrateOracleErrorFallsBack(t *testing.T) {
	store := newMockStorage()
	store.templates["general"] = restaurantTemplate()

	broken := &scriptedOracle{err: errors.New("oracle down")}
	eng := newTestEngine(store, broken)

	result, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID: "org1",
		Strategy:       StrategyAISmart,
		Accounts: []model.LegacyAccount{
			{OriginalCode: "9100", OriginalName: "Zzz Unmatchable"},
		},
	})
	require.NoError(t, err)

	mapped := result.MappedAccounts[0]
	assert.Contains(t, mapped.Suggested.Rationale, "fallback after matching error")
	assert.NotEmpty(t, mapped.Suggested.Code)
}

func TestMigrateStorageErrorSurfaces(t *testing.T) {
	store := newMockStorage()
	store.usedCodesErr = errors.New("db locked")
	eng := newTestEngine(store, nil)

	_, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID: "org1",
		Accounts: []model.LegacyAccount{
			{OriginalCode: "1010", OriginalName: "Petty Cash"},
		},
	})
	assert.ErrorContains(t, err, "db locked")
}

func TestMigrateSummaryHistograms(t *testing.T) {
	store := newMockStorage()
	eng := newTestEngine(store, nil)

	result, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID: "org1",
		Accounts: []model.LegacyAccount{
			{OriginalCode: "1010", OriginalName: "Petty Cash", OriginalType: "Asset"},
			{OriginalCode: "2100", OriginalName: "Accounts Payable", OriginalType: "Liability"},
			{OriginalCode: "9999", OriginalName: "Zzz"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.ByOriginalType["Asset"])
	assert.Equal(t, 1, result.Summary.ByOriginalType["Liability"])
	assert.Equal(t, 1, result.Summary.ByOriginalType["unknown"])
	assert.Equal(t, 1, result.Summary.ByResolvedType[model.TypeAsset])
	assert.Equal(t, 2, result.Summary.ByConfidence[model.BucketHigh])
	assert.Equal(t, 1, result.Summary.ByConfidence[model.BucketLow])
}

func TestMigrateProgressCallback(t *testing.T) {
	store := newMockStorage()
	eng := newTestEngine(store, nil)

	var calls [][2]int
	eng.SetProgress(func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})

	_, err := eng.Migrate(context.Background(), MigrationRequest{
		OrganizationID: "org1",
		Accounts: []model.LegacyAccount{
			{OriginalCode: "1", OriginalName: "Petty Cash"},
			{OriginalCode: "2", OriginalName: "Bank Account"},
		},
	})
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, [2]int{1, 2}, calls[0])
	assert.Equal(t, [2]int{2, 2}, calls[1])
}

func TestMigrateRunIDUnique(t *testing.T) {
	store := newMockStorage()
	eng := newTestEngine(store, nil)

	req := MigrationRequest{
		OrganizationID: "org1",
		Accounts:       []model.LegacyAccount{{OriginalCode: "1", OriginalName: "Petty Cash"}},
	}

	first, err := eng.Migrate(context.Background(), req)
	require.NoError(t, err)
	second, err := eng.Migrate(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, first.RunID)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}
