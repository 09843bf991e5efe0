package match

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledgerlift/ledgerlift/internal/model"
	"github.com/ledgerlift/ledgerlift/internal/oracle"
	"github.com/ledgerlift/ledgerlift/internal/text"
)

const (
	// maxResults caps the ranked candidate list returned per match call.
	maxResults = 5
	// oracleTriggerConfidence is the top-candidate confidence below which the
	// semantic oracle is consulted.
	oracleTriggerConfidence = 0.75

	aliasSimilarityThreshold = 0.8
	fuzzySimilarityThreshold = 0.7
)

// Oracle is the optional last-resort strategy: an external semantic
// similarity service that picks the best candidate from a bounded shortlist.
// A nil verdict with a nil error means "no verdict"; errors are reserved for
// failures the caller must fall back from.
type Oracle interface {
	PickBest(ctx context.Context, req oracle.Request) (*oracle.Verdict, error)
}

// Request describes one legacy account to match against the template.
type Request struct {
	Name        string
	Type        string
	Description string
}

// Matcher runs the matching cascade against a template index.
type Matcher struct {
	index  *Index
	oracle Oracle
}

// NewMatcher creates a matcher over the given index. The oracle may be nil,
// in which case the cascade stops after the lexical strategies.
func NewMatcher(index *Index, o Oracle) *Matcher {
	return &Matcher{index: index, oracle: o}
}

// Match runs the full cascade and returns up to five candidates ranked by
// descending score. An empty template yields an empty result, not an error.
func (m *Matcher) Match(ctx context.Context, req Request) (model.MatchCandidates, error) {
	if m.index.Size() == 0 {
		return nil, nil
	}

	normalized := text.Normalize(req.Name)

	var candidates model.MatchCandidates
	candidates = append(candidates, m.exactMatches(normalized)...)
	candidates = append(candidates, m.aliasMatches(normalized)...)
	candidates = append(candidates, m.fuzzyMatches(normalized)...)
	candidates = append(candidates, m.keywordMatches(req.Name)...)

	merged := candidates.Dedupe()

	if m.oracle != nil && m.needsOracle(merged) {
		oracleCandidate, err := m.consultOracle(ctx, req, merged)
		if err != nil {
			return nil, fmt.Errorf("semantic oracle failed: %w", err)
		}
		if oracleCandidate != nil {
			merged = append(merged, *oracleCandidate).Dedupe()
		}
	}

	return merged.TopN(maxResults), nil
}

// exactMatches finds template accounts whose normalized name equals the input.
func (m *Matcher) exactMatches(normalized string) model.MatchCandidates {
	if normalized == "" {
		return nil
	}

	var out model.MatchCandidates
	for _, account := range m.index.LookupName(normalized) {
		out = append(out, model.MatchCandidate{
			Account:    account,
			Strategy:   model.StrategyExact,
			Score:      100,
			Confidence: 1.0,
			Rationale:  "exact name match",
		})
	}
	return out
}

// aliasMatches finds accounts via exact or near-exact alias equality.
func (m *Matcher) aliasMatches(normalized string) model.MatchCandidates {
	if normalized == "" {
		return nil
	}

	var out model.MatchCandidates
	for _, account := range m.index.LookupAlias(normalized) {
		out = append(out, model.MatchCandidate{
			Account:    account,
			Strategy:   model.StrategyAlias,
			Score:      90,
			Confidence: 0.95,
			Rationale:  "exact alias match",
		})
	}

	for _, entry := range m.index.aliasEntries {
		if entry.alias == normalized {
			continue // already added above
		}
		similarity := text.Similarity(normalized, entry.alias)
		if similarity > aliasSimilarityThreshold {
			out = append(out, model.MatchCandidate{
				Account:    entry.account,
				Strategy:   model.StrategyAlias,
				Score:      similarity * 85,
				Confidence: similarity * 0.9,
				Rationale:  fmt.Sprintf("alias similarity %.2f to %q", similarity, entry.alias),
			})
		}
	}

	return out
}

// fuzzyMatches compares the input against every template name by edit
// distance.
func (m *Matcher) fuzzyMatches(normalized string) model.MatchCandidates {
	if normalized == "" {
		return nil
	}

	var out model.MatchCandidates
	for i, name := range m.index.normalizedNames {
		similarity := text.Similarity(normalized, name)
		if similarity > fuzzySimilarityThreshold {
			out = append(out, model.MatchCandidate{
				Account:    m.index.accounts[i],
				Strategy:   model.StrategyFuzzy,
				Score:      similarity * 80,
				Confidence: similarity,
				Rationale:  fmt.Sprintf("name similarity %.2f", similarity),
			})
		}
	}
	return out
}

// keywordMatches awards accounts a base score for the first shared keyword
// and a bonus for every further keyword that also matches. Multi-keyword
// overlap on the same account accumulates.
func (m *Matcher) keywordMatches(name string) model.MatchCandidates {
	keywords := text.Keywords(name, text.DefaultKeywordCount)
	if len(keywords) == 0 {
		return nil
	}

	type hit struct {
		account model.TemplateAccount
		matched []string
	}
	hits := make(map[string]*hit)

	for _, keyword := range keywords {
		for _, account := range m.index.LookupKeyword(keyword) {
			h, ok := hits[account.AccountCode]
			if !ok {
				h = &hit{account: account}
				hits[account.AccountCode] = h
			}
			h.matched = append(h.matched, keyword)
		}
	}

	var out model.MatchCandidates
	for _, h := range hits {
		score := 60 + 10*float64(len(h.matched)-1)
		out = append(out, model.MatchCandidate{
			Account:    h.account,
			Strategy:   model.StrategyKeyword,
			Score:      score,
			Confidence: 0.8,
			Rationale:  fmt.Sprintf("keyword overlap: %s", strings.Join(h.matched, ", ")),
		})
	}
	return out
}

// needsOracle reports whether the lexical cascade left us unsure enough to
// pay for an oracle call.
func (m *Matcher) needsOracle(merged model.MatchCandidates) bool {
	if len(merged) == 0 {
		return true
	}
	return merged.Top().Confidence < oracleTriggerConfidence
}

// consultOracle forwards a bounded shortlist to the semantic oracle and wraps
// its verdict as a candidate. The shortlist starts with the cascade's own
// candidates and is padded with the highest-priority template accounts.
func (m *Matcher) consultOracle(ctx context.Context, req Request, merged model.MatchCandidates) (*model.MatchCandidate, error) {
	shortlist := make([]model.TemplateAccount, 0, oracle.MaxCandidates)
	seen := make(map[string]struct{}, oracle.MaxCandidates)

	for _, c := range merged {
		if len(shortlist) == oracle.MaxCandidates {
			break
		}
		if _, dup := seen[c.Account.AccountCode]; dup {
			continue
		}
		seen[c.Account.AccountCode] = struct{}{}
		shortlist = append(shortlist, c.Account)
	}

	for _, account := range m.index.ByPriority(oracle.MaxCandidates) {
		if len(shortlist) == oracle.MaxCandidates {
			break
		}
		if _, dup := seen[account.AccountCode]; dup {
			continue
		}
		seen[account.AccountCode] = struct{}{}
		shortlist = append(shortlist, account)
	}

	oracleReq := oracle.Request{
		LegacyName:        req.Name,
		LegacyType:        req.Type,
		LegacyDescription: req.Description,
		Candidates:        make([]oracle.Candidate, len(shortlist)),
	}
	for i, account := range shortlist {
		oracleReq.Candidates[i] = oracle.Candidate{
			Index:       i,
			Name:        account.AccountName,
			Type:        account.AccountType,
			Description: account.Description,
			Keywords:    account.Keywords,
		}
	}

	verdict, err := m.oracle.PickBest(ctx, oracleReq)
	if err != nil {
		return nil, err
	}
	if verdict == nil {
		slog.Debug("oracle returned no verdict", "legacy_name", req.Name)
		return nil, nil
	}

	return &model.MatchCandidate{
		Account:    shortlist[verdict.SelectedIndex],
		Strategy:   model.StrategySemanticOracle,
		Score:      verdict.Confidence * 100,
		Confidence: verdict.Confidence,
		Rationale:  verdict.Rationale,
	}, nil
}
