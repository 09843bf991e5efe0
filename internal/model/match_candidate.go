package model

import (
	"fmt"
	"sort"
)

// MatchStrategy identifies which stage of the matching cascade produced a
// candidate.
type MatchStrategy string

// Matching strategies in cascade order.
const (
	StrategyExact          MatchStrategy = "EXACT"
	StrategyAlias          MatchStrategy = "ALIAS"
	StrategyFuzzy          MatchStrategy = "FUZZY"
	StrategyKeyword        MatchStrategy = "KEYWORD"
	StrategySemanticOracle MatchStrategy = "SEMANTIC_ORACLE"
)

// MatchCandidate pairs a template account with the evidence for suggesting it.
// Candidates are ephemeral: produced per matching call, deduplicated by account
// code and discarded once the batch completes.
type MatchCandidate struct {
	Account    TemplateAccount `json:"account"`
	Strategy   MatchStrategy   `json:"strategy"`
	Rationale  string          `json:"rationale"`
	Score      float64         `json:"score"`
	Confidence float64         `json:"confidence"`
}

// Validate ensures the candidate carries usable data.
func (c *MatchCandidate) Validate() error {
	if c.Account.AccountCode == "" {
		return fmt.Errorf("candidate account code is required")
	}
	if c.Confidence < 0.0 || c.Confidence > 1.0 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0, got %.2f", c.Confidence)
	}
	return nil
}

// MatchCandidates is a rankable set of match candidates.
type MatchCandidates []MatchCandidate

// Len implements sort.Interface.
func (m MatchCandidates) Len() int { return len(m) }

// Less implements sort.Interface. Higher scores first; confidence breaks ties.
func (m MatchCandidates) Less(i, j int) bool {
	if m[i].Score != m[j].Score {
		return m[i].Score > m[j].Score
	}
	if m[i].Confidence != m[j].Confidence {
		return m[i].Confidence > m[j].Confidence
	}
	// Stable ordering for equal evidence.
	return m[i].Account.AccountCode < m[j].Account.AccountCode
}

// Swap implements sort.Interface.
func (m MatchCandidates) Swap(i, j int) { m[i], m[j] = m[j], m[i] }

// Sort orders the candidates by descending score.
func (m MatchCandidates) Sort() { sort.Sort(m) }

// Top returns the best candidate, or nil if the set is empty.
func (m MatchCandidates) Top() *MatchCandidate {
	if len(m) == 0 {
		return nil
	}
	m.Sort()
	return &m[0]
}

// TopN returns the N best candidates.
func (m MatchCandidates) TopN(n int) MatchCandidates {
	if n <= 0 {
		return MatchCandidates{}
	}
	m.Sort()
	if n > len(m) {
		n = len(m)
	}
	result := make(MatchCandidates, n)
	copy(result, m[:n])
	return result
}

// Dedupe keeps, per distinct account code, only the highest-scoring candidate.
func (m MatchCandidates) Dedupe() MatchCandidates {
	best := make(map[string]MatchCandidate, len(m))
	for _, c := range m {
		existing, ok := best[c.Account.AccountCode]
		if !ok || c.Score > existing.Score {
			best[c.Account.AccountCode] = c
		}
	}

	result := make(MatchCandidates, 0, len(best))
	for _, c := range best {
		result = append(result, c)
	}
	result.Sort()
	return result
}
