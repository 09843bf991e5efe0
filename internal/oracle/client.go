package oracle

import (
	"context"

	"github.com/ledgerlift/ledgerlift/internal/model"
)

// Client defines the interface for semantic similarity providers.
type Client interface {
	PickBestMatch(ctx context.Context, prompt string) (VerdictResponse, error)
}

// Candidate is one template account forwarded to the oracle, identified by
// its position in the shortlist.
type Candidate struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Type        model.AccountType `json:"type"`
	Keywords    []string          `json:"keywords,omitempty"`
	Index       int               `json:"index"`
}

// Request carries the legacy account fields plus a bounded candidate
// shortlist (at most MaxCandidates entries).
type Request struct {
	LegacyName        string      `json:"legacyName"`
	LegacyType        string      `json:"legacyType,omitempty"`
	LegacyDescription string      `json:"legacyDescription,omitempty"`
	Candidates        []Candidate `json:"candidates"`
}

// VerdictResponse is the provider's raw answer. A nil SelectedIndex means the
// oracle declined to pick any candidate.
type VerdictResponse struct {
	SelectedIndex *int
	Rationale     string
	Confidence    float64
}

// Verdict is a validated oracle decision: SelectedIndex is guaranteed to be a
// valid position in the request's candidate list.
type Verdict struct {
	Rationale     string
	SelectedIndex int
	Confidence    float64
}
