// Package oracle adapts an external text-similarity service into the
// resolution pipeline's last-resort matching strategy. The adapter is
// fallible by design: transport failures, malformed responses, timeouts and
// out-of-range selections all collapse into "no verdict", never an error the
// batch has to care about.
package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ledgerlift/ledgerlift/internal/common"
	"github.com/ledgerlift/ledgerlift/internal/service"
)

// MaxCandidates bounds the shortlist forwarded to the oracle.
const MaxCandidates = 10

// Config holds configuration for the oracle adapter.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	MaxRetries  int
	RetryDelay  time.Duration
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// Adapter wraps a provider client with the timeout and no-verdict semantics
// the orchestrator relies on.
type Adapter struct {
	client    Client
	logger    *slog.Logger
	timeout   time.Duration
	retryOpts service.RetryOptions
}

// NewAdapter creates an oracle adapter for the configured provider.
func NewAdapter(cfg Config, logger *slog.Logger) (*Adapter, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		client, err = newOpenAIClient(cfg)
	case "anthropic":
		client, err = newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported oracle provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create oracle client: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 2
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = 500 * time.Millisecond
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Adapter{
		client:    client,
		logger:    logger,
		timeout:   timeout,
		retryOpts: retryOpts,
	}, nil
}

// NewAdapterWithClient wires an adapter around an existing client. Used by
// tests and by callers that manage provider construction themselves.
func NewAdapterWithClient(client Client, timeout time.Duration, logger *slog.Logger) *Adapter {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Adapter{
		client:  client,
		logger:  logger,
		timeout: timeout,
		retryOpts: service.RetryOptions{
			MaxAttempts:  2,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// PickBest asks the oracle to choose the best candidate for the legacy
// account. It returns nil whenever no trustworthy verdict is available; the
// caller falls back to the rule-based path in that case.
func (a *Adapter) PickBest(ctx context.Context, req Request) (*Verdict, error) {
	if len(req.Candidates) == 0 {
		return nil, nil
	}
	if len(req.Candidates) > MaxCandidates {
		req.Candidates = req.Candidates[:MaxCandidates]
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := buildPrompt(req)

	var resp VerdictResponse
	err := common.WithRetry(ctx, func() error {
		response, callErr := a.client.PickBestMatch(ctx, prompt)
		if callErr != nil {
			a.logger.Warn("oracle call attempt failed",
				"error", callErr,
				"legacy_name", req.LegacyName)
			return &common.RetryableError{Err: callErr, Retryable: true}
		}
		resp = response
		return nil
	}, a.retryOpts)

	if err != nil {
		// Timeouts and exhausted retries degrade to no verdict.
		a.logger.Warn("oracle unavailable, continuing without verdict",
			"error", err,
			"legacy_name", req.LegacyName)
		return nil, nil
	}

	if resp.SelectedIndex == nil {
		a.logger.Debug("oracle declined to select a candidate",
			"legacy_name", req.LegacyName)
		return nil, nil
	}

	idx := *resp.SelectedIndex
	if idx < 0 || idx >= len(req.Candidates) {
		a.logger.Warn("oracle selected out-of-range candidate, discarding verdict",
			"selected_index", idx,
			"candidate_count", len(req.Candidates))
		return nil, nil
	}

	confidence := resp.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	a.logger.Info("oracle verdict accepted",
		"legacy_name", req.LegacyName,
		"selected_index", idx,
		"confidence", confidence)

	return &Verdict{
		SelectedIndex: idx,
		Confidence:    confidence,
		Rationale:     resp.Rationale,
	}, nil
}

// buildPrompt renders the request into the structured-text form the provider
// clients expect back.
func buildPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Legacy account: %s\n", req.LegacyName)
	if req.LegacyType != "" {
		fmt.Fprintf(&b, "Legacy type: %s\n", req.LegacyType)
	}
	if req.LegacyDescription != "" {
		fmt.Fprintf(&b, "Legacy description: %s\n", req.LegacyDescription)
	}

	b.WriteString("\nCandidate canonical accounts:\n")
	for _, c := range req.Candidates {
		fmt.Fprintf(&b, "%d. %s (%s)", c.Index, c.Name, c.Type)
		if c.Description != "" {
			fmt.Fprintf(&b, " - %s", c.Description)
		}
		if len(c.Keywords) > 0 {
			fmt.Fprintf(&b, " [keywords: %s]", strings.Join(c.Keywords, ", "))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, `
You are mapping a legacy bookkeeping account onto a canonical chart of
accounts. Pick the single candidate that best matches the legacy account, or
none if no candidate is a reasonable match.

Respond in this exact format:
SELECTED: <candidate number, or "none">
CONFIDENCE: <0.0-1.0>
REASONING: <one sentence explaining the choice>
`)

	return b.String()
}
