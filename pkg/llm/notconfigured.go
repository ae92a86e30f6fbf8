package llm

import (
	"context"

	"github.com/hugdata-inc/hugdata-engine/pkg/apperrors"
)

// NotConfiguredClient is wired when no LLM backend is configured. Every call
// fails with a clear configuration error; fabricated responses are never
// substituted for a missing collaborator.
type NotConfiguredClient struct {
	Reason string
}

// NewNotConfiguredClient creates a client that fails loudly on first use.
func NewNotConfiguredClient(reason string) *NotConfiguredClient {
	if reason == "" {
		reason = "no LLM API key is set"
	}
	return &NotConfiguredClient{Reason: reason}
}

// Generate implements Client.
func (c *NotConfiguredClient) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	return "", apperrors.Wrap(apperrors.KindConfiguration, apperrors.ErrNotConfigured,
		"LLM provider is not configured: %s; set OPENAI_API_KEY or ANTHROPIC_API_KEY", c.Reason)
}

// Model implements Client.
func (c *NotConfiguredClient) Model() string {
	return "not-configured"
}
