// Package llm provides the language model collaborator contract and its
// backends.
package llm

import "context"

// Client is the minimum language model surface the engine requires.
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// Generate produces a free-text completion for the prompt.
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)

	// Model returns the configured model name.
	Model() string
}

// Ensure implementations satisfy Client at compile time.
var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*AnthropicClient)(nil)
	_ Client = (*NotConfiguredClient)(nil)
	_ Client = (*MockClient)(nil)
)
