package embeddings

import (
	"context"

	"github.com/hugdata-inc/hugdata-engine/pkg/apperrors"
)

// NotConfiguredProvider is wired when no embedding backend is configured.
// Every call is a hard configuration failure, never a silent empty result.
type NotConfiguredProvider struct {
	Reason string
}

// NewNotConfiguredProvider creates a provider that fails loudly on first use.
func NewNotConfiguredProvider(reason string) *NotConfiguredProvider {
	if reason == "" {
		reason = "no embedding API key is set"
	}
	return &NotConfiguredProvider{Reason: reason}
}

func (p *NotConfiguredProvider) err() error {
	return apperrors.Wrap(apperrors.KindConfiguration, apperrors.ErrNotConfigured,
		"embeddings provider is not configured: %s; set EMBEDDING_API_KEY or OPENAI_API_KEY", p.Reason)
}

// EmbedDocuments implements Provider.
func (p *NotConfiguredProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, p.err()
}

// EmbedQuery implements Provider.
func (p *NotConfiguredProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return nil, p.err()
}

// Dimension implements Provider.
func (p *NotConfiguredProvider) Dimension() int {
	return 0
}
