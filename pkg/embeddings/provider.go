// Package embeddings provides the embedding collaborator contract and its
// backends.
package embeddings

import "context"

// Provider turns text into fixed-dimension vectors for similarity comparison.
type Provider interface {
	// EmbedDocuments generates embeddings for a batch of documents.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates the embedding for a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the vector dimension this provider produces.
	Dimension() int
}

// Ensure implementations satisfy Provider at compile time.
var (
	_ Provider = (*OpenAIProvider)(nil)
	_ Provider = (*NotConfiguredProvider)(nil)
	_ Provider = (*MockProvider)(nil)
)
