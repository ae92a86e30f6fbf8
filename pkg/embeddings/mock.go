package embeddings

import (
	"context"
	"hash/fnv"
	"math/rand"
)

// MockProvider generates deterministic pseudo-random vectors for tests.
// The same text always yields the same vector, so similarity comparisons are
// stable across runs.
type MockProvider struct {
	// EmbedQueryFunc overrides EmbedQuery when set.
	EmbedQueryFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedDocumentsFunc overrides EmbedDocuments when set.
	EmbedDocumentsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	Dim int

	// Call tracking for verification
	EmbedQueryCalls     int
	EmbedDocumentsCalls int
}

// NewMockProvider creates a mock with the given dimension (defaults to 8).
func NewMockProvider(dim int) *MockProvider {
	if dim <= 0 {
		dim = 8
	}
	return &MockProvider{Dim: dim}
}

// EmbedDocuments implements Provider.
func (m *MockProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	m.EmbedDocumentsCalls++
	if m.EmbedDocumentsFunc != nil {
		return m.EmbedDocumentsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.vectorFor(text)
	}
	return vectors, nil
}

// EmbedQuery implements Provider.
func (m *MockProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	m.EmbedQueryCalls++
	if m.EmbedQueryFunc != nil {
		return m.EmbedQueryFunc(ctx, text)
	}
	return m.vectorFor(text), nil
}

// Dimension implements Provider.
func (m *MockProvider) Dimension() int {
	return m.Dim
}

func (m *MockProvider) vectorFor(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float32, m.Dim)
	for i := range vec {
		vec[i] = float32(rng.NormFloat64())
	}
	return vec
}
