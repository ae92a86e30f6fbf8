package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/hugdata-inc/hugdata-engine/pkg/apperrors"
)

// Memory is an in-process Store used by tests and local development. It
// mirrors the Qdrant semantics the engine depends on: named collections,
// ANDed equality filters, and missing-collection-means-empty search.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]Document
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]Document)}
}

// CollectionExists implements Store.
func (m *Memory) CollectionExists(ctx context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.collections[name]
	return ok, nil
}

// CreateCollection implements Store.
func (m *Memory) CreateCollection(ctx context.Context, name string, vectorSize uint64, distance string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; !ok {
		m.collections[name] = nil
	}
	return nil
}

// DeleteCollection implements Store.
func (m *Memory) DeleteCollection(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, name)
	return nil
}

// AddDocuments implements Store.
func (m *Memory) AddDocuments(ctx context.Context, name string, docs []Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; !ok {
		return apperrors.New(apperrors.KindRetrieval, "collection %s does not exist", name)
	}
	m.collections[name] = append(m.collections[name], docs...)
	return nil
}

// SimilaritySearch implements Store. Results are ranked by cosine similarity.
func (m *Memory) SimilaritySearch(ctx context.Context, name string, query []float32, limit int, filters Filters) ([]SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs, ok := m.collections[name]
	if !ok {
		return nil, nil
	}

	var hits []SearchResult
	for _, doc := range docs {
		if !matches(doc, filters) {
			continue
		}
		hits = append(hits, SearchResult{Document: doc, Score: cosine(query, doc.Embedding)})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// CountDocuments implements Store.
func (m *Memory) CountDocuments(ctx context.Context, name string, filters Filters) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count uint64
	for _, doc := range m.collections[name] {
		if matches(doc, filters) {
			count++
		}
	}
	return count, nil
}

// DeleteDocuments implements Store.
func (m *Memory) DeleteDocuments(ctx context.Context, name string, filters Filters) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs, ok := m.collections[name]
	if !ok {
		return 0, nil
	}

	var kept []Document
	var removed uint64
	for _, doc := range docs {
		if matches(doc, filters) {
			removed++
			continue
		}
		kept = append(kept, doc)
	}
	m.collections[name] = kept
	return removed, nil
}

// Stats implements Store.
func (m *Memory) Stats(ctx context.Context, name string) (*CollectionStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs, ok := m.collections[name]
	if !ok {
		return nil, apperrors.New(apperrors.KindRetrieval, "collection %s does not exist", name)
	}
	return &CollectionStats{PointsCount: uint64(len(docs)), Status: "green"}, nil
}

func matches(doc Document, filters Filters) bool {
	for k, v := range filters {
		if doc.Payload[k] != v {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
