// Package vectorstore provides the vector index collaborator contract and
// its backends.
package vectorstore

import "context"

// Distance metrics accepted by CreateCollection.
const (
	DistanceCosine = "Cosine"
	DistanceDot    = "Dot"
	DistanceEuclid = "Euclid"
)

// Document is one stored point: an id, the text it was embedded from, the
// embedding vector, and a flat string payload used for equality filtering.
type Document struct {
	ID        string
	Content   string
	Embedding []float32
	Payload   map[string]string
}

// SearchResult is one ranked hit from a similarity search.
type SearchResult struct {
	Document Document
	Score    float64
}

// Filters are simple equality constraints combined with logical AND.
type Filters map[string]string

// CollectionStats reports size information for a collection.
type CollectionStats struct {
	PointsCount uint64
	Status      string
}

// Store is the minimum vector index surface the engine requires. Collections
// are named, project-scoped partitions; absence of a collection is treated as
// "no results" by SimilaritySearch, not an error.
type Store interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, name string, vectorSize uint64, distance string) error
	DeleteCollection(ctx context.Context, name string) error
	AddDocuments(ctx context.Context, name string, docs []Document) error
	SimilaritySearch(ctx context.Context, name string, query []float32, limit int, filters Filters) ([]SearchResult, error)
	CountDocuments(ctx context.Context, name string, filters Filters) (uint64, error)
	DeleteDocuments(ctx context.Context, name string, filters Filters) (uint64, error)
	Stats(ctx context.Context, name string) (*CollectionStats, error)
}

// Ensure implementations satisfy Store at compile time.
var (
	_ Store = (*Qdrant)(nil)
	_ Store = (*Memory)(nil)
)
