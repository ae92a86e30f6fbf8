package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_CollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	exists, err := store.CollectionExists(ctx, "schema_p1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.CreateCollection(ctx, "schema_p1", 8, DistanceCosine))

	exists, err = store.CollectionExists(ctx, "schema_p1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.DeleteCollection(ctx, "schema_p1"))

	exists, err = store.CollectionExists(ctx, "schema_p1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemory_AddDocumentsRequiresCollection(t *testing.T) {
	store := NewMemory()

	err := store.AddDocuments(context.Background(), "missing", []Document{{ID: "1"}})
	assert.Error(t, err)
}

func TestMemory_SimilaritySearchRanksByCosine(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.CreateCollection(ctx, "schema_p1", 2, DistanceCosine))

	require.NoError(t, store.AddDocuments(ctx, "schema_p1", []Document{
		{ID: "a", Content: "orders table", Embedding: []float32{1, 0}},
		{ID: "b", Content: "users table", Embedding: []float32{0, 1}},
		{ID: "c", Content: "order items", Embedding: []float32{0.9, 0.1}},
	}))

	hits, err := store.SimilaritySearch(ctx, "schema_p1", []float32{1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].Document.ID)
	assert.Equal(t, "c", hits[1].Document.ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestMemory_SimilaritySearchMissingCollectionIsEmpty(t *testing.T) {
	store := NewMemory()

	hits, err := store.SimilaritySearch(context.Background(), "nope", []float32{1}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMemory_FiltersAreANDed(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.CreateCollection(ctx, "schema_p1", 2, DistanceCosine))

	require.NoError(t, store.AddDocuments(ctx, "schema_p1", []Document{
		{ID: "a", Embedding: []float32{1, 0}, Payload: map[string]string{"kind": "table_description", "table_name": "orders"}},
		{ID: "b", Embedding: []float32{1, 0}, Payload: map[string]string{"kind": "table_description", "table_name": "users"}},
		{ID: "c", Embedding: []float32{1, 0}, Payload: map[string]string{"kind": "relationship", "table_name": "orders"}},
	}))

	hits, err := store.SimilaritySearch(ctx, "schema_p1", []float32{1, 0}, 10, Filters{
		"kind":       "table_description",
		"table_name": "orders",
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].Document.ID)

	count, err := store.CountDocuments(ctx, "schema_p1", Filters{"kind": "table_description"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestMemory_DeleteDocumentsReturnsRemovedCount(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.CreateCollection(ctx, "schema_p1", 2, DistanceCosine))

	require.NoError(t, store.AddDocuments(ctx, "schema_p1", []Document{
		{ID: "a", Embedding: []float32{1, 0}, Payload: map[string]string{"kind": "relationship"}},
		{ID: "b", Embedding: []float32{1, 0}, Payload: map[string]string{"kind": "relationship"}},
		{ID: "c", Embedding: []float32{1, 0}, Payload: map[string]string{"kind": "table_columns"}},
	}))

	removed, err := store.DeleteDocuments(ctx, "schema_p1", Filters{"kind": "relationship"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), removed)

	stats, err := store.Stats(ctx, "schema_p1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.PointsCount)
}

func TestCollectionNames(t *testing.T) {
	assert.Equal(t, "schema_p1", SchemaCollection("p1"))
	assert.Equal(t, "sql_pairs_p1", SQLPairsCollection("p1"))
	assert.Equal(t, "table_descriptions_p1", TableDescriptionsCollection("p1"))
}
