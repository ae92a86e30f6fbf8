package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hugdata-inc/hugdata-engine/pkg/embeddings"
	"github.com/hugdata-inc/hugdata-engine/pkg/vectorstore"
)

const descriptionsMDL = `{
	"models": [
		{
			"name": "users",
			"columns": [{"name": "id"}, {"name": "email"}],
			"properties": {"description": "Registered accounts"}
		},
		{"name": "", "columns": [{"name": "orphan"}]}
	],
	"metrics": [
		{"name": "daily_revenue", "columns": [{"name": "date"}, {"name": "amount"}]}
	],
	"views": [
		{"name": "active_users", "columns": [{"name": "id"}]}
	]
}`

func newTableDescriptionFixture() (TableDescriptionService, vectorstore.Store) {
	store := vectorstore.NewMemory()
	embedder := embeddings.NewMockProvider(8)
	logger := zap.NewNop()
	return NewTableDescriptionService(store, embedder, NewRetriever(store, embedder, logger), logger), store
}

func TestTableDescriptionService_Index(t *testing.T) {
	svc, store := newTableDescriptionFixture()

	result, err := svc.Index(context.Background(), "p1", descriptionsMDL)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Indexed, "unnamed resources are skipped")
	assert.Equal(t, "table_descriptions_p1", result.Collection)

	count, err := store.CountDocuments(context.Background(), "table_descriptions_p1", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestTableDescriptionService_ContentAndPayload(t *testing.T) {
	svc, _ := newTableDescriptionFixture()

	_, err := svc.Index(context.Background(), "p1", descriptionsMDL)
	require.NoError(t, err)

	hits, err := svc.Search(context.Background(), "p1", "registered accounts", 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	byName := map[string]vectorstore.Document{}
	for _, hit := range hits {
		byName[hit.Document.Payload["table_name"]] = hit.Document
	}

	users := byName["users"]
	assert.Equal(t, "MODEL", users.Payload["mdl_type"])
	assert.Contains(t, users.Content, "Table: users")
	assert.Contains(t, users.Content, "Description: Registered accounts")
	assert.Contains(t, users.Content, "Columns: id, email")

	assert.Equal(t, "METRIC", byName["daily_revenue"].Payload["mdl_type"])
	assert.Equal(t, "VIEW", byName["active_users"].Payload["mdl_type"])
}

func TestTableDescriptionService_EmptyMDL(t *testing.T) {
	svc, store := newTableDescriptionFixture()

	result, err := svc.Index(context.Background(), "p1", `{"models": []}`)
	require.NoError(t, err)
	assert.Zero(t, result.Indexed)

	exists, err := store.CollectionExists(context.Background(), "table_descriptions_p1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTableDescriptionService_InvalidMDL(t *testing.T) {
	svc, _ := newTableDescriptionFixture()

	_, err := svc.Index(context.Background(), "p1", "{not json")
	require.Error(t, err)
}

func TestTableDescriptionService_ReindexIsDestructive(t *testing.T) {
	svc, store := newTableDescriptionFixture()

	_, err := svc.Index(context.Background(), "p1", descriptionsMDL)
	require.NoError(t, err)

	_, err = svc.Index(context.Background(), "p1", `{"models": [{"name": "users", "columns": [{"name": "id"}]}]}`)
	require.NoError(t, err)

	count, err := store.CountDocuments(context.Background(), "table_descriptions_p1", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestTableDescriptionService_StatsAndDelete(t *testing.T) {
	svc, _ := newTableDescriptionFixture()

	stats, err := svc.Stats(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, stats.CollectionExists)

	_, err = svc.Index(context.Background(), "p1", descriptionsMDL)
	require.NoError(t, err)

	stats, err = svc.Stats(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, stats.CollectionExists)
	assert.Equal(t, uint64(3), stats.TotalDescriptions)

	require.NoError(t, svc.DeleteIndex(context.Background(), "p1"))

	stats, err = svc.Stats(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, stats.CollectionExists)
}
