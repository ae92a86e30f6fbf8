package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hugdata-inc/hugdata-engine/pkg/embeddings"
	"github.com/hugdata-inc/hugdata-engine/pkg/models"
	"github.com/hugdata-inc/hugdata-engine/pkg/vectorstore"
)

const pairsMDL = `{
	"models": [
		{"name": "payments", "columns": [{"name": "id"}], "properties": {"boilerplate": "Payments"}},
		{"name": "users", "columns": [{"name": "id"}]}
	]
}`

func testPairLibrary() models.SQLPairLibrary {
	return models.SQLPairLibrary{
		"payments": {
			{ID: "pay-1", Question: "total payments per day", SQL: "SELECT date, SUM(amount) FROM payments GROUP BY date"},
			{Question: "largest payment this month", SQL: "SELECT MAX(amount) FROM payments"},
		},
		"shipping": {
			{ID: "ship-1", Question: "late shipments", SQL: "SELECT * FROM shipments WHERE late"},
		},
	}
}

func newSQLPairsFixture(library models.SQLPairLibrary) (SQLPairsService, vectorstore.Store) {
	store := vectorstore.NewMemory()
	embedder := embeddings.NewMockProvider(8)
	logger := zap.NewNop()
	return NewSQLPairsService(store, embedder, NewRetriever(store, embedder, logger), library, logger), store
}

func TestSQLPairsService_Index(t *testing.T) {
	svc, store := newSQLPairsFixture(testPairLibrary())

	result, err := svc.Index(context.Background(), "p1", pairsMDL, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Indexed, "only pairs for declared boilerplates are indexed")
	assert.Equal(t, []string{"payments"}, result.Boilerplates)
	assert.Equal(t, "sql_pairs_p1", result.Collection)

	count, err := store.CountDocuments(context.Background(), "sql_pairs_p1", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestSQLPairsService_SearchReturnsStoredSQL(t *testing.T) {
	svc, _ := newSQLPairsFixture(testPairLibrary())

	_, err := svc.Index(context.Background(), "p1", pairsMDL, nil)
	require.NoError(t, err)

	hits, err := svc.Search(context.Background(), "p1", "payments per day", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	for _, hit := range hits {
		assert.Equal(t, "sql_pair", hit.Document.Payload["kind"])
		assert.Equal(t, "payments", hit.Document.Payload["boilerplate"])
		assert.NotEmpty(t, hit.Document.Payload["sql"])
		assert.NotEmpty(t, hit.Document.Payload["sql_pair_id"])
	}
}

func TestSQLPairsService_NoBoilerplatesIndexesNothing(t *testing.T) {
	svc, store := newSQLPairsFixture(testPairLibrary())

	result, err := svc.Index(context.Background(), "p1", `{"models": [{"name": "users", "columns": []}]}`, nil)
	require.NoError(t, err)
	assert.Zero(t, result.Indexed)
	assert.Empty(t, result.Boilerplates)

	exists, err := store.CollectionExists(context.Background(), "sql_pairs_p1")
	require.NoError(t, err)
	assert.False(t, exists, "collection must not be created for an empty run")
}

func TestSQLPairsService_UnmatchedBoilerplateIndexesNothing(t *testing.T) {
	svc, _ := newSQLPairsFixture(testPairLibrary())

	mdl := `{"models": [{"name": "fleet", "columns": [], "properties": {"boilerplate": "Logistics"}}]}`
	result, err := svc.Index(context.Background(), "p1", mdl, nil)
	require.NoError(t, err)
	assert.Zero(t, result.Indexed)
	assert.Equal(t, []string{"logistics"}, result.Boilerplates)
}

func TestSQLPairsService_ExtraPairsOverrideLibrary(t *testing.T) {
	svc, _ := newSQLPairsFixture(testPairLibrary())

	extra := models.SQLPairLibrary{
		"payments": {{ID: "override-1", Question: "refund volume", SQL: "SELECT COUNT(*) FROM refunds"}},
	}
	result, err := svc.Index(context.Background(), "p1", pairsMDL, extra)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Indexed)

	hits, err := svc.Search(context.Background(), "p1", "refunds", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "override-1", hits[0].Document.Payload["sql_pair_id"])
}

func TestSQLPairsService_ReindexIsDestructive(t *testing.T) {
	svc, store := newSQLPairsFixture(testPairLibrary())

	_, err := svc.Index(context.Background(), "p1", pairsMDL, nil)
	require.NoError(t, err)

	extra := models.SQLPairLibrary{
		"payments": {{Question: "only pair now", SQL: "SELECT 1"}},
	}
	_, err = svc.Index(context.Background(), "p1", pairsMDL, extra)
	require.NoError(t, err)

	count, err := store.CountDocuments(context.Background(), "sql_pairs_p1", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSQLPairsService_InvalidMDL(t *testing.T) {
	svc, _ := newSQLPairsFixture(nil)

	_, err := svc.Index(context.Background(), "p1", "{not json", nil)
	require.Error(t, err)
}

func TestSQLPairsService_DeleteByPairID(t *testing.T) {
	svc, _ := newSQLPairsFixture(testPairLibrary())

	_, err := svc.Index(context.Background(), "p1", pairsMDL, nil)
	require.NoError(t, err)

	deleted, err := svc.Delete(context.Background(), "p1", []string{"pay-1"}, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), deleted)

	stats, err := svc.Stats(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.TotalPairs)
}

func TestSQLPairsService_DeleteAll(t *testing.T) {
	svc, store := newSQLPairsFixture(testPairLibrary())

	_, err := svc.Index(context.Background(), "p1", pairsMDL, nil)
	require.NoError(t, err)

	deleted, err := svc.Delete(context.Background(), "p1", nil, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), deleted)

	exists, err := store.CollectionExists(context.Background(), "sql_pairs_p1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSQLPairsService_StatsMissingCollection(t *testing.T) {
	svc, _ := newSQLPairsFixture(nil)

	stats, err := svc.Stats(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, stats.CollectionExists)
	assert.Zero(t, stats.TotalPairs)
}

func TestLoadSQLPairLibrary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pairs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Payments": [{"question": "q", "sql": "SELECT 1"}]}`), 0o600))

	library, err := LoadSQLPairLibrary(path)
	require.NoError(t, err)
	require.Len(t, library["payments"], 1, "keys are lowercased on load")
	assert.Equal(t, "SELECT 1", library["payments"][0].SQL)

	missing, err := LoadSQLPairLibrary(filepath.Join(dir, "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, missing)

	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))
	_, err = LoadSQLPairLibrary(path)
	require.Error(t, err)
}
