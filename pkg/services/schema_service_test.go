package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hugdata-inc/hugdata-engine/pkg/apperrors"
	"github.com/hugdata-inc/hugdata-engine/pkg/embeddings"
	"github.com/hugdata-inc/hugdata-engine/pkg/models"
	"github.com/hugdata-inc/hugdata-engine/pkg/vectorstore"
)

func testSchema() *models.Schema {
	return &models.Schema{
		Tables: map[string]models.Table{
			"users": {
				Description: "Registered users",
				RowCount:    1200,
				Columns: []models.Column{
					{Name: "id", Type: "integer", IsPrimaryKey: true},
					{Name: "email", Type: "text"},
				},
			},
			"orders": {
				Columns: []models.Column{
					{Name: "id", Type: "integer"},
					{Name: "user_id", Type: "integer", Nullable: true},
				},
			},
		},
		Relationships: []models.Relationship{
			{FromTable: "orders", FromColumn: "user_id", ToTable: "users", ToColumn: "id"},
		},
	}
}

func newSchemaFixture() (SchemaService, *vectorstore.Memory) {
	store := vectorstore.NewMemory()
	embedder := embeddings.NewMockProvider(8)
	logger := zap.NewNop()
	retriever := NewRetriever(store, embedder, logger)
	return NewSchemaService(store, embedder, retriever, logger), store
}

func TestSchemaService_Index(t *testing.T) {
	svc, store := newSchemaFixture()
	ctx := context.Background()

	result := svc.Index(ctx, "p1", testSchema())

	assert.Empty(t, result.Err)
	assert.Equal(t, 2, result.Tables)
	assert.Equal(t, 4, result.Columns)
	assert.Equal(t, 1, result.Relationships)
	assert.Equal(t, 7, result.Total)

	stats, err := store.Stats(ctx, vectorstore.SchemaCollection("p1"))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), stats.PointsCount)
}

func TestSchemaService_ReindexIsDestructive(t *testing.T) {
	svc, store := newSchemaFixture()
	ctx := context.Background()

	svc.Index(ctx, "p1", testSchema())

	smaller := &models.Schema{
		Tables: map[string]models.Table{
			"users": {Columns: []models.Column{{Name: "id", Type: "integer"}}},
		},
	}
	result := svc.Index(ctx, "p1", smaller)
	assert.Equal(t, 2, result.Total)

	stats, err := store.Stats(ctx, vectorstore.SchemaCollection("p1"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.PointsCount, "old documents must not survive a re-index")
}

func TestSchemaService_IndexReportsCollaboratorFailure(t *testing.T) {
	store := vectorstore.NewMemory()
	embedder := embeddings.NewNotConfiguredProvider("")
	logger := zap.NewNop()
	svc := NewSchemaService(store, embedder, NewRetriever(store, embedder, logger), logger)

	result := svc.Index(context.Background(), "p1", testSchema())

	assert.NotEmpty(t, result.Err)
	assert.Zero(t, result.Tables)
	assert.Zero(t, result.Columns)
	assert.Zero(t, result.Relationships)
	assert.Zero(t, result.Total)
}

func TestSchemaService_Summary(t *testing.T) {
	svc, _ := newSchemaFixture()
	ctx := context.Background()

	svc.Index(ctx, "p1", testSchema())

	summary, err := svc.Summary(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), summary.Tables)
	assert.Equal(t, uint64(4), summary.Columns)
	assert.Equal(t, uint64(1), summary.Relationships)
	assert.Equal(t, uint64(7), summary.Total)
}

func TestSchemaService_Search(t *testing.T) {
	svc, _ := newSchemaFixture()
	ctx := context.Background()

	svc.Index(ctx, "p1", testSchema())

	hits, err := svc.Search(ctx, "p1", "user emails", 3)
	require.NoError(t, err)
	assert.NotEmpty(t, hits)
	assert.LessOrEqual(t, len(hits), 3)
	for _, hit := range hits {
		assert.Equal(t, "p1", hit.Document.Payload["project_id"])
	}
}

func TestSchemaService_SearchMissingProjectIsEmpty(t *testing.T) {
	svc, _ := newSchemaFixture()

	hits, err := svc.Search(context.Background(), "ghost", "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRetriever_UnconfiguredEmbedderFailsLoudly(t *testing.T) {
	store := vectorstore.NewMemory()
	retriever := NewRetriever(store, embeddings.NewNotConfiguredProvider(""), zap.NewNop())

	_, err := retriever.Search(context.Background(), "q", "schema_p1", 5, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConfiguration))
}

func TestDescribeTable(t *testing.T) {
	content := describeTable("users", testSchema().Tables["users"])
	assert.Contains(t, content, "Table: users")
	assert.Contains(t, content, "Description: Registered users")
	assert.Contains(t, content, "id (integer), email (text)")
	assert.Contains(t, content, "Approximate rows: 1200")
}

func TestDescribeRelationship(t *testing.T) {
	content := describeRelationship(models.Relationship{
		FromTable: "orders", FromColumn: "user_id",
		ToTable: "users", ToColumn: "id",
	})
	assert.Equal(t, "Foreign Key relationship: orders.user_id -> users.id", content)
}
