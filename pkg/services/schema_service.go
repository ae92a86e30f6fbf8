package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hugdata-inc/hugdata-engine/pkg/embeddings"
	"github.com/hugdata-inc/hugdata-engine/pkg/models"
	"github.com/hugdata-inc/hugdata-engine/pkg/vectorstore"
)

// SchemaService indexes raw database schemas into the vector store and
// answers questions about what has been indexed.
type SchemaService interface {
	// Index converts the schema into descriptive documents and writes them,
	// embedded, into the project's collection. Re-indexing is destructive:
	// the existing collection is dropped and rebuilt. Collaborator errors
	// are reported in the result with zero counts, not propagated.
	Index(ctx context.Context, projectID string, schema *models.Schema) *models.IndexResult

	// Summary reports per-kind document counts for the project.
	Summary(ctx context.Context, projectID string) (*models.SchemaSummary, error)

	// DeleteIndex drops the project's schema collection.
	DeleteIndex(ctx context.Context, projectID string) error

	// Search retrieves the schema documents most relevant to the query.
	Search(ctx context.Context, projectID, query string, limit int) ([]vectorstore.SearchResult, error)
}

type schemaService struct {
	store     vectorstore.Store
	embedder  embeddings.Provider
	retriever Retriever
	logger    *zap.Logger
}

// NewSchemaService creates a SchemaService over the given collaborators.
func NewSchemaService(store vectorstore.Store, embedder embeddings.Provider, retriever Retriever, logger *zap.Logger) SchemaService {
	return &schemaService{
		store:     store,
		embedder:  embedder,
		retriever: retriever,
		logger:    logger.Named("schema-service"),
	}
}

var _ SchemaService = (*schemaService)(nil)

func (s *schemaService) Index(ctx context.Context, projectID string, schema *models.Schema) *models.IndexResult {
	tableDocs := buildTableDocuments(projectID, schema)
	columnDocs := buildColumnDocuments(projectID, schema)
	relationshipDocs := buildRelationshipDocuments(projectID, schema)

	allDocs := make([]models.SchemaDocument, 0, len(tableDocs)+len(columnDocs)+len(relationshipDocs))
	allDocs = append(allDocs, tableDocs...)
	allDocs = append(allDocs, columnDocs...)
	allDocs = append(allDocs, relationshipDocs...)

	if err := rebuildCollection(ctx, s.store, s.embedder, vectorstore.SchemaCollection(projectID), allDocs); err != nil {
		s.logger.Error("schema indexing failed",
			zap.String("project_id", projectID),
			zap.Error(err))
		return &models.IndexResult{Err: err.Error()}
	}

	s.logger.Info("schema indexed",
		zap.String("project_id", projectID),
		zap.Int("tables", len(tableDocs)),
		zap.Int("columns", len(columnDocs)),
		zap.Int("relationships", len(relationshipDocs)))

	return &models.IndexResult{
		Tables:        len(tableDocs),
		Columns:       len(columnDocs),
		Relationships: len(relationshipDocs),
		Total:         len(allDocs),
	}
}

// rebuildCollection drops any existing collection, recreates it and upserts
// the embedded documents. Shared by every indexing service.
func rebuildCollection(ctx context.Context, store vectorstore.Store, embedder embeddings.Provider, collection string, docs []models.SchemaDocument) error {
	exists, err := store.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if exists {
		if err := store.DeleteCollection(ctx, collection); err != nil {
			return fmt.Errorf("drop collection: %w", err)
		}
	}

	if err := store.CreateCollection(ctx, collection, uint64(embedder.Dimension()), vectorstore.DistanceCosine); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	if len(docs) == 0 {
		return nil
	}

	contents := make([]string, len(docs))
	for i, doc := range docs {
		contents[i] = doc.Content
	}

	vectors, err := embedder.EmbedDocuments(ctx, contents)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embedding count mismatch: %d vectors for %d documents", len(vectors), len(docs))
	}

	points := make([]vectorstore.Document, len(docs))
	for i, doc := range docs {
		points[i] = vectorstore.Document{
			ID:        doc.ID,
			Content:   doc.Content,
			Embedding: vectors[i],
			Payload:   doc.Metadata,
		}
	}

	return store.AddDocuments(ctx, collection, points)
}

func (s *schemaService) Summary(ctx context.Context, projectID string) (*models.SchemaSummary, error) {
	collection := vectorstore.SchemaCollection(projectID)

	summary := &models.SchemaSummary{ProjectID: projectID}
	counts := []struct {
		kind models.DocumentKind
		dest *uint64
	}{
		{models.DocumentKindTable, &summary.Tables},
		{models.DocumentKindColumn, &summary.Columns},
		{models.DocumentKindRelationship, &summary.Relationships},
	}

	for _, c := range counts {
		n, err := s.store.CountDocuments(ctx, collection, vectorstore.Filters{"kind": string(c.kind)})
		if err != nil {
			return nil, fmt.Errorf("count %s documents: %w", c.kind, err)
		}
		*c.dest = n
	}

	summary.Total = summary.Tables + summary.Columns + summary.Relationships
	return summary, nil
}

func (s *schemaService) DeleteIndex(ctx context.Context, projectID string) error {
	return s.store.DeleteCollection(ctx, vectorstore.SchemaCollection(projectID))
}

func (s *schemaService) Search(ctx context.Context, projectID, query string, limit int) ([]vectorstore.SearchResult, error) {
	return s.retriever.Search(ctx, query, vectorstore.SchemaCollection(projectID), limit, vectorstore.Filters{
		"project_id": projectID,
	})
}

func buildTableDocuments(projectID string, schema *models.Schema) []models.SchemaDocument {
	docs := make([]models.SchemaDocument, 0, len(schema.Tables))
	for _, name := range sortedTableNames(schema) {
		table := schema.Tables[name]
		docs = append(docs, models.SchemaDocument{
			ID:      uuid.NewString(),
			Content: describeTable(name, table),
			Kind:    models.DocumentKindTable,
			Metadata: map[string]string{
				"kind":         string(models.DocumentKindTable),
				"project_id":   projectID,
				"table_name":   name,
				"column_count": strconv.Itoa(len(table.Columns)),
				"table_type":   tableType(table),
			},
		})
	}
	return docs
}

func buildColumnDocuments(projectID string, schema *models.Schema) []models.SchemaDocument {
	var docs []models.SchemaDocument
	for _, name := range sortedTableNames(schema) {
		for _, col := range schema.Tables[name].Columns {
			docs = append(docs, models.SchemaDocument{
				ID:      uuid.NewString(),
				Content: describeColumn(name, col),
				Kind:    models.DocumentKindColumn,
				Metadata: map[string]string{
					"kind":           string(models.DocumentKindColumn),
					"project_id":     projectID,
					"table_name":     name,
					"column_name":    col.Name,
					"column_type":    col.Type,
					"nullable":       strconv.FormatBool(col.Nullable),
					"is_primary_key": strconv.FormatBool(col.IsPrimaryKey),
				},
			})
		}
	}
	return docs
}

func buildRelationshipDocuments(projectID string, schema *models.Schema) []models.SchemaDocument {
	var docs []models.SchemaDocument
	for _, rel := range schema.Relationships {
		docs = append(docs, models.SchemaDocument{
			ID:      uuid.NewString(),
			Content: describeRelationship(rel),
			Kind:    models.DocumentKindRelationship,
			Metadata: map[string]string{
				"kind":              string(models.DocumentKindRelationship),
				"project_id":        projectID,
				"from_table":        rel.FromTable,
				"to_table":          rel.ToTable,
				"relationship_type": relationshipType(rel),
			},
		})
	}
	return docs
}

func describeTable(name string, table models.Table) string {
	parts := []string{fmt.Sprintf("Table: %s", name)}

	if table.Description != "" {
		parts = append(parts, fmt.Sprintf("Description: %s", table.Description))
	}

	if len(table.Columns) > 0 {
		cols := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			cols[i] = fmt.Sprintf("%s (%s)", col.Name, col.Type)
		}
		parts = append(parts, fmt.Sprintf("Columns: %s", strings.Join(cols, ", ")))
	}

	if table.RowCount > 0 {
		parts = append(parts, fmt.Sprintf("Approximate rows: %d", table.RowCount))
	}

	return strings.Join(parts, ". ")
}

func describeColumn(tableName string, col models.Column) string {
	parts := []string{
		fmt.Sprintf("Column %s in table %s", col.Name, tableName),
		fmt.Sprintf("Type: %s", col.Type),
	}
	if col.Description != "" {
		parts = append(parts, fmt.Sprintf("Description: %s", col.Description))
	}
	return strings.Join(parts, ". ")
}

func describeRelationship(rel models.Relationship) string {
	return fmt.Sprintf("%s relationship: %s.%s -> %s.%s",
		titleWords(strings.ReplaceAll(relationshipType(rel), "_", " ")),
		rel.FromTable, rel.FromColumn, rel.ToTable, rel.ToColumn)
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func relationshipType(rel models.Relationship) string {
	if rel.Type == "" {
		return "foreign_key"
	}
	return rel.Type
}

func tableType(table models.Table) string {
	if table.Type == "" {
		return "table"
	}
	return table.Type
}

func sortedTableNames(schema *models.Schema) []string {
	names := make([]string, 0, len(schema.Tables))
	for name := range schema.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
