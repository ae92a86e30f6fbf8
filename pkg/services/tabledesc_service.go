package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hugdata-inc/hugdata-engine/pkg/apperrors"
	"github.com/hugdata-inc/hugdata-engine/pkg/embeddings"
	"github.com/hugdata-inc/hugdata-engine/pkg/models"
	"github.com/hugdata-inc/hugdata-engine/pkg/vectorstore"
)

// TableDescriptionService indexes human-readable descriptions of the MDL's
// models, metrics and views so retrieval can answer "which table holds X"
// style questions.
type TableDescriptionService interface {
	// Index parses the MDL, renders one description document per named
	// resource and destructively rebuilds the project's table_descriptions
	// collection.
	Index(ctx context.Context, projectID, mdlJSON string) (*models.TableDescriptionIndexResult, error)

	// Search retrieves the descriptions most relevant to the query.
	Search(ctx context.Context, projectID, query string, limit int) ([]vectorstore.SearchResult, error)

	// DeleteIndex drops the project's table-description collection.
	DeleteIndex(ctx context.Context, projectID string) error

	// Stats reports how many descriptions are indexed for the project.
	Stats(ctx context.Context, projectID string) (*models.TableDescriptionStats, error)
}

type tableDescriptionService struct {
	store     vectorstore.Store
	embedder  embeddings.Provider
	retriever Retriever
	logger    *zap.Logger
}

// NewTableDescriptionService creates a TableDescriptionService.
func NewTableDescriptionService(store vectorstore.Store, embedder embeddings.Provider, retriever Retriever, logger *zap.Logger) TableDescriptionService {
	return &tableDescriptionService{
		store:     store,
		embedder:  embedder,
		retriever: retriever,
		logger:    logger.Named("table-description-service"),
	}
}

var _ TableDescriptionService = (*tableDescriptionService)(nil)

func (s *tableDescriptionService) Index(ctx context.Context, projectID, mdlJSON string) (*models.TableDescriptionIndexResult, error) {
	var def models.ModelDefinition
	if err := json.Unmarshal([]byte(mdlJSON), &def); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid model definition JSON")
	}

	docs := buildDescriptionDocuments(projectID, &def)

	result := &models.TableDescriptionIndexResult{ProjectID: projectID}
	if len(docs) == 0 {
		s.logger.Info("MDL carries no named resources", zap.String("project_id", projectID))
		return result, nil
	}

	collection := vectorstore.TableDescriptionsCollection(projectID)
	if err := rebuildCollection(ctx, s.store, s.embedder, collection, docs); err != nil {
		s.logger.Error("table description indexing failed",
			zap.String("project_id", projectID),
			zap.Error(err))
		return nil, apperrors.Wrap(apperrors.KindOf(err), err, "index table descriptions")
	}

	result.Indexed = len(docs)
	result.Collection = collection

	s.logger.Info("table descriptions indexed",
		zap.String("project_id", projectID),
		zap.Int("descriptions", len(docs)))
	return result, nil
}

func buildDescriptionDocuments(projectID string, def *models.ModelDefinition) []models.SchemaDocument {
	var docs []models.SchemaDocument

	resources := []struct {
		mdlType string
		models  []models.EntityModel
	}{
		{"MODEL", def.Models},
		{"METRIC", def.Metrics},
		{"VIEW", def.Views},
	}

	for _, group := range resources {
		for _, resource := range group.models {
			if resource.Name == "" {
				continue
			}
			docs = append(docs, models.SchemaDocument{
				ID:      uuid.NewString(),
				Content: describeResource(resource, group.mdlType),
				Kind:    models.DocumentKindTable,
				Metadata: map[string]string{
					"kind":       string(models.DocumentKindTable),
					"project_id": projectID,
					"table_name": resource.Name,
					"mdl_type":   group.mdlType,
				},
			})
		}
	}
	return docs
}

func describeResource(resource models.EntityModel, mdlType string) string {
	parts := []string{
		fmt.Sprintf("Table: %s", resource.Name),
		fmt.Sprintf("Type: %s", mdlType),
	}

	if description, _ := resource.Properties["description"].(string); description != "" {
		parts = append(parts, fmt.Sprintf("Description: %s", description))
	}

	names := make([]string, 0, len(resource.Columns))
	for _, col := range resource.Columns {
		if col.Name != "" {
			names = append(names, col.Name)
		}
	}
	if len(names) > 0 {
		parts = append(parts, fmt.Sprintf("Columns: %s", strings.Join(names, ", ")))
	}

	return strings.Join(parts, "\n")
}

func (s *tableDescriptionService) Search(ctx context.Context, projectID, query string, limit int) ([]vectorstore.SearchResult, error) {
	return s.retriever.Search(ctx, query, vectorstore.TableDescriptionsCollection(projectID), limit, nil)
}

func (s *tableDescriptionService) DeleteIndex(ctx context.Context, projectID string) error {
	return s.store.DeleteCollection(ctx, vectorstore.TableDescriptionsCollection(projectID))
}

func (s *tableDescriptionService) Stats(ctx context.Context, projectID string) (*models.TableDescriptionStats, error) {
	collection := vectorstore.TableDescriptionsCollection(projectID)

	exists, err := s.store.CollectionExists(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return &models.TableDescriptionStats{ProjectID: projectID}, nil
	}

	stats, err := s.store.Stats(ctx, collection)
	if err != nil {
		return nil, err
	}
	return &models.TableDescriptionStats{
		TotalDescriptions: stats.PointsCount,
		CollectionExists:  true,
		ProjectID:         projectID,
	}, nil
}
