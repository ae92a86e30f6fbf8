package services

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hugdata-inc/hugdata-engine/pkg/apperrors"
	"github.com/hugdata-inc/hugdata-engine/pkg/embeddings"
	"github.com/hugdata-inc/hugdata-engine/pkg/models"
	"github.com/hugdata-inc/hugdata-engine/pkg/vectorstore"
)

// SQLPairsService indexes curated question/SQL example pairs. A project's MDL
// names boilerplates; pairs from the library matching those boilerplates are
// embedded by question text so generation can retrieve worked examples.
type SQLPairsService interface {
	// Index parses the MDL, selects library pairs matching its boilerplates
	// (extra pairs are merged over the library) and destructively rebuilds
	// the project's sql_pairs collection. An MDL without boilerplates, or
	// boilerplates without pairs, indexes nothing and leaves the collection
	// untouched.
	Index(ctx context.Context, projectID, mdlJSON string, extra models.SQLPairLibrary) (*models.SQLPairsIndexResult, error)

	// Search retrieves the pairs whose questions are most similar to the
	// query.
	Search(ctx context.Context, projectID, query string, limit int) ([]vectorstore.SearchResult, error)

	// Delete removes specific pairs by id, or the whole collection when
	// deleteAll is set. A missing collection deletes zero pairs.
	Delete(ctx context.Context, projectID string, pairIDs []string, deleteAll bool) (uint64, error)

	// Stats reports how many pairs are indexed for the project.
	Stats(ctx context.Context, projectID string) (*models.SQLPairsStats, error)
}

type sqlPairsService struct {
	store     vectorstore.Store
	embedder  embeddings.Provider
	retriever Retriever
	library   models.SQLPairLibrary
	logger    *zap.Logger
}

// NewSQLPairsService creates a SQLPairsService over the given pair library.
func NewSQLPairsService(store vectorstore.Store, embedder embeddings.Provider, retriever Retriever, library models.SQLPairLibrary, logger *zap.Logger) SQLPairsService {
	return &sqlPairsService{
		store:     store,
		embedder:  embedder,
		retriever: retriever,
		library:   library,
		logger:    logger.Named("sql-pairs-service"),
	}
}

var _ SQLPairsService = (*sqlPairsService)(nil)

// LoadSQLPairLibrary reads a pair library from a JSON file keyed by
// boilerplate name. A missing file is an empty library, not an error; keys
// are lowercased on load.
func LoadSQLPairLibrary(path string) (models.SQLPairLibrary, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return models.SQLPairLibrary{}, nil
	}
	if err != nil {
		return nil, err
	}

	var raw models.SQLPairLibrary
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	library := make(models.SQLPairLibrary, len(raw))
	for name, pairs := range raw {
		library[strings.ToLower(name)] = pairs
	}
	return library, nil
}

func (s *sqlPairsService) Index(ctx context.Context, projectID, mdlJSON string, extra models.SQLPairLibrary) (*models.SQLPairsIndexResult, error) {
	boilerplates, err := extractBoilerplates(mdlJSON)
	if err != nil {
		return nil, err
	}

	result := &models.SQLPairsIndexResult{
		Boilerplates: boilerplates,
		ProjectID:    projectID,
	}
	if len(boilerplates) == 0 {
		s.logger.Info("MDL declares no boilerplates", zap.String("project_id", projectID))
		return result, nil
	}

	docs := s.buildPairDocuments(projectID, boilerplates, extra)
	if len(docs) == 0 {
		s.logger.Info("no library pairs match the MDL boilerplates",
			zap.String("project_id", projectID),
			zap.Strings("boilerplates", boilerplates))
		return result, nil
	}

	collection := vectorstore.SQLPairsCollection(projectID)
	if err := rebuildCollection(ctx, s.store, s.embedder, collection, docs); err != nil {
		s.logger.Error("SQL pair indexing failed",
			zap.String("project_id", projectID),
			zap.Error(err))
		return nil, apperrors.Wrap(apperrors.KindOf(err), err, "index SQL pairs")
	}

	result.Indexed = len(docs)
	result.Collection = collection

	s.logger.Info("SQL pairs indexed",
		zap.String("project_id", projectID),
		zap.Int("pairs", len(docs)))
	return result, nil
}

// extractBoilerplates returns the sorted, lowercased boilerplate names
// declared in the MDL's model properties.
func extractBoilerplates(mdlJSON string) ([]string, error) {
	var def models.ModelDefinition
	if err := json.Unmarshal([]byte(mdlJSON), &def); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid model definition JSON")
	}

	seen := make(map[string]bool)
	for _, model := range def.Models {
		name, _ := model.Properties["boilerplate"].(string)
		if name != "" {
			seen[strings.ToLower(name)] = true
		}
	}

	boilerplates := make([]string, 0, len(seen))
	for name := range seen {
		boilerplates = append(boilerplates, name)
	}
	sort.Strings(boilerplates)
	return boilerplates, nil
}

func (s *sqlPairsService) buildPairDocuments(projectID string, boilerplates []string, extra models.SQLPairLibrary) []models.SchemaDocument {
	var docs []models.SchemaDocument
	for _, boilerplate := range boilerplates {
		pairs, ok := extra[boilerplate]
		if !ok {
			pairs = s.library[boilerplate]
		}
		for _, pair := range pairs {
			pairID := pair.ID
			if pairID == "" {
				pairID = uuid.NewString()
			}
			docs = append(docs, models.SchemaDocument{
				ID:      uuid.NewString(),
				Content: pair.Question,
				Kind:    models.DocumentKindSQLPair,
				Metadata: map[string]string{
					"kind":        string(models.DocumentKindSQLPair),
					"project_id":  projectID,
					"sql_pair_id": pairID,
					"question":    pair.Question,
					"sql":         pair.SQL,
					"boilerplate": boilerplate,
				},
			})
		}
	}
	return docs
}

func (s *sqlPairsService) Search(ctx context.Context, projectID, query string, limit int) ([]vectorstore.SearchResult, error) {
	return s.retriever.Search(ctx, query, vectorstore.SQLPairsCollection(projectID), limit, nil)
}

func (s *sqlPairsService) Delete(ctx context.Context, projectID string, pairIDs []string, deleteAll bool) (uint64, error) {
	collection := vectorstore.SQLPairsCollection(projectID)

	exists, err := s.store.CollectionExists(ctx, collection)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	if deleteAll {
		stats, err := s.store.Stats(ctx, collection)
		if err != nil {
			return 0, err
		}
		if err := s.store.DeleteCollection(ctx, collection); err != nil {
			return 0, err
		}
		return stats.PointsCount, nil
	}

	var deleted uint64
	for _, pairID := range pairIDs {
		n, err := s.store.DeleteDocuments(ctx, collection, vectorstore.Filters{
			"sql_pair_id": pairID,
			"project_id":  projectID,
		})
		if err != nil {
			return deleted, err
		}
		deleted += n
	}
	return deleted, nil
}

func (s *sqlPairsService) Stats(ctx context.Context, projectID string) (*models.SQLPairsStats, error) {
	collection := vectorstore.SQLPairsCollection(projectID)

	exists, err := s.store.CollectionExists(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return &models.SQLPairsStats{ProjectID: projectID}, nil
	}

	stats, err := s.store.Stats(ctx, collection)
	if err != nil {
		return nil, err
	}
	return &models.SQLPairsStats{
		TotalPairs:       stats.PointsCount,
		CollectionExists: true,
		ProjectID:        projectID,
	}, nil
}
