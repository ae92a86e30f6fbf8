package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/hugdata-inc/hugdata-engine/pkg/embeddings"
	"github.com/hugdata-inc/hugdata-engine/pkg/llm"
	"github.com/hugdata-inc/hugdata-engine/pkg/models"
	"github.com/hugdata-inc/hugdata-engine/pkg/vectorstore"
)

// Engine bundles the engine's pipelines behind one composition root. An
// embedding application (API server, scheduler) consumes these services; the
// engine itself carries no transport.
type Engine struct {
	Schema            SchemaService
	SQLPairs          SQLPairsService
	TableDescriptions TableDescriptionService
	Generation        GenerationService
	Correction        CorrectionService
	Recommendation    RecommendationService
}

// EngineOptions bound all pipelines.
type EngineOptions struct {
	MaxResultRows       int
	RetrievalLimit      int
	CollaboratorTimeout time.Duration

	// SQLPairLibrary holds curated question/SQL examples keyed by
	// boilerplate name, typically loaded via LoadSQLPairLibrary.
	SQLPairLibrary models.SQLPairLibrary
}

// NewEngine composes the pipelines over the three collaborators.
func NewEngine(store vectorstore.Store, embedder embeddings.Provider, client llm.Client, opts EngineOptions, logger *zap.Logger) *Engine {
	retriever := NewRetriever(store, embedder, logger)

	return &Engine{
		Schema:            NewSchemaService(store, embedder, retriever, logger),
		SQLPairs:          NewSQLPairsService(store, embedder, retriever, opts.SQLPairLibrary, logger),
		TableDescriptions: NewTableDescriptionService(store, embedder, retriever, logger),
		Generation: NewGenerationService(retriever, client, GenerationOptions{
			MaxResultRows:       opts.MaxResultRows,
			RetrievalLimit:      opts.RetrievalLimit,
			CollaboratorTimeout: opts.CollaboratorTimeout,
		}, logger),
		Correction: NewCorrectionService(retriever, client,
			NewMemoryStore[*models.CorrectionEvent](),
			CorrectionOptions{
				CollaboratorTimeout: opts.CollaboratorTimeout,
				MaxResultRows:       opts.MaxResultRows,
			}, logger),
		Recommendation: NewRecommendationService(client,
			NewMemoryStore[*models.Recommendation](),
			opts.CollaboratorTimeout, logger),
	}
}
