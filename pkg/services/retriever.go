package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/hugdata-inc/hugdata-engine/pkg/apperrors"
	"github.com/hugdata-inc/hugdata-engine/pkg/embeddings"
	"github.com/hugdata-inc/hugdata-engine/pkg/vectorstore"
)

// Retriever performs scoped similarity search against a named collection.
// Queries are embedded before delegation; a missing collection yields no
// results, but an unconfigured embedding provider is a hard failure.
type Retriever interface {
	Search(ctx context.Context, query, collection string, limit int, filters vectorstore.Filters) ([]vectorstore.SearchResult, error)
}

type retriever struct {
	store    vectorstore.Store
	embedder embeddings.Provider
	logger   *zap.Logger
}

// NewRetriever creates a Retriever over the given store and embedder.
func NewRetriever(store vectorstore.Store, embedder embeddings.Provider, logger *zap.Logger) Retriever {
	return &retriever{
		store:    store,
		embedder: embedder,
		logger:   logger.Named("retriever"),
	}
}

var _ Retriever = (*retriever)(nil)

func (r *retriever) Search(ctx context.Context, query, collection string, limit int, filters vectorstore.Filters) ([]vectorstore.SearchResult, error) {
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindOf(err), err, "embed query")
	}

	results, err := r.store.SimilaritySearch(ctx, collection, vector, limit, filters)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindRetrieval, err, "similarity search in %s", collection)
	}

	r.logger.Debug("retrieval complete",
		zap.String("collection", collection),
		zap.Int("results", len(results)))
	return results, nil
}
