package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// Qdrant implements Store over the Qdrant gRPC API.
type Qdrant struct {
	client *qdrant.Client
	logger *zap.Logger
}

// QdrantConfig holds connection settings for the Qdrant backend.
type QdrantConfig struct {
	Host   string
	Port   int
	APIKey string
}

// NewQdrant creates a Qdrant-backed store and verifies reachability with an
// exponential-backoff health check. Fails fast if Qdrant never answers.
func NewQdrant(cfg *QdrantConfig, logger *zap.Logger) (*Qdrant, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	store := &Qdrant{
		client: client,
		logger: logger.Named("qdrant"),
	}

	if err := store.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("qdrant unreachable at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return store, nil
}

// healthCheckWithRetry probes Qdrant with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *Qdrant) healthCheckWithRetry(ctx context.Context) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		result, err := s.client.HealthCheck(ctx)
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		if result == nil || result.Title == "" {
			return fmt.Errorf("health check returned invalid response")
		}
		return nil
	}, exponentialBackoff)
}

// Close closes the underlying gRPC connection.
func (s *Qdrant) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// CollectionExists implements Store.
func (s *Qdrant) CollectionExists(ctx context.Context, name string) (bool, error) {
	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return false, fmt.Errorf("list collections: %w", err)
	}
	for _, c := range collections {
		if c == name {
			return true, nil
		}
	}
	return false, nil
}

// CreateCollection implements Store.
func (s *Qdrant) CreateCollection(ctx context.Context, name string, vectorSize uint64, distance string) error {
	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: distanceMetric(distance),
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}

	// Payload indexes keep filtered search fast on the fields every
	// pipeline filters by.
	for _, field := range []string{"project_id", "kind", "table_name", "column_name"} {
		if _, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: name,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		}); err != nil {
			return fmt.Errorf("create index for field %s: %w", field, err)
		}
	}

	return nil
}

// DeleteCollection implements Store.
func (s *Qdrant) DeleteCollection(ctx context.Context, name string) error {
	if err := s.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("delete collection %s: %w", name, err)
	}
	return nil
}

// AddDocuments implements Store. Documents are upserted in batches of 100.
func (s *Qdrant) AddDocuments(ctx context.Context, name string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	const batchSize = 100
	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}

		batch := docs[i:end]
		points := make([]*qdrant.PointStruct, len(batch))
		for j, doc := range batch {
			payload := map[string]any{"content": doc.Content}
			for k, v := range doc.Payload {
				payload[k] = v
			}

			points[j] = &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(doc.ID),
				Vectors: qdrant.NewVectors(doc.Embedding...),
				Payload: qdrant.NewValueMap(payload),
			}
		}

		if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: name,
			Points:         points,
		}); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", i, end, err)
		}
	}

	s.logger.Debug("documents upserted",
		zap.String("collection", name),
		zap.Int("count", len(docs)))
	return nil
}

// SimilaritySearch implements Store. A missing collection yields no results.
func (s *Qdrant) SimilaritySearch(ctx context.Context, name string, query []float32, limit int, filters Filters) ([]SearchResult, error) {
	exists, err := s.CollectionExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(query...),
		Filter:         buildFilter(filters),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("similarity search in %s: %w", name, err)
	}

	hits := make([]SearchResult, 0, len(results))
	for _, result := range results {
		doc := Document{
			ID:      result.Id.GetUuid(),
			Payload: map[string]string{},
		}
		for k, v := range result.Payload {
			if k == "content" {
				doc.Content = v.GetStringValue()
				continue
			}
			doc.Payload[k] = v.GetStringValue()
		}
		hits = append(hits, SearchResult{Document: doc, Score: float64(result.Score)})
	}

	return hits, nil
}

// CountDocuments implements Store.
func (s *Qdrant) CountDocuments(ctx context.Context, name string, filters Filters) (uint64, error) {
	exists, err := s.CollectionExists(ctx, name)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: name,
		Filter:         buildFilter(filters),
	})
	if err != nil {
		return 0, fmt.Errorf("count documents in %s: %w", name, err)
	}
	return count, nil
}

// DeleteDocuments implements Store. Returns the number of points removed.
func (s *Qdrant) DeleteDocuments(ctx context.Context, name string, filters Filters) (uint64, error) {
	before, err := s.CountDocuments(ctx, name, filters)
	if err != nil {
		return 0, err
	}
	if before == 0 {
		return 0, nil
	}

	if _, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: name,
		Points:         qdrant.NewPointsSelectorFilter(buildFilter(filters)),
	}); err != nil {
		return 0, fmt.Errorf("delete documents in %s: %w", name, err)
	}
	return before, nil
}

// Stats implements Store.
func (s *Qdrant) Stats(ctx context.Context, name string) (*CollectionStats, error) {
	info, err := s.client.GetCollectionInfo(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get collection %s: %w", name, err)
	}
	return &CollectionStats{
		PointsCount: info.GetPointsCount(),
		Status:      info.GetStatus().String(),
	}, nil
}

func buildFilter(filters Filters) *qdrant.Filter {
	if len(filters) == 0 {
		return nil
	}
	must := make([]*qdrant.Condition, 0, len(filters))
	for k, v := range filters {
		must = append(must, qdrant.NewMatch(k, v))
	}
	return &qdrant.Filter{Must: must}
}

func distanceMetric(distance string) qdrant.Distance {
	switch distance {
	case DistanceDot:
		return qdrant.Distance_Dot
	case DistanceEuclid:
		return qdrant.Distance_Euclid
	default:
		return qdrant.Distance_Cosine
	}
}
