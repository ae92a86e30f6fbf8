package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hugdata-inc/hugdata-engine/pkg/llm"
	"github.com/hugdata-inc/hugdata-engine/pkg/models"
	"github.com/hugdata-inc/hugdata-engine/pkg/prompts"
	sqlutil "github.com/hugdata-inc/hugdata-engine/pkg/sql"
	"github.com/hugdata-inc/hugdata-engine/pkg/vectorstore"
)

// Generation pipeline tuning. Low temperature keeps the model close to the
// retrieved schema.
const (
	generationMaxTokens   = 1000
	generationTemperature = 0.1
)

// GenerationOptions bound the generation pipeline.
type GenerationOptions struct {
	// MaxResultRows caps the LIMIT clause on every returned statement.
	MaxResultRows int
	// RetrievalLimit is the number of schema documents retrieved as context.
	RetrievalLimit int
	// CollaboratorTimeout bounds each retrieval and model call.
	CollaboratorTimeout time.Duration
}

// GenerationService turns a natural-language question into a validated,
// read-only SQL statement grounded in the project's indexed schema.
type GenerationService interface {
	// Generate runs the pipeline for one question. A maxRows of zero or less
	// falls back to the configured MaxResultRows.
	Generate(ctx context.Context, question, projectID string, maxRows int) (*models.GenerationResult, error)
}

type generationService struct {
	retriever Retriever
	client    llm.Client
	opts      GenerationOptions
	logger    *zap.Logger
}

// NewGenerationService creates a GenerationService.
func NewGenerationService(retriever Retriever, client llm.Client, opts GenerationOptions, logger *zap.Logger) GenerationService {
	if opts.MaxResultRows <= 0 {
		opts.MaxResultRows = 1000
	}
	if opts.RetrievalLimit <= 0 {
		opts.RetrievalLimit = 10
	}
	if opts.CollaboratorTimeout <= 0 {
		opts.CollaboratorTimeout = 30 * time.Second
	}
	return &generationService{
		retriever: retriever,
		client:    client,
		opts:      opts,
		logger:    logger.Named("generation-service"),
	}
}

var _ GenerationService = (*generationService)(nil)

func (s *generationService) Generate(ctx context.Context, question, projectID string, maxRows int) (*models.GenerationResult, error) {
	if maxRows <= 0 {
		maxRows = s.opts.MaxResultRows
	}
	collection := vectorstore.SchemaCollection(projectID)

	searchCtx, cancel := context.WithTimeout(ctx, s.opts.CollaboratorTimeout)
	hits, err := s.retriever.Search(searchCtx, question, collection, s.opts.RetrievalLimit, nil)
	cancel()
	if err != nil {
		return nil, err
	}

	contextLines := make([]string, len(hits))
	for i, hit := range hits {
		contextLines[i] = hit.Document.Content
	}

	prompt := prompts.BuildSQLGenerationPrompt(question, nil, contextLines, maxRows)

	callCtx, cancel := context.WithTimeout(ctx, s.opts.CollaboratorTimeout)
	response, err := s.client.Generate(callCtx, prompt, generationMaxTokens, generationTemperature)
	cancel()
	if err != nil {
		return nil, err
	}

	rawSQL, err := sqlutil.ExtractSQL(response)
	if err != nil {
		s.logger.Warn("model response carried no SQL",
			zap.String("project_id", projectID),
			zap.Int("response_length", len(response)))
		return nil, err
	}

	safeSQL, err := sqlutil.Sanitize(rawSQL, maxRows)
	if err != nil {
		return nil, err
	}

	result := &models.GenerationResult{
		SQL:            safeSQL,
		Explanation:    sqlutil.ExtractExplanation(response, sqlutil.DescribeQuery(safeSQL, question)),
		ReasoningSteps: sqlutil.ReasoningSteps(response),
		Confidence:     sqlutil.Confidence(safeSQL, len(hits)),
		ContextSize:    len(hits),
	}

	s.logger.Info("SQL generated",
		zap.String("project_id", projectID),
		zap.Int("context_size", result.ContextSize),
		zap.Float64("confidence", result.Confidence))

	return result, nil
}
