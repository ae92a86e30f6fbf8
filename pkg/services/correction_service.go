package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hugdata-inc/hugdata-engine/pkg/apperrors"
	"github.com/hugdata-inc/hugdata-engine/pkg/llm"
	"github.com/hugdata-inc/hugdata-engine/pkg/models"
	"github.com/hugdata-inc/hugdata-engine/pkg/prompts"
	sqlutil "github.com/hugdata-inc/hugdata-engine/pkg/sql"
	"github.com/hugdata-inc/hugdata-engine/pkg/vectorstore"
)

const (
	correctionMaxTokens      = 1000
	correctionTemperature    = 0.1
	correctionRetrievalLimit = 5
)

// CorrectionStats summarizes the tracked correction events by status.
type CorrectionStats struct {
	Total      int `json:"total"`
	Correcting int `json:"correcting"`
	Finished   int `json:"finished"`
	Failed     int `json:"failed"`
}

// CorrectionService runs the asynchronous SQL repair pipeline and tracks
// every request through its correcting -> finished|failed lifecycle.
type CorrectionService interface {
	// Start registers the event in the correcting state and launches the
	// pipeline in the background.
	Start(eventID, invalidSQL, errorMessage, projectID string)

	// Get returns the event by id.
	Get(eventID string) (*models.CorrectionEvent, bool)

	// List returns events, newest first, optionally filtered by status and
	// truncated to limit.
	List(status models.CorrectionStatus, limit int) []*models.CorrectionEvent

	// Delete removes the event. Running pipelines are cancelled first.
	Delete(eventID string) bool

	// Stop cancels a running pipeline. The event transitions to failed.
	Stop(eventID string) bool

	// Cleanup removes terminal events older than the retention window and
	// returns how many were removed.
	Cleanup(retention time.Duration) int

	// Stats counts tracked events by status.
	Stats() CorrectionStats
}

type correctionService struct {
	retriever Retriever
	client    llm.Client
	events    EventStore[*models.CorrectionEvent]
	timeout   time.Duration
	maxRows   int
	logger    *zap.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// CorrectionOptions bound the correction pipeline.
type CorrectionOptions struct {
	// CollaboratorTimeout caps each external call made by the pipeline.
	CollaboratorTimeout time.Duration
	// MaxResultRows caps the LIMIT clause on corrected statements.
	MaxResultRows int
}

// NewCorrectionService creates a CorrectionService backed by the given event
// store.
func NewCorrectionService(retriever Retriever, client llm.Client, events EventStore[*models.CorrectionEvent], opts CorrectionOptions, logger *zap.Logger) CorrectionService {
	if opts.CollaboratorTimeout <= 0 {
		opts.CollaboratorTimeout = 30 * time.Second
	}
	if opts.MaxResultRows <= 0 {
		opts.MaxResultRows = 1000
	}
	return &correctionService{
		retriever: retriever,
		client:    client,
		events:    events,
		timeout:   opts.CollaboratorTimeout,
		maxRows:   opts.MaxResultRows,
		logger:    logger.Named("correction-service"),
		cancels:   make(map[string]context.CancelFunc),
	}
}

var _ CorrectionService = (*correctionService)(nil)

func (s *correctionService) Start(eventID, invalidSQL, errorMessage, projectID string) {
	event := &models.CorrectionEvent{
		ID:         eventID,
		Status:     models.CorrectionStatusCorrecting,
		InvalidSQL: invalidSQL,
		Error:      errorMessage,
		CreatedAt:  time.Now().UTC(),
	}
	s.events.Put(eventID, event)

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[eventID] = cancel
	s.mu.Unlock()

	go func() {
		defer s.release(eventID)
		s.run(ctx, event, projectID)
	}()
}

func (s *correctionService) release(eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[eventID]; ok {
		cancel()
		delete(s.cancels, eventID)
	}
}

// run executes the pipeline and writes exactly one terminal state.
func (s *correctionService) run(ctx context.Context, event *models.CorrectionEvent, projectID string) {
	s.logger.Info("correction started",
		zap.String("event_id", event.ID),
		zap.String("project_id", projectID))

	response, err := s.correct(ctx, event, projectID)
	if err != nil {
		if ctx.Err() != nil {
			err = apperrors.New(apperrors.KindGeneration, "correction stopped")
		}
		s.fail(event, err)
		return
	}
	s.finish(event, response)
}

func (s *correctionService) correct(ctx context.Context, event *models.CorrectionEvent, projectID string) (*models.CorrectionResponse, error) {
	errorType := sqlutil.ClassifyError(event.Error)
	complexity := sqlutil.AssessComplexity(event.InvalidSQL)

	var contextLines []string
	if projectID != "" {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		hits, err := s.retriever.Search(callCtx,
			"SQL error: "+event.Error+" "+event.InvalidSQL,
			vectorstore.SchemaCollection(projectID),
			correctionRetrievalLimit, nil)
		cancel()
		if err != nil {
			// Context retrieval is best effort; correction proceeds
			// without it unless the pipeline itself was cancelled.
			if ctx.Err() != nil {
				return nil, err
			}
			s.logger.Warn("context retrieval failed, correcting without schema context",
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
		for _, hit := range hits {
			contextLines = append(contextLines, hit.Document.Content)
		}
	}

	prompt := prompts.BuildSQLCorrectionPrompt(prompts.CorrectionInput{
		SQL:          event.InvalidSQL,
		ErrorMessage: event.Error,
		ErrorType:    errorType,
		Complexity:   complexity,
		Context:      contextLines,
	})

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	reply, err := s.client.Generate(callCtx, prompt, correctionMaxTokens, correctionTemperature)
	cancel()
	if err != nil {
		return nil, err
	}

	corrected, err := sqlutil.ExtractCorrectedSQL(reply)
	if err != nil {
		return nil, err
	}

	explanation := sqlutil.ExtractExplanation(reply,
		"SQL was corrected to fix syntax errors and ensure proper structure.")

	safeSQL, err := sqlutil.Sanitize(corrected, s.maxRows)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindSafety) {
			// The repair introduced a mutating statement. The event still
			// finishes, carrying a failed verdict and no SQL.
			return &models.CorrectionResponse{
				OriginalSQL:      event.InvalidSQL,
				OriginalError:    event.Error,
				Explanation:      explanation,
				Confidence:       0,
				ValidationPassed: false,
				CorrectionsApplied: []string{
					"Correction rejected: " + err.Error(),
				},
			}, nil
		}
		return nil, err
	}

	confidence, passed, corrections := sqlutil.CorrectionConfidence(event.InvalidSQL, safeSQL)

	return &models.CorrectionResponse{
		CorrectedSQL:       safeSQL,
		OriginalSQL:        event.InvalidSQL,
		OriginalError:      event.Error,
		Explanation:        explanation,
		Confidence:         confidence,
		ValidationPassed:   passed,
		CorrectionsApplied: corrections,
	}, nil
}

func (s *correctionService) finish(event *models.CorrectionEvent, response *models.CorrectionResponse) {
	now := time.Now().UTC()
	done := *event
	done.Status = models.CorrectionStatusFinished
	done.Response = response
	done.CompletedAt = &now
	s.events.Put(done.ID, &done)

	s.logger.Info("correction finished",
		zap.String("event_id", done.ID),
		zap.Bool("validation_passed", response.ValidationPassed),
		zap.Float64("confidence", response.Confidence))
}

func (s *correctionService) fail(event *models.CorrectionEvent, err error) {
	now := time.Now().UTC()
	done := *event
	done.Status = models.CorrectionStatusFailed
	done.Failure = &models.EventFailure{
		Message: err.Error(),
		Kind:    string(apperrors.KindOf(err)),
	}
	done.CompletedAt = &now
	s.events.Put(done.ID, &done)

	s.logger.Error("correction failed",
		zap.String("event_id", done.ID),
		zap.Error(err))
}

func (s *correctionService) Get(eventID string) (*models.CorrectionEvent, bool) {
	return s.events.Get(eventID)
}

func (s *correctionService) List(status models.CorrectionStatus, limit int) []*models.CorrectionEvent {
	events := s.events.All()

	if status != "" {
		filtered := events[:0]
		for _, event := range events {
			if event.Status == status {
				filtered = append(filtered, event)
			}
		}
		events = filtered
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})

	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events
}

func (s *correctionService) Delete(eventID string) bool {
	s.Stop(eventID)
	return s.events.Delete(eventID)
}

func (s *correctionService) Stop(eventID string) bool {
	s.mu.Lock()
	cancel, ok := s.cancels[eventID]
	s.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

func (s *correctionService) Cleanup(retention time.Duration) int {
	cutoff := time.Now().UTC().Add(-retention)
	removed := 0
	for _, event := range s.events.All() {
		if event.Status == models.CorrectionStatusCorrecting {
			continue
		}
		if event.CreatedAt.Before(cutoff) && s.events.Delete(event.ID) {
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("correction events cleaned up", zap.Int("removed", removed))
	}
	return removed
}

func (s *correctionService) Stats() CorrectionStats {
	stats := CorrectionStats{}
	for _, event := range s.events.All() {
		stats.Total++
		switch event.Status {
		case models.CorrectionStatusCorrecting:
			stats.Correcting++
		case models.CorrectionStatusFinished:
			stats.Finished++
		case models.CorrectionStatusFailed:
			stats.Failed++
		}
	}
	return stats
}
