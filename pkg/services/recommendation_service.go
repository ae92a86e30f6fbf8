package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/hugdata-inc/hugdata-engine/pkg/apperrors"
	"github.com/hugdata-inc/hugdata-engine/pkg/llm"
	"github.com/hugdata-inc/hugdata-engine/pkg/models"
	"github.com/hugdata-inc/hugdata-engine/pkg/prompts"
)

const (
	recommendationMaxTokens   = 2000
	recommendationTemperature = 0.2
)

// RecommendationService runs the asynchronous relationship recommendation
// pipeline over a caller-supplied model definition.
type RecommendationService interface {
	// Start registers the recommendation in the generating state and
	// launches the pipeline in the background. mdlJSON is the model
	// definition as a JSON document.
	Start(recommendationID, mdlJSON, language, projectID string)

	// Get returns the recommendation by id.
	Get(recommendationID string) (*models.Recommendation, bool)

	// List returns recommendations newest-first, optionally filtered by
	// status and capped at limit.
	List(status models.RecommendationStatus, limit int) []*models.Recommendation

	// Delete removes the recommendation. Running pipelines are cancelled.
	Delete(recommendationID string) bool

	// Stop cancels a running pipeline.
	Stop(recommendationID string) bool

	// Cleanup removes terminal recommendations older than the retention
	// window and returns how many were removed.
	Cleanup(retention time.Duration) int

	// Stats counts recommendations per status.
	Stats() RecommendationStats

	// AnalyzeComplexity summarizes the shape of a model definition:
	// entity and attribute counts, likely foreign-key columns, and
	// attributes clustered by shared name prefix.
	AnalyzeComplexity(mdlJSON string) (*models.ComplexityAnalysis, error)

	// ValidateRelationships filters the given relationships against a model
	// definition using the same rules as the pipeline.
	ValidateRelationships(mdlJSON string, relationships []models.ModelRelationship) ([]models.ModelRelationship, error)

	// Export renders a finished recommendation's relationships in the given
	// format ("json" or "sql").
	Export(recommendationID, format string) ([]byte, error)

	// ExportJSON renders accepted relationships as a JSON document.
	ExportJSON(relationships []models.ModelRelationship) ([]byte, error)

	// ExportSQL renders accepted relationships as referential-integrity
	// constraint statements.
	ExportSQL(relationships []models.ModelRelationship) string
}

// RecommendationStats counts recommendations per status.
type RecommendationStats struct {
	Total      int `json:"total"`
	Generating int `json:"generating"`
	Finished   int `json:"finished"`
	Failed     int `json:"failed"`
}

type recommendationService struct {
	client  llm.Client
	events  EventStore[*models.Recommendation]
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewRecommendationService creates a RecommendationService backed by the
// given event store.
func NewRecommendationService(client llm.Client, events EventStore[*models.Recommendation], timeout time.Duration, logger *zap.Logger) RecommendationService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &recommendationService{
		client:  client,
		events:  events,
		timeout: timeout,
		logger:  logger.Named("recommendation-service"),
		cancels: make(map[string]context.CancelFunc),
	}
}

var _ RecommendationService = (*recommendationService)(nil)

func (s *recommendationService) Start(recommendationID, mdlJSON, language, projectID string) {
	if language == "" {
		language = "English"
	}

	rec := &models.Recommendation{
		ID:        recommendationID,
		Status:    models.RecommendationStatusGenerating,
		CreatedAt: time.Now().UTC(),
	}
	s.events.Put(recommendationID, rec)

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[recommendationID] = cancel
	s.mu.Unlock()

	go func() {
		defer s.release(recommendationID)
		s.run(ctx, rec, mdlJSON, language, projectID)
	}()
}

func (s *recommendationService) release(recommendationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[recommendationID]; ok {
		cancel()
		delete(s.cancels, recommendationID)
	}
}

func (s *recommendationService) run(ctx context.Context, rec *models.Recommendation, mdlJSON, language, projectID string) {
	s.logger.Info("relationship recommendation started",
		zap.String("recommendation_id", rec.ID),
		zap.String("project_id", projectID))

	response, err := s.recommend(ctx, mdlJSON, language, projectID)
	if err != nil {
		if ctx.Err() != nil {
			err = apperrors.New(apperrors.KindGeneration, "recommendation stopped")
		}
		s.fail(rec, err)
		return
	}
	s.finish(rec, response)
}

func (s *recommendationService) recommend(ctx context.Context, mdlJSON, language, projectID string) (*models.RecommendationResponse, error) {
	var def models.ModelDefinition
	if err := json.Unmarshal([]byte(mdlJSON), &def); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid model definition JSON")
	}

	cleaned := CleanModels(&def)

	response := &models.RecommendationResponse{
		Relationships:  []models.ModelRelationship{},
		ModelsAnalyzed: len(cleaned),
		Language:       language,
		ProjectID:      projectID,
	}

	// Nothing to relate with fewer than two entities.
	if len(cleaned) < 2 {
		return response, nil
	}

	prompt, err := prompts.BuildRelationshipPrompt(cleaned, language)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	reply, err := s.client.Generate(callCtx, prompt, recommendationMaxTokens, recommendationTemperature)
	cancel()
	if err != nil {
		return nil, err
	}

	candidates := s.parseCandidates(reply)
	response.Relationships = s.validateRelationships(candidates, &def)
	response.TotalRecommendations = len(response.Relationships)
	return response, nil
}

// parseCandidates normalizes the model reply. Malformed or absent JSON
// yields an empty candidate list, never an error.
func (s *recommendationService) parseCandidates(reply string) []models.ModelRelationship {
	envelope, err := llm.ParseJSONResponse[struct {
		Relationships []models.ModelRelationship `json:"relationships"`
	}](reply)
	if err != nil {
		s.logger.Warn("could not parse recommendation response as JSON", zap.Error(err))
		return nil
	}
	return envelope.Relationships
}

// validateRelationships drops candidates that violate any structural rule.
// Dropped candidates are logged, not surfaced as errors.
func (s *recommendationService) validateRelationships(candidates []models.ModelRelationship, def *models.ModelDefinition) []models.ModelRelationship {
	columnsByModel := make(map[string]map[string]bool, len(def.Models))
	for _, model := range def.Models {
		columns := make(map[string]bool, len(model.Columns))
		for _, col := range model.Columns {
			if col.Relationship == "" {
				columns[col.Name] = true
			}
		}
		columnsByModel[model.Name] = columns
	}

	accepted := make([]models.ModelRelationship, 0, len(candidates))
	for _, candidate := range candidates {
		if reason := rejectCandidate(candidate, columnsByModel); reason != "" {
			s.logger.Warn("relationship candidate rejected",
				zap.String("name", candidate.Name),
				zap.String("reason", reason))
			continue
		}
		accepted = append(accepted, candidate)
	}

	s.logger.Info("relationship candidates validated",
		zap.Int("accepted", len(accepted)),
		zap.Int("proposed", len(candidates)))
	return accepted
}

func rejectCandidate(candidate models.ModelRelationship, columnsByModel map[string]map[string]bool) string {
	if candidate.Name == "" || candidate.FromModel == "" || candidate.FromColumn == "" ||
		candidate.ToModel == "" || candidate.ToColumn == "" || candidate.Reason == "" {
		return "missing required fields"
	}
	if !candidate.Type.IsValid() {
		return fmt.Sprintf("invalid relationship type %q", candidate.Type)
	}
	fromColumns, ok := columnsByModel[candidate.FromModel]
	if !ok {
		return fmt.Sprintf("from model %q not found", candidate.FromModel)
	}
	toColumns, ok := columnsByModel[candidate.ToModel]
	if !ok {
		return fmt.Sprintf("to model %q not found", candidate.ToModel)
	}
	if !fromColumns[candidate.FromColumn] {
		return fmt.Sprintf("from column %q not found in model %q", candidate.FromColumn, candidate.FromModel)
	}
	if !toColumns[candidate.ToColumn] {
		return fmt.Sprintf("to column %q not found in model %q", candidate.ToColumn, candidate.ToModel)
	}
	if candidate.FromModel == candidate.ToModel {
		return "self-relationship"
	}
	return ""
}

// CleanModels prepares entities for the recommendation prompt: display-name
// metadata is stripped and columns already bound to a relationship are
// removed so the model does not re-suggest them.
func CleanModels(def *models.ModelDefinition) []models.EntityModel {
	cleaned := make([]models.EntityModel, 0, len(def.Models))
	for _, model := range def.Models {
		entity := models.EntityModel{
			Name:       model.Name,
			Properties: withoutDisplayName(model.Properties),
		}
		for _, col := range model.Columns {
			if col.Relationship != "" {
				continue
			}
			entity.Columns = append(entity.Columns, models.ModelColumn{
				Name:       col.Name,
				Type:       col.Type,
				Properties: withoutDisplayName(col.Properties),
			})
		}
		cleaned = append(cleaned, entity)
	}
	return cleaned
}

func withoutDisplayName(properties map[string]any) map[string]any {
	if properties == nil {
		return nil
	}
	copied := make(map[string]any, len(properties))
	for k, v := range properties {
		if k == "displayName" {
			continue
		}
		copied[k] = v
	}
	if len(copied) == 0 {
		return nil
	}
	return copied
}

func (s *recommendationService) finish(rec *models.Recommendation, response *models.RecommendationResponse) {
	now := time.Now().UTC()
	done := *rec
	done.Status = models.RecommendationStatusFinished
	done.Response = response
	done.CompletedAt = &now
	s.events.Put(done.ID, &done)

	s.logger.Info("relationship recommendation finished",
		zap.String("recommendation_id", done.ID),
		zap.Int("recommendations", response.TotalRecommendations))
}

func (s *recommendationService) fail(rec *models.Recommendation, err error) {
	now := time.Now().UTC()
	done := *rec
	done.Status = models.RecommendationStatusFailed
	done.Failure = &models.EventFailure{
		Message: err.Error(),
		Kind:    string(apperrors.KindOf(err)),
	}
	done.CompletedAt = &now
	s.events.Put(done.ID, &done)

	s.logger.Error("relationship recommendation failed",
		zap.String("recommendation_id", done.ID),
		zap.Error(err))
}

func (s *recommendationService) Get(recommendationID string) (*models.Recommendation, bool) {
	return s.events.Get(recommendationID)
}

func (s *recommendationService) List(status models.RecommendationStatus, limit int) []*models.Recommendation {
	recs := s.events.All()

	if status != "" {
		filtered := recs[:0]
		for _, rec := range recs {
			if rec.Status == status {
				filtered = append(filtered, rec)
			}
		}
		recs = filtered
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})

	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

func (s *recommendationService) Delete(recommendationID string) bool {
	s.Stop(recommendationID)
	return s.events.Delete(recommendationID)
}

func (s *recommendationService) Stop(recommendationID string) bool {
	s.mu.Lock()
	cancel, ok := s.cancels[recommendationID]
	s.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

func (s *recommendationService) Cleanup(retention time.Duration) int {
	cutoff := time.Now().UTC().Add(-retention)
	removed := 0
	for _, rec := range s.events.All() {
		if rec.Status == models.RecommendationStatusGenerating {
			continue
		}
		if rec.CreatedAt.Before(cutoff) && s.events.Delete(rec.ID) {
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("recommendations cleaned up", zap.Int("removed", removed))
	}
	return removed
}

func (s *recommendationService) Stats() RecommendationStats {
	stats := RecommendationStats{}
	for _, rec := range s.events.All() {
		stats.Total++
		switch rec.Status {
		case models.RecommendationStatusGenerating:
			stats.Generating++
		case models.RecommendationStatusFinished:
			stats.Finished++
		case models.RecommendationStatusFailed:
			stats.Failed++
		}
	}
	return stats
}

// ValidateRelationships applies the pipeline's structural rules to an
// arbitrary relationship list, for callers that bring their own candidates.
func (s *recommendationService) ValidateRelationships(mdlJSON string, relationships []models.ModelRelationship) ([]models.ModelRelationship, error) {
	var def models.ModelDefinition
	if err := json.Unmarshal([]byte(mdlJSON), &def); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid model definition JSON")
	}
	return s.validateRelationships(relationships, &def), nil
}

func (s *recommendationService) Export(recommendationID, format string) ([]byte, error) {
	rec, ok := s.events.Get(recommendationID)
	if !ok {
		return nil, apperrors.New(apperrors.KindValidation, "recommendation not found")
	}
	if rec.Status != models.RecommendationStatusFinished || rec.Response == nil {
		return nil, apperrors.New(apperrors.KindValidation, "recommendation is not finished")
	}

	switch format {
	case "json":
		return s.ExportJSON(rec.Response.Relationships)
	case "sql":
		return []byte(s.ExportSQL(rec.Response.Relationships)), nil
	default:
		return nil, apperrors.New(apperrors.KindValidation, "unsupported export format %q", format)
	}
}

func (s *recommendationService) AnalyzeComplexity(mdlJSON string) (*models.ComplexityAnalysis, error) {
	var def models.ModelDefinition
	if err := json.Unmarshal([]byte(mdlJSON), &def); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid model definition JSON")
	}

	analysis := &models.ComplexityAnalysis{
		TotalModels:          len(def.Models),
		ModelSizes:           make(map[string]int, len(def.Models)),
		PotentialForeignKeys: []models.ForeignKeyCandidate{},
		NamingPatterns:       make(map[string][]models.PatternColumn),
	}

	for _, model := range def.Models {
		size := 0
		for _, col := range model.Columns {
			if col.Relationship != "" {
				continue
			}
			size++

			switch {
			case strings.HasSuffix(col.Name, "_id"):
				base := strings.TrimSuffix(col.Name, "_id")
				analysis.PotentialForeignKeys = append(analysis.PotentialForeignKeys, models.ForeignKeyCandidate{
					Model:       model.Name,
					Column:      col.Name,
					Pattern:     "id_suffix",
					TargetModel: inflection.Plural(base),
				})
			case col.Name == "id":
				analysis.PotentialForeignKeys = append(analysis.PotentialForeignKeys, models.ForeignKeyCandidate{
					Model:   model.Name,
					Column:  col.Name,
					Pattern: "primary_key",
				})
			}

			if idx := strings.Index(col.Name, "_"); idx > 0 {
				prefix := col.Name[:idx]
				analysis.NamingPatterns[prefix] = append(analysis.NamingPatterns[prefix], models.PatternColumn{
					Model:  model.Name,
					Column: col.Name,
				})
			}
		}
		analysis.ModelSizes[model.Name] = size
		analysis.TotalColumns += size
	}

	return analysis, nil
}

func (s *recommendationService) ExportJSON(relationships []models.ModelRelationship) ([]byte, error) {
	return json.MarshalIndent(struct {
		Relationships []models.ModelRelationship `json:"relationships"`
	}{Relationships: relationships}, "", "  ")
}

func (s *recommendationService) ExportSQL(relationships []models.ModelRelationship) string {
	sorted := make([]models.ModelRelationship, len(relationships))
	copy(sorted, relationships)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	for _, rel := range sorted {
		fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT fk_%s FOREIGN KEY (%s) REFERENCES %s (%s);\n",
			rel.FromModel, rel.Name, rel.FromColumn, rel.ToModel, rel.ToColumn)
	}
	return b.String()
}
