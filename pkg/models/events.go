package models

import "time"

// CorrectionStatus is the lifecycle state of a SQL correction event.
// Transitions are monotonic: correcting -> finished|failed, then final.
type CorrectionStatus string

const (
	CorrectionStatusCorrecting CorrectionStatus = "correcting"
	CorrectionStatusFinished   CorrectionStatus = "finished"
	CorrectionStatusFailed     CorrectionStatus = "failed"
)

// CorrectionEvent tracks one asynchronous SQL correction request.
type CorrectionEvent struct {
	ID          string              `json:"event_id"`
	Status      CorrectionStatus    `json:"status"`
	InvalidSQL  string              `json:"invalid_sql"`
	Error       string              `json:"original_error"`
	Response    *CorrectionResponse `json:"response,omitempty"` // populated only when finished
	Failure     *EventFailure       `json:"failure,omitempty"`  // populated only when failed
	CreatedAt   time.Time           `json:"created_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

// CorrectionResponse is the terminal payload of a finished correction.
// ValidationPassed=false means the caller must reject the result; the event
// still finishes carrying that verdict.
type CorrectionResponse struct {
	CorrectedSQL       string   `json:"corrected_sql"`
	OriginalSQL        string   `json:"original_sql"`
	OriginalError      string   `json:"original_error"`
	Explanation        string   `json:"correction_explanation"`
	Confidence         float64  `json:"confidence"`
	ValidationPassed   bool     `json:"validation_passed"`
	CorrectionsApplied []string `json:"corrections_applied"`
}

// EventFailure records why a pipeline reached its failed state.
type EventFailure struct {
	Message string `json:"message"`
	Kind    string `json:"type"`
}

// RecommendationStatus is the lifecycle state of a relationship
// recommendation. Same monotonic shape as CorrectionStatus.
type RecommendationStatus string

const (
	RecommendationStatusGenerating RecommendationStatus = "generating"
	RecommendationStatusFinished   RecommendationStatus = "finished"
	RecommendationStatusFailed     RecommendationStatus = "failed"
)

// Recommendation tracks one asynchronous relationship recommendation request.
type Recommendation struct {
	ID          string                  `json:"id"`
	Status      RecommendationStatus    `json:"status"`
	Response    *RecommendationResponse `json:"response,omitempty"` // populated only when finished
	Failure     *EventFailure           `json:"failure,omitempty"`  // populated only when failed
	CreatedAt   time.Time               `json:"created_at"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
}

// RecommendationResponse is the terminal payload of a finished recommendation.
type RecommendationResponse struct {
	Relationships        []ModelRelationship `json:"relationships"`
	TotalRecommendations int                 `json:"total_recommendations"`
	ModelsAnalyzed       int                 `json:"models_analyzed"`
	Language             string              `json:"language"`
	ProjectID            string              `json:"project_id,omitempty"`
}
