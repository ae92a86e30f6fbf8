package models

// GenerationResult is the outcome of one natural-language-to-SQL call.
// SQL has always passed the safety validator before it reaches a caller.
// Not persisted.
type GenerationResult struct {
	SQL            string   `json:"sql"`
	Explanation    string   `json:"explanation"`
	ReasoningSteps []string `json:"reasoning_steps"` // at most 5 trimmed lines
	Confidence     float64  `json:"confidence"`      // in [0,1]
	ContextSize    int      `json:"context_size"`    // retrieved documents used
}
