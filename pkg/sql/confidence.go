package sql

import (
	"math"
	"strings"
)

// Confidence scores a generated statement with a deterministic additive
// heuristic. Base 0.5; +0.2 when the statement is structurally well formed;
// +0.1 each for a SELECT keyword, a FROM keyword, a LIMIT clause, and at
// least one retrieved context document. Clamped to [0, 1].
func Confidence(sqlText string, contextCount int) float64 {
	score := 0.5

	if wellFormed(sqlText) {
		score += 0.2
	}

	lower := strings.ToLower(sqlText)
	if strings.Contains(lower, "select") {
		score += 0.1
	}
	if strings.Contains(lower, "from") {
		score += 0.1
	}
	if strings.Contains(lower, "limit") {
		score += 0.1
	}
	if contextCount > 0 {
		score += 0.1
	}

	return round2(math.Min(score, 1.0))
}

// CorrectionConfidence scores a repaired statement and produces the
// validation verdict. Base 0.5; +0.2 when the corrected text differs from the
// original; +0.1 each for SELECT, FROM and LIMIT. Any mutating keyword forces
// the score to 0 and fails validation. The applied-corrections list records
// what the verdict is based on.
func CorrectionConfidence(originalSQL, correctedSQL string) (float64, bool, []string) {
	score := 0.5
	passed := true
	var corrections []string

	if strings.EqualFold(strings.TrimSpace(originalSQL), strings.TrimSpace(correctedSQL)) {
		score = 0.2
	} else {
		corrections = append(corrections, "SQL syntax was modified")
		score += 0.2
	}

	lower := strings.ToLower(correctedSQL)
	if strings.Contains(lower, "select") {
		score += 0.1
	}
	if strings.Contains(lower, "from") {
		score += 0.1
	}
	if strings.Contains(lower, "limit") {
		corrections = append(corrections, "Added LIMIT clause for safety")
		score += 0.1
	}

	if kw := DangerousKeyword(correctedSQL); kw != "" {
		passed = false
		score = 0
	}

	return round2(math.Min(score, 1.0)), passed, corrections
}

// wellFormed is a lightweight structural check: the statement must start
// with a SELECT or WITH keyword and have balanced parentheses outside string
// literals.
func wellFormed(sqlText string) bool {
	trimmed := strings.TrimSpace(sqlText)
	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return false
	}

	depth := 0
	inString := false
	for _, char := range trimmed {
		switch {
		case char == '\'':
			inString = !inString
		case inString:
		case char == '(':
			depth++
		case char == ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0 && !inString
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
