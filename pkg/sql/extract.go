package sql

import (
	"regexp"
	"strings"

	"github.com/hugdata-inc/hugdata-engine/pkg/apperrors"
)

var (
	sqlSectionRe       = regexp.MustCompile(`(?is)SQL:\s*(.*?)(?:\n\s*EXPLANATION:|$)`)
	correctedSectionRe = regexp.MustCompile(`(?is)CORRECTED_SQL:\s*(.*?)(?:\n\s*EXPLANATION:|$)`)
	explanationRe      = regexp.MustCompile(`(?is)EXPLANATION:\s*(.*?)(?:\n\s*(?:REASONING|CHANGES_MADE):|$)`)
	changesRe          = regexp.MustCompile(`(?is)CHANGES_MADE:\s*(.*)`)
	reasoningRe        = regexp.MustCompile(`(?is)REASONING:\s*(.*)`)
	selectSpanRe       = regexp.MustCompile(`(?is)(SELECT\b.*?)(?:;|$)`)
	sqlFenceBlockRe    = regexp.MustCompile("(?is)```sql\\s*(.*?)```")
)

// ExtractSQL pulls the SQL statement out of a generation response. It prefers
// the "SQL:" section of the response grammar, falls back to the first SELECT
// span, and reports a parse failure when neither is present.
func ExtractSQL(response string) (string, error) {
	if m := sqlSectionRe.FindStringSubmatch(response); m != nil {
		if sqlText := strings.TrimSpace(m[1]); sqlText != "" {
			return sqlText, nil
		}
	}
	if m := selectSpanRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	return "", apperrors.New(apperrors.KindParse, "no SQL statement found in model response")
}

// ExtractCorrectedSQL pulls the repaired statement out of a correction
// response using layered fallbacks: the "CORRECTED_SQL:" section, then a
// fenced ```sql block, then the first SELECT span. Exhausting all three is a
// parse failure.
func ExtractCorrectedSQL(response string) (string, error) {
	if m := correctedSectionRe.FindStringSubmatch(response); m != nil {
		if sqlText := strings.TrimSpace(m[1]); sqlText != "" {
			return sqlText, nil
		}
	}
	if m := sqlFenceBlockRe.FindStringSubmatch(response); m != nil {
		if sqlText := strings.TrimSpace(m[1]); sqlText != "" {
			return sqlText, nil
		}
	}
	if m := selectSpanRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	return "", apperrors.New(apperrors.KindParse, "no corrected SQL found in model response")
}

// ExtractSection returns the text between a section header and the first of
// the given follow-on headers (or end of text). Header matching is
// case-insensitive. Returns "" when the header is absent.
func ExtractSection(response, header string, nextHeaders ...string) string {
	upper := strings.ToUpper(response)
	start := strings.Index(upper, strings.ToUpper(header))
	if start < 0 {
		return ""
	}
	start += len(header)

	end := len(response)
	for _, next := range nextHeaders {
		if idx := strings.Index(upper[start:], strings.ToUpper(next)); idx >= 0 && start+idx < end {
			end = start + idx
		}
	}
	return strings.TrimSpace(response[start:end])
}

// ExtractExplanation returns the "EXPLANATION:" section, or a generic
// fallback sentence when the section is absent.
func ExtractExplanation(response, fallback string) string {
	if m := explanationRe.FindStringSubmatch(response); m != nil {
		if text := strings.TrimSpace(m[1]); text != "" {
			return text
		}
	}
	return fallback
}

// ExtractChanges returns the bullet lines of the "CHANGES_MADE:" section.
func ExtractChanges(response string) []string {
	m := changesRe.FindStringSubmatch(response)
	if m == nil {
		return nil
	}
	return bulletLines(m[1], 0)
}

// defaultReasoningSteps is returned when the model omits the REASONING
// section entirely.
var defaultReasoningSteps = []string{
	"Analyzed the natural language query",
	"Identified relevant tables and columns from schema",
	"Applied appropriate filters and conditions",
	"Added safety measures (LIMIT clause)",
	"Validated the generated SQL query",
}

// ReasoningSteps extracts up to five trimmed bullet lines from the
// "REASONING:" section. When the section is missing, a fixed generic list is
// substituted so callers always receive a populated field.
func ReasoningSteps(response string) []string {
	if m := reasoningRe.FindStringSubmatch(response); m != nil {
		if steps := bulletLines(m[1], 5); len(steps) > 0 {
			return steps
		}
	}
	steps := make([]string, len(defaultReasoningSteps))
	copy(steps, defaultReasoningSteps)
	return steps
}

func bulletLines(text string, limit int) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-* ")
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if limit > 0 && len(lines) == limit {
			break
		}
	}
	return lines
}
