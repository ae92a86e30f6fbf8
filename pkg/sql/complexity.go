package sql

import "regexp"

// Query complexity buckets.
const (
	ComplexitySimple   = "simple"
	ComplexityModerate = "moderate"
	ComplexityComplex  = "complex"
)

var (
	joinRe      = regexp.MustCompile(`(?i)\bjoin\b`)
	subqueryRe  = regexp.MustCompile(`(?is)\(.*select.*\)`)
	aggregateRe = regexp.MustCompile(`(?i)\b(count|sum|avg|max|min|group_concat)\b`)
	unionRe     = regexp.MustCompile(`(?i)\bunion\b`)
	windowRe    = regexp.MustCompile(`(?i)\bover\s*\(`)
)

// AssessComplexity buckets a statement by counting joins, subqueries,
// aggregates, unions and window functions. Zero indicators is simple, up to
// three is moderate, more is complex.
func AssessComplexity(sqlText string) string {
	total := len(joinRe.FindAllString(sqlText, -1)) +
		len(subqueryRe.FindAllString(sqlText, -1)) +
		len(aggregateRe.FindAllString(sqlText, -1)) +
		len(unionRe.FindAllString(sqlText, -1)) +
		len(windowRe.FindAllString(sqlText, -1))

	switch {
	case total == 0:
		return ComplexitySimple
	case total <= 3:
		return ComplexityModerate
	default:
		return ComplexityComplex
	}
}
