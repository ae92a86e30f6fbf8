package sql

import "strings"

// Error taxonomy buckets for correction. The classifier checks buckets in a
// fixed priority order and the first match wins.
const (
	ErrorSyntax         = "syntax_error"
	ErrorColumnNotFound = "column_not_found"
	ErrorTableNotFound  = "table_not_found"
	ErrorMissingGroupBy = "missing_group_by"
	ErrorJoin           = "join_error"
	ErrorUnknown        = "unknown"
)

type errorPattern struct {
	bucket   string
	keywords []string
}

// errorPatterns is ordered by priority. Patterns later in the list never
// shadow earlier ones.
var errorPatterns = []errorPattern{
	{ErrorSyntax, []string{"syntax error", "unexpected token", "invalid syntax"}},
	{ErrorColumnNotFound, []string{"unknown column", "column does not exist", "column doesn't exist", "no such column"}},
	{ErrorTableNotFound, []string{"unknown table", "table does not exist", "table doesn't exist", "relation does not exist", "no such table"}},
	{ErrorMissingGroupBy, []string{"group by", "not in group by", "aggregate"}},
	{ErrorJoin, []string{"join", "on clause", "ambiguous"}},
}

// ClassifyError maps a database error message onto one taxonomy bucket by
// case-insensitive keyword match. Unmatched messages classify as unknown.
func ClassifyError(errorMessage string) string {
	lower := strings.ToLower(errorMessage)
	for _, pattern := range errorPatterns {
		for _, keyword := range pattern.keywords {
			if strings.Contains(lower, keyword) {
				return pattern.bucket
			}
		}
	}
	return ErrorUnknown
}
