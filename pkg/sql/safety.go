// Package sql provides SQL safety validation, response extraction, error
// classification and confidence scoring for generated queries.
package sql

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/hugdata-inc/hugdata-engine/pkg/apperrors"
)

var (
	// dangerousRe matches statement types that mutate data or schema, as
	// whole words. Generated SQL must be read-only, so any match is a hard
	// rejection.
	dangerousRe = regexp.MustCompile(`\b(INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|TRUNCATE)\b`)
	// limitTailRe matches the statement's own row-limit clause. Only a
	// trailing LIMIT counts; a LIMIT inside a subquery does not bound the
	// outer statement.
	limitTailRe = regexp.MustCompile(`(?i)\bLIMIT\s+(\d+)(\s+OFFSET\s+\d+)?\s*$`)
	fenceOpenRe = regexp.MustCompile("(?i)```sql\\s*\n?")
	fenceRe     = regexp.MustCompile("```\\s*\n?")
)

// DangerousKeyword returns the first mutating keyword found in the statement,
// or the empty string when the statement is read-only.
func DangerousKeyword(sqlText string) string {
	return dangerousRe.FindString(strings.ToUpper(sqlText))
}

// Sanitize normalizes a generated SQL statement and enforces the read-only,
// bounded-rows contract:
//
//  1. markdown code fences are stripped and whitespace collapsed
//  2. the statement gains exactly one trailing semicolon
//  3. any mutating keyword (whole-word, case-insensitive) is a safety
//     violation and no SQL is returned
//  4. string literals are scanned for injection fingerprints; a positive
//     match is a safety violation
//  5. a trailing LIMIT clause is appended at maxRows when absent; an
//     existing trailing LIMIT above maxRows is capped
func Sanitize(sqlText string, maxRows int) (string, error) {
	cleaned := fenceOpenRe.ReplaceAllString(sqlText, "")
	cleaned = fenceRe.ReplaceAllString(cleaned, "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	cleaned = strings.TrimRight(cleaned, "; ")

	if cleaned == "" {
		return "", apperrors.New(apperrors.KindParse, "empty SQL statement")
	}

	if kw := DangerousKeyword(cleaned); kw != "" {
		return "", apperrors.New(apperrors.KindSafety, "dangerous SQL keyword detected: %s", kw)
	}

	if HasMultipleStatements(cleaned) {
		return "", apperrors.New(apperrors.KindSafety, "multiple SQL statements not allowed")
	}

	for _, literal := range stringLiterals(cleaned) {
		if sqli, fingerprint := CheckInjection(literal); sqli {
			return "", apperrors.New(apperrors.KindSafety, "injection pattern in string literal (fingerprint %s)", fingerprint)
		}
	}

	cleaned = enforceLimit(cleaned, maxRows)
	return cleaned + ";", nil
}

// enforceLimit bounds the statement by its trailing LIMIT clause. A LIMIT
// buried in a subquery is ignored: the outer statement still gets one.
func enforceLimit(sqlText string, maxRows int) string {
	if maxRows <= 0 {
		return sqlText
	}

	match := limitTailRe.FindStringSubmatchIndex(sqlText)
	if match == nil {
		return fmt.Sprintf("%s LIMIT %d", sqlText, maxRows)
	}

	n, err := strconv.Atoi(sqlText[match[2]:match[3]])
	if err != nil || n <= maxRows {
		return sqlText
	}
	return sqlText[:match[2]] + strconv.Itoa(maxRows) + sqlText[match[3]:]
}

// CheckInjection runs a value through libinjection's SQLi detector and returns
// the fingerprint of any detected pattern. It is meant for caller-controlled
// values such as string literals, not for whole statements: a complete SELECT
// is itself SQL and would always fingerprint.
func CheckInjection(value string) (bool, string) {
	isSQLi, fingerprint := libinjection.IsSQLi(value)
	return isSQLi, string(fingerprint)
}

// stringLiterals returns the unescaped contents of single- and double-quoted
// literals in the statement.
func stringLiterals(sqlText string) []string {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	var literals []string
	var current strings.Builder
	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlText {
		switch state {
		case stateNormal:
			switch char {
			case '\'':
				state = stateSingleQuote
				current.Reset()
			case '"':
				state = stateDoubleQuote
				current.Reset()
			}
		case stateSingleQuote:
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
				literals = append(literals, current.String())
			} else if char != '\\' {
				current.WriteRune(char)
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
				literals = append(literals, current.String())
			} else if char != '\\' {
				current.WriteRune(char)
			}
		}
		prevChar = char
	}
	return literals
}

// HasMultipleStatements reports whether the statement contains a semicolon
// outside of string literals, which would indicate statement stacking.
func HasMultipleStatements(sqlText string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlText {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		}
		prevChar = char
	}
	return false
}
