// Package apperrors defines the error taxonomy shared by the engine's
// pipelines and collaborator adapters.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error.
type Kind string

const (
	// KindConfiguration means a required collaborator is not configured.
	// These fail loudly and immediately; placeholder data is never substituted.
	KindConfiguration Kind = "configuration_error"

	// KindRetrieval means a vector store or embedding call failed during search.
	KindRetrieval Kind = "retrieval_error"

	// KindGeneration means the language model call itself failed.
	KindGeneration Kind = "generation_error"

	// KindParse means the model response did not match the expected grammar
	// after all fallback strategies were exhausted.
	KindParse Kind = "parse_error"

	// KindSafety means a mutating SQL keyword was detected. Always fatal to
	// the call; never retried or auto-corrected.
	KindSafety Kind = "safety_violation"

	// KindValidation means an individual relationship candidate failed
	// referential checks. Non-fatal: the candidate is dropped.
	KindValidation Kind = "relationship_validation_error"

	// KindUnknown is the fallback classification.
	KindUnknown Kind = "unknown_error"
)

var (
	ErrNotConfigured = errors.New("collaborator not configured")
	ErrNotFound      = errors.New("not found")
)

// Error is a classified engine error.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a classified error without a cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a classified error around a cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the Kind from an error chain. Unclassified errors report
// KindUnknown, except ErrNotConfigured which is a configuration error.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, ErrNotConfigured) {
		return KindConfiguration
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
