package llm

import (
	"errors"
	"strings"

	"github.com/hugdata-inc/hugdata-engine/pkg/apperrors"
)

// ClassifyError wraps a backend failure as a generation error with a short
// human-readable category. The engine performs no automatic retries, so the
// category is informational, not a retry hint.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}

	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "401") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key"):
		return apperrors.Wrap(apperrors.KindGeneration, err, "authentication failed")

	case strings.Contains(lower, "model") && (strings.Contains(lower, "not found") ||
		strings.Contains(lower, "does not exist")):
		return apperrors.Wrap(apperrors.KindGeneration, err, "model not found")

	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host"):
		return apperrors.Wrap(apperrors.KindGeneration, err, "connection failed")

	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded") ||
		strings.Contains(lower, "context canceled"):
		return apperrors.Wrap(apperrors.KindGeneration, err, "request timeout")

	case strings.Contains(lower, "429") || strings.Contains(lower, "rate limit"):
		return apperrors.Wrap(apperrors.KindGeneration, err, "rate limited")

	case strings.Contains(lower, "500") || strings.Contains(lower, "502") ||
		strings.Contains(lower, "503") || strings.Contains(lower, "504"):
		return apperrors.Wrap(apperrors.KindGeneration, err, "server error")
	}

	return apperrors.Wrap(apperrors.KindGeneration, err, "llm error")
}
