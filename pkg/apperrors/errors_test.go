package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "classified error",
			err:  New(KindSafety, "dangerous keyword: DROP"),
			want: KindSafety,
		},
		{
			name: "wrapped classified error",
			err:  fmt.Errorf("pipeline: %w", New(KindParse, "no SQL in response")),
			want: KindParse,
		},
		{
			name: "not configured sentinel",
			err:  fmt.Errorf("embed query: %w", ErrNotConfigured),
			want: KindConfiguration,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: KindUnknown,
		},
		{
			name: "nil",
			err:  nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindRetrieval, cause, "similarity search failed")

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "retrieval_error")
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, IsKind(err, KindRetrieval))
}
