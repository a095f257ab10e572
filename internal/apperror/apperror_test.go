package apperror

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
		{"direct app error", New(KindForbidden, "platform.ListCourses", nil), KindForbidden},
		{"wrapped app error", fmt.Errorf("sync: %w", New(KindAuthExpired, "op", nil)), KindAuthExpired},
		{"unclassified error defaults to transient", errors.New("connection reset"), KindTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(New(KindTransient, "op", errors.New("status 503"))))
	assert.True(t, Retryable(errors.New("raw transport error")))

	assert.False(t, Retryable(New(KindAuthExpired, "op", nil)))
	assert.False(t, Retryable(New(KindForbidden, "op", nil)))
	assert.False(t, Retryable(New(KindInvalidResponse, "op", nil)))
	assert.False(t, Retryable(New(KindUnauthenticated, "op", nil)))
	assert.False(t, Retryable(New(KindValidation, "op", nil)))
}

func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(KindTransient, "op", errors.New("status 429")))

	assert.True(t, errors.Is(err, New(KindTransient, "", nil)))
	assert.False(t, errors.Is(err, New(KindForbidden, "", nil)))
	assert.True(t, IsKind(err, KindTransient))
}

func TestErrorString(t *testing.T) {
	withCause := New(KindTransient, "platform.GetSubmission", errors.New("status 502"))
	assert.Equal(t, "platform.GetSubmission: TRANSIENT: status 502", withCause.Error())

	bare := New(KindUnauthenticated, "credential.Get", nil)
	assert.Equal(t, "credential.Get: UNAUTHENTICATED", bare.Error())
}
