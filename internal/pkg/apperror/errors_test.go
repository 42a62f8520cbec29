package apperror

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassificationSurvivesWrapping(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NotFound("chat session", int64(4)), IsNotFound},
		{"conflict", Conflict("chat session", "duplicate token", nil), IsConflict},
		{"upstream", &UpstreamUnavailableError{Operation: "chat", StatusCode: 503}, IsUpstreamUnavailable},
		{"validation", Validation("question", "must not be empty"), IsValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("service layer: %w", tt.err)
			assert.True(t, tt.check(wrapped))
		})
	}
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "chat session with id 4 not found", NotFound("chat session", int64(4)).Error())
	assert.Equal(t, "user not found", NotFound("user", nil).Error())
	assert.Equal(t, "question: must not be empty", Validation("question", "must not be empty").Error())

	up := &UpstreamUnavailableError{Operation: "chat", StatusCode: 502, Message: "bad gateway"}
	assert.Equal(t, "rag chat failed: status 502: bad gateway", up.Error())

	timeout := &UpstreamUnavailableError{Operation: "chat", Message: "timeout", Err: context.DeadlineExceeded}
	assert.Equal(t, "rag chat failed: timeout", timeout.Error())
	assert.True(t, errors.Is(timeout, context.DeadlineExceeded))
}

func TestClassifiersRejectOtherErrors(t *testing.T) {
	err := errors.New("boom")
	assert.False(t, IsNotFound(err))
	assert.False(t, IsConflict(err))
	assert.False(t, IsUpstreamUnavailable(err))
	assert.False(t, IsValidation(err))
}
