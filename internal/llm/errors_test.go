package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantTransient bool
		wantFatal     bool
	}{
		{name: "rate limited", err: &anthropic.Error{StatusCode: 429}, wantTransient: true},
		{name: "request timeout", err: &anthropic.Error{StatusCode: 408}, wantTransient: true},
		{name: "conflict", err: &anthropic.Error{StatusCode: 409}, wantTransient: true},
		{name: "server error", err: &anthropic.Error{StatusCode: 500}, wantTransient: true},
		{name: "overloaded", err: &anthropic.Error{StatusCode: 529}, wantTransient: true},
		{name: "bad request", err: &anthropic.Error{StatusCode: 400}, wantFatal: true},
		{name: "unauthorized", err: &anthropic.Error{StatusCode: 401}, wantFatal: true},
		{name: "model not found", err: &anthropic.Error{StatusCode: 404}, wantFatal: true},
		{name: "unknown failure", err: errors.New("connection reset"), wantTransient: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			require.Error(t, got)

			var transient *TransientError
			var fatal *FatalError
			assert.Equal(t, tt.wantTransient, errors.As(got, &transient))
			assert.Equal(t, tt.wantFatal, errors.As(got, &fatal))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	assert.NoError(t, classify(nil))
}

func TestClassify_CancellationPassesThrough(t *testing.T) {
	for _, cause := range []error{context.Canceled, context.DeadlineExceeded} {
		got := classify(fmt.Errorf("call failed: %w", cause))
		assert.ErrorIs(t, got, cause)

		var transient *TransientError
		assert.False(t, errors.As(got, &transient))
	}
}

func TestIsRetryable(t *testing.T) {
	cause := errors.New("boom")
	assert.True(t, IsRetryable(&TransientError{Cause: cause}))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", &TransientError{Cause: cause})))
	assert.False(t, IsRetryable(&FatalError{Cause: cause}))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(&TransientError{Cause: context.Canceled}))
	assert.False(t, IsRetryable(cause))
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("boom")
	assert.ErrorIs(t, &TransientError{Cause: cause}, cause)
	assert.ErrorIs(t, &FatalError{Cause: cause}, cause)
	assert.Contains(t, (&TransientError{Cause: cause}).Error(), "boom")
	assert.Contains(t, (&FatalError{Cause: cause}).Error(), "boom")
}
