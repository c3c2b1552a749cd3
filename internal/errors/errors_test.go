package errors_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/example/mangabrew/internal/errors"
)

func TestRateLimitErrorMinutes(t *testing.T) {
	tests := []struct {
		name  string
		after time.Duration
		want  int
	}{
		{"exact minutes", 10 * time.Minute, 10},
		{"rounds up", 9*time.Minute + time.Second, 10},
		{"under a minute", 20 * time.Second, 1},
		{"zero", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &apperrors.RateLimitError{RetryAfter: tt.after}
			assert.Equal(t, tt.want, err.Minutes())
		})
	}
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", &apperrors.RateLimitError{RetryAfter: time.Minute})
	assert.True(t, errors.Is(wrapped, apperrors.ErrRateLimited))

	var rl *apperrors.RateLimitError
	assert.True(t, errors.As(wrapped, &rl))

	assert.True(t, errors.Is(&apperrors.StockError{Item: "Latte", Available: 2}, apperrors.ErrInsufficientStock))
	assert.True(t, errors.Is(apperrors.NewValidationError("a", "b"), apperrors.ErrValidation))
	assert.Equal(t, "a; b", apperrors.NewValidationError("a", "b").Error())
}
