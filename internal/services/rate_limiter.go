package services

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/repository"
)

const (
	loginWindow      = 15 * time.Minute
	loginMaxAttempts = 5
)

// RateLimiter throttles failed logins per client address over a trailing
// window. Counts are not locked; concurrent failures may briefly over- or
// undercount.
type RateLimiter struct {
	attempts repository.LoginAttemptRepository
	Now      func() time.Time
}

func NewRateLimiter(attempts repository.LoginAttemptRepository) *RateLimiter {
	return &RateLimiter{attempts: attempts, Now: time.Now}
}

// Check returns a *errors.RateLimitError once ip has reached the limit.
func (l *RateLimiter) Check(ctx context.Context, ip string) error {
	now := l.Now()
	count, oldest, err := l.attempts.Window(ctx, ip, now.Add(-loginWindow))
	if err != nil {
		return fmt.Errorf("count login attempts: %w", err)
	}
	if count < loginMaxAttempts {
		return nil
	}
	return &apperrors.RateLimitError{RetryAfter: oldest.Add(loginWindow).Sub(now)}
}

func (l *RateLimiter) Fail(ctx context.Context, ip string) error {
	return l.attempts.Record(ctx, ip, l.Now())
}

func (l *RateLimiter) Reset(ctx context.Context, ip string) error {
	return l.attempts.Clear(ctx, ip)
}
