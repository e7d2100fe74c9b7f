package fetch

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy implements capped exponential backoff for fetch attempts.
// The first attempt is free; MaxRetries additional attempts follow.
type RetryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewRetryPolicy builds a policy. Non-positive delays fall back to the
// defaults (500ms base, 8s ceiling).
func NewRetryPolicy(maxRetries int, baseDelay, maxDelay time.Duration) *RetryPolicy {
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 8 * time.Second
	}
	return &RetryPolicy{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
	}
}

// ShouldRetry decides whether the error warrants another attempt.
// attempt is zero-based: attempt 0 is the initial try.
func (p *RetryPolicy) ShouldRetry(err error, attempt int) bool {
	if err == nil {
		return false
	}
	if attempt >= p.maxRetries {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	return true
}

// Backoff returns the wait duration before attempt+1, growing as
// base * 2^attempt up to the configured ceiling.
func (p *RetryPolicy) Backoff(attempt int) time.Duration {
	delay := p.baseDelay << uint(attempt)
	if delay <= 0 || delay > p.maxDelay {
		return p.maxDelay
	}
	return delay
}
