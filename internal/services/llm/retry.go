package llm

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
)

// RetryPolicy controls retries around a provider call. The delay doubles
// per attempt unless the provider suggested its own retry delay.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func NewRetryPolicy(maxRetries int, baseDelay time.Duration) *RetryPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 2 * time.Second
	}
	return &RetryPolicy{
		MaxRetries: maxRetries,
		BaseDelay:  baseDelay,
		MaxDelay:   90 * time.Second,
	}
}

// Backoff computes the wait before retrying attempt (0-based). A provider
// suggested delay overrides the exponential schedule.
func (p *RetryPolicy) Backoff(attempt int, suggested time.Duration) time.Duration {
	if suggested > 0 {
		return suggested + time.Second
	}

	delay := p.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
	}
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Execute runs fn up to MaxRetries+1 times, retrying only transient
// provider failures. The last error is returned when every attempt fails.
func (p *RetryPolicy) Execute(ctx context.Context, logger arbor.ILogger, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		kind := ClassifyError(lastErr)
		if !kind.IsRetryable() || attempt == p.MaxRetries {
			return lastErr
		}

		wait := p.Backoff(attempt, ExtractRetryDelay(lastErr))
		logger.Warn().
			Err(lastErr).
			Str("kind", string(kind)).
			Int("attempt", attempt+1).
			Int("max_retries", p.MaxRetries).
			Dur("wait", wait).
			Msg("Provider call failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return lastErr
}
