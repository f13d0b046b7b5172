package llm

import (
	"context"
	"log"
	"math/rand"
	"time"
)

// RetryConfig bounds the retry loop around transient provider failures.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first call.
	MaxAttempts int
	// BaseDelay is the backoff delay before the first retry; it doubles on
	// each subsequent retry.
	BaseDelay time.Duration
	// MaxDelay caps the backoff delay.
	MaxDelay time.Duration
}

// DefaultRetryConfig returns the retry policy used when none is configured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
	}
}

func (c RetryConfig) normalized() RetryConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 500 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 8 * time.Second
	}
	return c
}

// retryingCompleter wraps a Completer with bounded exponential backoff on
// transient errors. Fatal errors and cancellation surface immediately.
type retryingCompleter struct {
	inner Completer
	cfg   RetryConfig
	sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps the given completer with the retry policy. Streaming calls
// retry only the initial connection; once chunks flow, a mid-stream failure
// surfaces to the caller.
func WithRetry(inner Completer, cfg RetryConfig) Completer {
	return &retryingCompleter{
		inner: inner,
		cfg:   cfg.normalized(),
		sleep: sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// backoff returns the delay before retry attempt n (1-indexed), with jitter.
func (r *retryingCompleter) backoff(attempt int) time.Duration {
	delay := r.cfg.BaseDelay << (attempt - 1)
	if delay > r.cfg.MaxDelay || delay <= 0 {
		delay = r.cfg.MaxDelay
	}
	// Up to 25% jitter to avoid thundering herds against rate limits.
	jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
	return delay + jitter
}

func (r *retryingCompleter) Complete(ctx context.Context, req GenerateRequest) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		text, err := r.inner.Complete(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return "", err
		}
		if attempt == r.cfg.MaxAttempts {
			break
		}

		delay := r.backoff(attempt)
		log.Printf("[llm] transient error on attempt %d/%d, retrying in %s: %v",
			attempt, r.cfg.MaxAttempts, delay.Round(time.Millisecond), err)
		if err := r.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

func (r *retryingCompleter) Stream(ctx context.Context, req GenerateRequest) (<-chan Chunk, error) {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		ch, err := r.inner.Stream(ctx, req)
		if err == nil {
			return ch, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return nil, err
		}
		if attempt == r.cfg.MaxAttempts {
			break
		}

		delay := r.backoff(attempt)
		log.Printf("[llm] transient stream error on attempt %d/%d, retrying in %s: %v",
			attempt, r.cfg.MaxAttempts, delay.Round(time.Millisecond), err)
		if err := r.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}
