package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// RetryProvider retries transient failures with jittered exponential
// backoff. It never waits past the context deadline: when the next wait
// would not fit, the last error is returned at once so the caller still
// has time to fall back.
type RetryProvider struct {
	inner  Provider
	config RetryConfig

	// jitter returns a value in [0, 1); replaced in tests.
	jitter func() float64
}

// WithRetry wraps p. MaxAttempts below 1 is treated as 1.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	return &RetryProvider{inner: p, config: cfg, jitter: rand.Float64}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var err error
	for attempt := range r.config.MaxAttempts {
		var resp *Response
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if attempt == r.config.MaxAttempts-1 || !retryable(err) {
			return nil, err
		}

		wait := r.backoff(attempt, err)
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= wait {
			return nil, err
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, mapContextError(ctx.Err())
		case <-t.C:
		}
	}
	return nil, err
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// backoff is InitialWait * Multiplier^attempt, capped at MaxWait, with
// +/-20% jitter. A provider Retry-After hint replaces the computed wait.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait)
	for range attempt {
		wait *= r.config.Multiplier
		if r.config.MaxWait > 0 && wait >= float64(r.config.MaxWait) {
			wait = float64(r.config.MaxWait)
			break
		}
	}
	wait *= 0.8 + 0.4*r.jitter()
	return time.Duration(wait)
}
