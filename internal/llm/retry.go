package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// RetryProvider retries transient failures of the wrapped Provider with
// capped exponential backoff.
type RetryProvider struct {
	inner  Provider
	config RetryConfig

	// jitter returns a factor in [-1, 1) scaled to ±20% of each wait.
	jitter func() float64
}

// WithRetry wraps p. MaxAttempts below one still makes a single attempt.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{
		inner:  p,
		config: cfg,
		jitter: func() float64 { return 2*rand.Float64() - 1 },
	}
}

type retryDecision int

const (
	giveUp retryDecision = iota
	retryOnce
	retryAlways
)

// decide classifies err. Schema violations are retried once since a
// second sample usually conforms; truncation and rejected keys never
// change between attempts.
func decide(err error) retryDecision {
	var (
		maxTok  *ErrMaxTokensExceeded
		unauth  *ErrUnauthorized
		invalid *ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return giveUp
	case errors.As(err, &maxTok), errors.As(err, &unauth):
		return giveUp
	case errors.As(err, &invalid):
		return retryOnce
	default:
		return retryAlways
	}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.config.MaxAttempts, 1)
	usedOnce := false

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		var resp *Response
		if resp, err = r.inner.Generate(ctx, req); err == nil {
			return resp, nil
		}

		switch decide(err) {
		case giveUp:
			return nil, err
		case retryOnce:
			if usedOnce {
				return nil, err
			}
			usedOnce = true
		}

		if attempt == attempts-1 {
			break
		}
		timer := time.NewTimer(r.delay(attempt, err))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, err
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// delay is the wait before retrying after the given zero-based attempt.
// A server-provided Retry-After wins but is capped at MaxWait.
func (r *RetryProvider) delay(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		if r.config.MaxWait > 0 && rl.RetryAfter > r.config.MaxWait {
			return r.config.MaxWait
		}
		return rl.RetryAfter
	}

	mult := r.config.Multiplier
	if mult < 1 {
		mult = 1
	}
	wait := float64(r.config.InitialWait)
	for range attempt {
		wait *= mult
	}
	if r.config.MaxWait > 0 {
		wait = min(wait, float64(r.config.MaxWait))
	}
	if r.jitter != nil {
		wait += wait * 0.2 * r.jitter()
	}
	return time.Duration(max(wait, 0))
}
