package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

type RetryPolicy struct {
	// Attempts is the total number of calls, including the first. Values
	// below 1 are treated as 1.
	Attempts int
	// BaseDelay is multiplied by the attempt number between attempts.
	BaseDelay time.Duration
	// Timeout bounds each attempt. Zero means no per-attempt timeout.
	Timeout time.Duration
}

type retryClient struct {
	next   Client
	policy RetryPolicy
	logger *slog.Logger
}

// WithRetry wraps c so that failed calls are retried with linear backoff.
// Output problems (ErrNoOutput, ErrMalformedOutput) and cancellation of the
// caller's context are returned immediately.
func WithRetry(c Client, policy RetryPolicy, logger *slog.Logger) Client {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &retryClient{next: c, policy: policy, logger: logger}
}

func (r *retryClient) Complete(ctx context.Context, req Request) (json.RawMessage, error) {
	var lastErr error
	for attempt := 1; attempt <= r.policy.Attempts; attempt++ {
		out, err := r.attempt(ctx, req)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if ctx.Err() != nil || errors.Is(err, ErrNoOutput) || errors.Is(err, ErrMalformedOutput) {
			return nil, err
		}
		if attempt == r.policy.Attempts {
			break
		}

		r.logger.Warn("completion attempt failed", "prompt", req.Name, "attempt", attempt, "error", err)
		delay := time.Duration(attempt) * r.policy.BaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if r.policy.Attempts > 1 {
		return nil, fmt.Errorf("after %d attempts: %w", r.policy.Attempts, lastErr)
	}
	return nil, lastErr
}

func (r *retryClient) attempt(ctx context.Context, req Request) (json.RawMessage, error) {
	if r.policy.Timeout <= 0 {
		return r.next.Complete(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, r.policy.Timeout)
	defer cancel()
	return r.next.Complete(ctx, req)
}

type LimitPolicy struct {
	// RPS is the sustained call rate. Zero disables rate limiting.
	RPS float64
	// Burst is the token bucket size; values below 1 are treated as 1.
	Burst int
	// MaxInFlight caps concurrent calls. Zero means unlimited.
	MaxInFlight int
}

type limitClient struct {
	next     Client
	limiter  *rate.Limiter
	inFlight *semaphore.Weighted
}

// WithLimit wraps c with a token-bucket rate limit and a cap on concurrent
// calls. Callers block until both allow the call or ctx is done.
func WithLimit(c Client, policy LimitPolicy) Client {
	l := &limitClient{next: c}
	if policy.RPS > 0 {
		burst := policy.Burst
		if burst < 1 {
			burst = 1
		}
		l.limiter = rate.NewLimiter(rate.Limit(policy.RPS), burst)
	}
	if policy.MaxInFlight > 0 {
		l.inFlight = semaphore.NewWeighted(int64(policy.MaxInFlight))
	}
	return l
}

func (l *limitClient) Complete(ctx context.Context, req Request) (json.RawMessage, error) {
	if l.inFlight != nil {
		if err := l.inFlight.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer l.inFlight.Release(1)
	}
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return l.next.Complete(ctx, req)
}
