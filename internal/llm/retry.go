package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// RetryProvider retries one model on transient failures, waiting with
// exponential backoff and ±20% jitter between attempts.
type RetryProvider struct {
	inner Provider
	cfg   RetryConfig
}

// WithRetry wraps p. A MaxAttempts below one still makes a single attempt.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, cfg: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.cfg.MaxAttempts, 1)
	malformedLeft := 1

	for n := 0; ; n++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		kind := Classify(err)
		if kind == KindInvalidResponse || kind == KindEmpty {
			if malformedLeft == 0 {
				return nil, err
			}
			malformedLeft--
		}
		if n+1 >= attempts || !retryable(kind) {
			return nil, err
		}

		t := time.NewTimer(r.delay(n, err))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// retryable reports whether the same model may succeed on another attempt.
// Bad keys, spent quota and truncated output fail the same way every time;
// deadlines and cancellation belong to the caller.
func retryable(k Kind) bool {
	switch k {
	case KindInvalidKey, KindQuota, KindMaxTokens, KindTimeout, KindCanceled:
		return false
	}
	return true
}

// delay is the wait before attempt n+1. A rate limit that names its own
// wait is honoured as-is.
func (r *RetryProvider) delay(n int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	d := float64(r.cfg.InitialWait)
	for range n {
		d *= r.cfg.Multiplier
	}
	if limit := float64(r.cfg.MaxWait); limit > 0 && d > limit {
		d = limit
	}
	d += d * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(max(d, 0))
}
