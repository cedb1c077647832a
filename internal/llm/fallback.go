package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// FallbackProvider tries a list of providers in order, typically the same
// API with different models. Each attempt runs under its own timeout.
// Invalid keys and exhausted quota end the chain early since another model
// on the same key would fail the same way.
type FallbackProvider struct {
	chain   []Provider
	timeout time.Duration
	log     *zap.Logger
}

// WithFallback builds a FallbackProvider. A zero timeout disables the
// per-attempt deadline.
func WithFallback(timeout time.Duration, chain ...Provider) *FallbackProvider {
	return &FallbackProvider{chain: chain, timeout: timeout, log: zap.L().Named("llm")}
}

func (f *FallbackProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if len(f.chain) == 0 {
		return nil, &ErrProviderUnavailable{Err: errors.New("no models configured")}
	}

	var lastErr error
	for i, p := range f.chain {
		resp, err := f.attempt(ctx, p, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		kind := Classify(err)
		f.log.Warn("model attempt failed",
			zap.String("model", p.ModelID()),
			zap.String("kind", kind.String()),
			zap.Int("attempt", i+1),
			zap.Error(err),
		)
		if kind.Fatal() || ctx.Err() != nil {
			return nil, err
		}
	}
	if len(f.chain) == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("all %d models failed: %w", len(f.chain), lastErr)
}

func (f *FallbackProvider) attempt(ctx context.Context, p Provider, req Request) (*Response, error) {
	if f.timeout <= 0 {
		return p.Generate(ctx, req)
	}

	actx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := p.Generate(actx, req)
	if err != nil && ctx.Err() == nil && errors.Is(actx.Err(), context.DeadlineExceeded) {
		return nil, &ErrTimeout{Model: p.ModelID(), After: f.timeout}
	}
	return resp, err
}

// ModelID returns the first model in the chain.
func (f *FallbackProvider) ModelID() string {
	if len(f.chain) == 0 {
		return ""
	}
	return f.chain[0].ModelID()
}

// Models lists the model IDs in the order they are tried.
func (f *FallbackProvider) Models() []string {
	out := make([]string, len(f.chain))
	for i, p := range f.chain {
		out[i] = p.ModelID()
	}
	return out
}
