package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/pakarguru/modulajar/internal/store"
)

// modelSwitcher is a backend that can hand out a sibling for another model
// over the same SDK client.
type modelSwitcher interface {
	Provider
	withModel(model string) Provider
}

// NewProvider builds the generation chain for cfg. Each model gets logging
// and retries of its own; the models are then tried in order:
//
//	fallback → retry → logging → backend(model)
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	if cfg.Provider == ProviderMock {
		return NewMockProvider(), nil
	}
	backends, err := newBaseProviders(ctx, cfg, cfg.Models())
	if err != nil {
		return nil, err
	}
	chain := make([]Provider, 0, len(backends))
	for _, b := range backends {
		chain = append(chain, WithRetry(WithLogging(b, cfg.Provider, eventRepo), cfg.Retry))
	}
	return WithFallback(cfg.Timeout, chain...), nil
}

// pingModelLimit caps how many models a key check tries.
const pingModelLimit = 3

// CheckKey probes the configured key against the first few models and
// returns the model that answered.
func CheckKey(ctx context.Context, cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingAPIKey, err)
	}
	if cfg.Provider == ProviderMock {
		return ProviderMock, nil
	}
	models := cfg.Models()
	if len(models) > pingModelLimit {
		models = models[:pingModelLimit]
	}
	backends, err := newBaseProviders(ctx, cfg, models)
	if err != nil {
		return "", err
	}
	return Ping(ctx, backends, DefaultPingTimeout)
}

func newBaseProviders(ctx context.Context, cfg Config, models []string) ([]Provider, error) {
	if len(models) == 0 {
		return nil, errors.New("no model configured")
	}

	var (
		first modelSwitcher
		err   error
	)
	switch cfg.Provider {
	case ProviderGemini:
		first, err = NewGeminiProvider(ctx, cfg.APIKey, models[0], cfg.BaseURL)
	case ProviderAnthropic:
		first, err = NewAnthropicProvider(cfg.APIKey, models[0], cfg.BaseURL)
	case ProviderOpenAI:
		first, err = NewOpenAIProvider(cfg.APIKey, models[0], cfg.BaseURL)
	case ProviderOpenRouter:
		first, err = NewOpenRouterProvider(cfg.APIKey, models[0], cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	out := []Provider{first}
	for _, m := range models[1:] {
		out = append(out, first.withModel(m))
	}
	return out, nil
}
