package llm

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

// Backends accepted in Config.Provider.
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects a backend and the models tried on it.
type Config struct {
	Provider string
	APIKey   string

	// Model is tried first. Empty uses the backend's default model.
	Model string
	// FallbackModels are tried in order when Model fails with a
	// recoverable error.
	FallbackModels []string

	// BaseURL overrides the backend endpoint, e.g. a proxy or a
	// self-hosted OpenAI-compatible server.
	BaseURL string

	// Timeout bounds one model attempt, retries included. Zero disables it.
	Timeout time.Duration
	Retry   RetryConfig
}

// RetryConfig configures retries against a single model.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

var defaultModels = map[string]string{
	ProviderGemini:     DefaultGeminiModels[0],
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderAnthropic:  "claude-haiku",
	ProviderOpenRouter: "google/gemini-2.0-flash-001",
}

// keyVars are the conventional key variables of each backend, in the order
// DiscoverKey probes them.
var keyVars = []struct{ provider, name string }{
	{ProviderGemini, "GEMINI_API_KEY"},
	{ProviderOpenAI, "OPENAI_API_KEY"},
	{ProviderAnthropic, "ANTHROPIC_API_KEY"},
	{ProviderOpenRouter, "OPENROUTER_API_KEY"},
}

// DefaultConfig uses Gemini with the full model fallback list, a 60 second
// attempt timeout and one retry.
func DefaultConfig() Config {
	return Config{
		Provider:       ProviderGemini,
		FallbackModels: slices.Clone(DefaultGeminiModels[1:]),
		Timeout:        60 * time.Second,
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
	}
}

// DiscoverKey returns the first conventional key variable that is set and
// the backend it belongs to. A non-empty provider only looks at its own
// variable.
func DiscoverKey(provider string) (string, string, bool) {
	for _, v := range keyVars {
		if provider != "" && provider != v.provider {
			continue
		}
		if key := CleanAPIKey(os.Getenv(v.name)); key != "" {
			return v.provider, key, true
		}
	}
	return "", "", false
}

// Validate checks the backend name and that it has a key.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderMock:
		return nil
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter:
	default:
		return fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
	if CleanAPIKey(c.APIKey) == "" {
		var hint string
		for _, v := range keyVars {
			if v.provider == c.Provider {
				hint = " or " + v.name
			}
		}
		return fmt.Errorf("%s provider needs an API key: set llm.api_key, MODULAJAR_API_KEY%s", c.Provider, hint)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// Models lists the primary model followed by the fallbacks, without blanks
// or duplicates.
func (c Config) Models() []string {
	primary := c.Model
	if primary == "" {
		primary = defaultModels[c.Provider]
	}

	var out []string
	for _, m := range append([]string{primary}, c.FallbackModels...) {
		m = strings.TrimSpace(m)
		if m != "" && !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

// CleanAPIKey trims a pasted key and drops stray quotes and line breaks.
func CleanAPIKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n', '"', '\'':
			return -1
		}
		return r
	}, strings.TrimSpace(key))
}
