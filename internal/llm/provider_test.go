package llm

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider_Queue(t *testing.T) {
	m := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		answer(`{"b":2}`),
	)

	resp, err := m.Generate(context.Background(), Request{System: "sys", Prompt: "first"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(resp.Content))
	assert.Equal(t, 15, resp.Usage.Total())
	assert.Equal(t, StopEnd, resp.Stop)
	assert.Equal(t, "mock", resp.Model)

	resp, err = m.Generate(context.Background(), Request{Prompt: "second"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":2}`, string(resp.Content))

	_, err = m.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)

	calls := m.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "sys", calls[0].System)
	assert.Equal(t, "second", calls[1].Prompt)
}

func TestMockProvider_OnPurpose(t *testing.T) {
	m := NewMockProvider(answer(`"queued"`)).
		OnPurpose("lkpd", answer(`"lkpd"`)).
		OnPurpose("assessment", failure(&ErrRateLimit{}))

	for range 2 {
		resp, err := m.Generate(WithPurpose(context.Background(), "lkpd"), Request{})
		require.NoError(t, err)
		assert.Equal(t, `"lkpd"`, string(resp.Content))
	}

	_, err := m.Generate(WithPurpose(context.Background(), "assessment"), Request{})
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)

	resp, err := m.Generate(WithPurpose(context.Background(), "materials"), Request{})
	require.NoError(t, err)
	assert.Equal(t, `"queued"`, string(resp.Content))

	assert.Equal(t, []string{"lkpd", "lkpd", "assessment", "materials"}, m.Purposes())
}

func TestPurpose(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", PurposeFrom(ctx))
	assert.Equal(t, "unknown", PurposeFrom(WithPurpose(ctx, "")))
	assert.Equal(t, "rpp", PurposeFrom(WithPurpose(ctx, "rpp")))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"mock needs no key", Config{Provider: ProviderMock}, ""},
		{"gemini with key", Config{Provider: ProviderGemini, APIKey: "AIza-test"}, ""},
		{"openrouter with key", Config{Provider: ProviderOpenRouter, APIKey: "sk-or"}, ""},
		{"quoted blank key", Config{Provider: ProviderOpenAI, APIKey: ` "" `}, "OPENAI_API_KEY"},
		{"anthropic without key", Config{Provider: ProviderAnthropic}, "ANTHROPIC_API_KEY"},
		{"unknown provider", Config{Provider: "ollama", APIKey: "x"}, `unknown LLM provider "ollama"`},
		{"negative timeout", Config{Provider: ProviderGemini, APIKey: "k", Timeout: -time.Second}, "timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_Models(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{"defaults", DefaultConfig(), DefaultGeminiModels},
		{"backend default", Config{Provider: ProviderOpenAI}, []string{"gpt-4o-mini"}},
		{
			"primary first, deduplicated",
			Config{Provider: ProviderGemini, Model: "gemini-1.5-pro", FallbackModels: []string{" gemini-1.5-flash ", "", "gemini-1.5-pro"}},
			[]string{"gemini-1.5-pro", "gemini-1.5-flash"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Models())
		})
	}
}

func TestDefaultConfig_DoesNotShareModels(t *testing.T) {
	c := DefaultConfig()
	c.FallbackModels[0] = "changed"
	assert.NotEqual(t, "changed", DefaultGeminiModels[1])
}

func TestDiscoverKey(t *testing.T) {
	for _, v := range keyVars {
		t.Setenv(v.name, "")
	}
	_, _, ok := DiscoverKey("")
	assert.False(t, ok)

	t.Setenv("ANTHROPIC_API_KEY", " 'sk-ant'\n")
	t.Setenv("OPENROUTER_API_KEY", "sk-or")

	prov, key, ok := DiscoverKey("")
	require.True(t, ok)
	assert.Equal(t, ProviderAnthropic, prov)
	assert.Equal(t, "sk-ant", key)

	prov, key, ok = DiscoverKey(ProviderOpenRouter)
	require.True(t, ok)
	assert.Equal(t, ProviderOpenRouter, prov)
	assert.Equal(t, "sk-or", key)

	_, _, ok = DiscoverKey(ProviderGemini)
	assert.False(t, ok)
}

func TestCleanAPIKey(t *testing.T) {
	assert.Equal(t, "AIzaSy123", CleanAPIKey("  \"AIzaSy123\"\r\n"))
	assert.Equal(t, "", CleanAPIKey(" '' "))
}

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model string
		want  *ModelCost
	}{
		{"gemini-1.5-flash", &ModelCost{0.075, 0.3}},
		{"models/gemini-2.0-flash-exp", &ModelCost{0.1, 0.4}},
		{"gemini-2.0-flash-lite-001", &ModelCost{0.075, 0.3}},
		{"google/gemini-2.0-flash-001", &ModelCost{0.1, 0.4}},
		{"claude-opus-4-5-20251101", &ModelCost{5, 25}},
		{"GPT-4o-mini-2024-07-18", &ModelCost{0.15, 0.6}},
		{"llama-3-70b", nil},
		{"mock", nil},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, LookupCost(tt.model))
		})
	}
}

func TestModelCost_Cost(t *testing.T) {
	c := ModelCost{Input: 1, Output: 4}
	assert.InDelta(t, 0.003, c.Cost(1000, 500), 1e-12)
	assert.Zero(t, c.Cost(0, 0))
}

func TestUsage_Total(t *testing.T) {
	assert.Equal(t, 7, Usage{InputTokens: 3, OutputTokens: 4}.Total())
	assert.Zero(t, Usage{}.Total())
}

