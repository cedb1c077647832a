// Package llm talks to the hosted models that write lesson plans. Every
// backend answers a single prompt with JSON that matches a schema; the
// decorators in this package add retries, model fallback and request
// recording on top.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one structured answer per call.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model the provider sends requests to.
	ModelID() string
}

// Request is a single-turn prompt.
type Request struct {
	System string
	Prompt string

	// Schema constrains the answer. Nil asks for free text, which is
	// returned as-is in Response.Content.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Schema is a named JSON Schema document.
type Schema struct {
	// Name is kebab-case, e.g. "lesson-plan". Backends that need a tool or
	// format name use it, and compiled schemas are cached under it.
	Name        string
	Description string
	Definition  map[string]any
}

// StopReason says why a model stopped writing.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is a validated answer.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	// Model is the model that actually answered, which may differ from the
	// configured alias.
	Model string
	Stop  StopReason
}

// Usage counts tokens for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total is input plus output tokens.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

type purposeKey struct{}

// WithPurpose labels the requests made with ctx, e.g. "rpp" or "lkpd". The
// label ends up in the request log and in usage statistics.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
