package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const openRouterURL = "https://openrouter.ai/api/v1"

// OpenAIProvider talks to the Chat Completions API of OpenAI or of a
// compatible gateway such as OpenRouter.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider builds a provider for model. An empty baseURL uses the
// public OpenAI API.
func NewOpenAIProvider(apiKey, model, baseURL string) (*OpenAIProvider, error) {
	key := CleanAPIKey(apiKey)
	if key == "" {
		return nil, errors.New("openai: API key is required")
	}
	cfg := openai.DefaultConfig(key)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

// NewOpenRouterProvider is an OpenAIProvider pointed at OpenRouter. Model
// IDs keep their vendor prefix, e.g. "google/gemini-2.0-flash-001".
func NewOpenRouterProvider(apiKey, model, baseURL string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = openRouterURL
	}
	p, err := NewOpenAIProvider(apiKey, model, baseURL)
	if err != nil {
		return nil, fmt.Errorf("openrouter: %w", err)
	}
	return p, nil
}

func (p *OpenAIProvider) withModel(model string) Provider {
	return &OpenAIProvider{client: p.client, model: model}
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	chat := openai.ChatCompletionRequest{
		Model:               p.model,
		Messages:            messages,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("marshal schema %s: %w", req.Schema.Name, err)
		}
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: json.RawMessage(def),
				// Lesson schemas have optional fields, which strict mode rejects.
				Strict: false,
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		var apiErr *openai.APIError
		var reqErr *openai.RequestError
		switch {
		case errors.As(err, &apiErr):
			return nil, fromStatus(apiErr.HTTPStatusCode, apiErr.Message, "", err)
		case errors.As(err, &reqErr):
			return nil, fromStatus(reqErr.HTTPStatusCode, reqErr.Error(), "", err)
		}
		return nil, &ErrProviderUnavailable{Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: errors.New("no choices in response")}
	}

	choice := resp.Choices[0]
	stop := StopEnd
	if choice.FinishReason == openai.FinishReasonLength {
		stop = StopMaxTokens
	}
	content, err := decodeAnswer(choice.Message.Content, stop, req.Schema)
	if err != nil {
		return nil, err
	}
	return &Response{
		Content: content,
		Usage:   Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens},
		Model:   resp.Model,
		Stop:    stop,
	}, nil
}

func (p *OpenAIProvider) ModelID() string {
	return p.model
}
