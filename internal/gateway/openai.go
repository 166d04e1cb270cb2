package gateway

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/JaimeStill/clerk/internal/config"
)

// openAIProvider talks to any OpenAI-compatible chat endpoint, Yandex
// Foundation Models included.
type openAIProvider struct {
	llm   *openai.LLM
	model string
}

func NewOpenAI(cfg *config.GatewayConfig) (Provider, error) {
	model := cfg.ModelName()
	opts := []openai.Option{
		openai.WithToken(cfg.Token),
		openai.WithModel(model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return &openAIProvider{llm: llm, model: model}, nil
}

func (p *openAIProvider) Name() string {
	return config.ProviderOpenAI
}

func (p *openAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System),
		llms.TextParts(llms.ChatMessageTypeHuman, req.Input),
	}

	opts := []llms.CallOption{
		llms.WithModel(p.model),
		llms.WithTemperature(req.Temperature),
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.JSON {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := p.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", statusFromText(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}
