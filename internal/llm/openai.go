package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// OpenRouter OpenAI-compatible endpoint
	OpenRouterEndpoint = "https://openrouter.ai/api/v1"

	// Default model
	ModelDeepSeekFree = "deepseek/deepseek-chat-v3-0324:free"
)

// OpenAIConfig holds the configuration for an OpenAI-compatible provider.
type OpenAIConfig struct {
	Name     string
	APIKey   string
	Endpoint string
	Model    string
}

// OpenAIProvider wraps the OpenAI SDK configured for any compatible API.
type OpenAIProvider struct {
	client *openai.Client
	name   string
	model  string
}

// NewOpenAIProvider creates a new OpenAI-compatible provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.Endpoint == "" {
		cfg.Endpoint = OpenRouterEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = ModelDeepSeekFree
	}
	if cfg.Name == "" {
		cfg.Name = "openai"
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.Endpoint

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		name:   cfg.Name,
		model:  cfg.Model,
	}
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return p.name }

// Complete implements Provider with a single user message. JSONOnly maps
// to the json_object response format.
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: req.Prompt,
		}},
		Temperature: req.Temperature,
	}

	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}

	if req.JSONOnly {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	log.Debug().
		Str("provider", p.name).
		Str("model", p.model).
		Bool("json_mode", req.JSONOnly).
		Msg("Sending chat request")

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("%s chat completion failed: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices in response", p.name)
	}

	choice := resp.Choices[0]
	log.Debug().
		Str("provider", p.name).
		Str("finish_reason", string(choice.FinishReason)).
		Int("tokens", resp.Usage.TotalTokens).
		Msg("Chat completion received")

	if strings.TrimSpace(choice.Message.Content) == "" {
		return "", fmt.Errorf("%s: %w", p.name, ErrEmptyCompletion)
	}
	return choice.Message.Content, nil
}
