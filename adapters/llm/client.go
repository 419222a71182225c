package llm

import (
	"context"
	"log"
	"strings"

	"finhypo/internal/errors"
	"finhypo/ports"

	openai "github.com/sashabaranov/go-openai"
)

// Config holds the settings the OpenAI client needs
type Config struct {
	APIKey  string
	BaseURL string
}

// OpenAIClient implements ports.LLMClient on the OpenAI chat
// completions API
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates the client; BaseURL overrides the default
// endpoint for compatible backends.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.ConfigInvalid("missing OpenAI API key")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = base
	}

	return &OpenAIClient{client: openai.NewClientWithConfig(clientCfg)}, nil
}

// ChatCompletion issues one completion call. Every failure path comes
// back as a MODEL_CLIENT_ERROR so callers can distinguish model
// failures from their own.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ports.CompletionRequest) (string, error) {
	if strings.TrimSpace(req.Model) == "" {
		return "", errors.InvalidInput("missing model")
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	log.Printf("[OpenAIClient] Sending completion request - model=%s, messages=%d, maxTokens=%d",
		req.Model, len(messages), maxTokens)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return "", errors.ModelClientError(req.Model, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.ModelClientError(req.Model, errors.New(errors.CodeModelClient, "response missing choices"))
	}
	return resp.Choices[0].Message.Content, nil
}
