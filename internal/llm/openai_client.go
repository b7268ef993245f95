package llm

import (
	"context"
	"fmt"
	"time"

	"prompt-server/internal/config"
	"prompt-server/internal/models"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// openAICompatClient реализует Completer через go-openai. Обслуживает openai,
// а также deepseek и gemini через их OpenAI-совместимые эндпоинты.
type openAICompatClient struct {
	provider  models.Provider
	client    *openai.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// NewOpenAICompatClient creates a Completer for an OpenAI-compatible API.
func NewOpenAICompatClient(provider models.Provider, cfg config.ProviderConfig, maxTokens int, logger *zap.Logger) Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &openAICompatClient{
		provider:  provider,
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: maxTokens,
		logger:    logger.Named("OpenAICompatClient").With(zap.String("provider", string(provider)), zap.String("model", cfg.Model)),
	}
}

func (c *openAICompatClient) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	startTime := time.Now()
	c.logger.Debug("Sending chat completion request", zap.Int("promptBytes", len(prompt)), zap.Float32("temperature", temperature))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", err
	}

	observePromptTokens(string(c.provider), c.model, prompt, resp.Usage.PromptTokens)

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: no choices from %s", models.ErrEmptyProviderResponse, c.model)
	}

	c.logger.Debug("Chat completion received",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("promptTokens", resp.Usage.PromptTokens),
		zap.Int("completionTokens", resp.Usage.CompletionTokens),
	)
	return resp.Choices[0].Message.Content, nil
}
