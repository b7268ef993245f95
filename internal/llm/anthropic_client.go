package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"prompt-server/internal/config"
	"prompt-server/internal/models"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// anthropicClient реализует Completer через Anthropic Messages API.
type anthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// NewAnthropicClient creates a Completer for claude.
func NewAnthropicClient(cfg config.ProviderConfig, maxTokens int, logger *zap.Logger) Completer {
	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}
	return &anthropicClient{
		client:    anthropic.NewClient(cfg.APIKey, opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
		logger:    logger.Named("AnthropicClient").With(zap.String("model", cfg.Model)),
	}
}

func (c *anthropicClient) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	startTime := time.Now()
	c.logger.Debug("Sending messages request", zap.Int("promptBytes", len(prompt)), zap.Float32("temperature", temperature))

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		Messages:    []anthropic.Message{anthropic.NewUserTextMessage(prompt)},
		MaxTokens:   c.maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", err
	}

	observePromptTokens(string(models.ProviderClaude), c.model, prompt, resp.Usage.InputTokens)

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			sb.WriteString(*block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: no text blocks from %s", models.ErrEmptyProviderResponse, c.model)
	}

	c.logger.Debug("Messages response received",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("inputTokens", resp.Usage.InputTokens),
		zap.Int("outputTokens", resp.Usage.OutputTokens),
	)
	return sb.String(), nil
}
