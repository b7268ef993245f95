package llm

import (
	"prompt-server/internal/config"
	"prompt-server/internal/models"

	"go.uber.org/zap"
)

// NewRouterFromConfig собирает Router из конфигурации. Провайдеры без API ключа
// не регистрируются и отвечают NotConfigured.
func NewRouterFromConfig(cfg *config.Config, logger *zap.Logger) *Router {
	handlers := make(map[models.Provider]Completer, len(models.KnownProviders))
	for _, provider := range models.KnownProviders {
		pc := cfg.Provider(provider)
		if pc.APIKey == "" {
			logger.Warn("LLM provider has no API key, requests to it will fail", zap.String("provider", string(provider)))
			continue
		}
		switch provider {
		case models.ProviderClaude:
			handlers[provider] = NewAnthropicClient(pc, cfg.MaxTokens, logger)
		default:
			handlers[provider] = NewOpenAICompatClient(provider, pc, cfg.MaxTokens, logger)
		}
		logger.Info("LLM provider configured", zap.String("provider", string(provider)), zap.String("model", pc.Model))
	}
	return NewRouter(handlers, cfg.ProviderTimeout, logger)
}
