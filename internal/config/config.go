package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"prompt-server/internal/models"
	"prompt-server/internal/utils"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Хранилища, поддерживаемые STORE_BACKEND
const (
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"
)

// ProviderConfig - настройки одного LLM провайдера.
type ProviderConfig struct {
	Model   string
	BaseURL string
	// Секрет, читается из файла или env, без envconfig тега
	APIKey string
}

// Config holds the application configuration.
type Config struct {
	Env         string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	ServerPort  string `envconfig:"SERVER_PORT" default:"8000"`

	// Хранилище промптов и кеша ответов
	StoreBackend   string `envconfig:"STORE_BACKEND" default:"redis"`
	RedisAddr      string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB        int    `envconfig:"REDIS_DB" default:"0"`
	CacheKeyPrefix string `envconfig:"CACHE_KEY_PREFIX" default:"cache:"`
	// Секретное поле БЕЗ envconfig тега
	RedisPassword string `ignored:"true"`

	// Пустой URL отключает публикацию событий
	RabbitMQURL string `envconfig:"RABBITMQ_URL" default:""`

	// Dispatch
	ProviderTimeout    time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"60s"`
	MaxVariants        int           `envconfig:"MAX_VARIANTS" default:"10"`
	DefaultTemperature float32       `envconfig:"DEFAULT_TEMPERATURE" default:"0.3"`
	MaxTokens          int           `envconfig:"MAX_TOKENS" default:"4096"`

	OpenAIModel     string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBaseURL   string `envconfig:"OPENAI_BASE_URL" default:""`
	DeepSeekModel   string `envconfig:"DEEPSEEK_MODEL" default:"deepseek-chat"`
	DeepSeekBaseURL string `envconfig:"DEEPSEEK_BASE_URL" default:"https://api.deepseek.com/v1"`
	GeminiModel     string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	GeminiBaseURL   string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta/openai"`
	ClaudeModel     string `envconfig:"CLAUDE_MODEL" default:"claude-3-5-sonnet-20240620"`
	ClaudeBaseURL   string `envconfig:"CLAUDE_BASE_URL" default:""`

	// Ключи API - секреты БЕЗ envconfig тегов
	OpenAIAPIKey   string `ignored:"true"`
	DeepSeekAPIKey string `ignored:"true"`
	GeminiAPIKey   string `ignored:"true"`
	ClaudeAPIKey   string `ignored:"true"`

	// CORS Settings
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	origins := strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
	return origins
}

// Provider возвращает настройки провайдера по тегу. Неизвестный тег получает настройки openai.
func (c *Config) Provider(p models.Provider) ProviderConfig {
	switch p {
	case models.ProviderDeepSeek:
		return ProviderConfig{Model: c.DeepSeekModel, BaseURL: c.DeepSeekBaseURL, APIKey: c.DeepSeekAPIKey}
	case models.ProviderGemini:
		return ProviderConfig{Model: c.GeminiModel, BaseURL: c.GeminiBaseURL, APIKey: c.GeminiAPIKey}
	case models.ProviderClaude:
		return ProviderConfig{Model: c.ClaudeModel, BaseURL: c.ClaudeBaseURL, APIKey: c.ClaudeAPIKey}
	default:
		return ProviderConfig{Model: c.OpenAIModel, BaseURL: c.OpenAIBaseURL, APIKey: c.OpenAIAPIKey}
	}
}

// Validate проверяет значения, которые envconfig не может проверить сам.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreBackendRedis, StoreBackendMemory:
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q (want %q or %q)", c.StoreBackend, StoreBackendRedis, StoreBackendMemory)
	}
	if err := models.ValidateCacheKeyPrefix(c.CacheKeyPrefix); err != nil {
		return fmt.Errorf("invalid CACHE_KEY_PREFIX: %w", err)
	}
	if c.MaxVariants < 1 {
		return fmt.Errorf("MAX_VARIANTS must be positive, got %d", c.MaxVariants)
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %s", c.ProviderTimeout)
	}
	if c.DefaultTemperature < 0 || c.DefaultTemperature > 2 {
		return fmt.Errorf("DEFAULT_TEMPERATURE must be within [0, 2], got %v", c.DefaultTemperature)
	}
	return nil
}

// LoadConfig loads configuration from environment variables and secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			} else {
				log.Printf("Loaded configuration from %s", envFilePath)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	// Загружаем НЕсекретные переменные из окружения
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	// Все секреты необязательные: провайдер без ключа просто отвечает NotConfigured
	cfg.RedisPassword = utils.ReadSecretOrEnv("redis_password", "REDIS_PASSWORD")
	cfg.OpenAIAPIKey = utils.ReadSecretOrEnv("openai_api_key", "OPENAI_API_KEY")
	cfg.DeepSeekAPIKey = utils.ReadSecretOrEnv("deepseek_api_key", "DEEPSEEK_API_KEY")
	cfg.GeminiAPIKey = utils.ReadSecretOrEnv("gemini_api_key", "GEMINI_API_KEY")
	cfg.ClaudeAPIKey = utils.ReadSecretOrEnv("claude_api_key", "CLAUDE_API_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Println("Configuration loaded successfully.")
	return &cfg, nil
}
