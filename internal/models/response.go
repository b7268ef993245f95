package models

import (
	"strings"
	"time"
)

// Provider - тег LLM провайдера. Набор закрытый, неизвестные теги обслуживаются
// OpenAI-совместимым обработчиком по умолчанию.
type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderDeepSeek Provider = "deepseek"
	ProviderGemini   Provider = "gemini"
	ProviderClaude   Provider = "claude"
)

// KnownProviders перечисляет все поддерживаемые теги.
var KnownProviders = []Provider{ProviderOpenAI, ProviderDeepSeek, ProviderGemini, ProviderClaude}

// ParseProvider нормализует тег из запроса. Пустой тег превращается в openai,
// неизвестный возвращается как есть (в нижнем регистре) - его эхо уходит в ответ.
func ParseProvider(raw string) Provider {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if tag == "" {
		return ProviderOpenAI
	}
	return Provider(tag)
}

// IsKnown сообщает, входит ли тег в закрытый набор.
func (p Provider) IsKnown() bool {
	for _, known := range KnownProviders {
		if p == known {
			return true
		}
	}
	return false
}

// Exclude описывает термины, которые провайдер должен оставить без изменений.
type Exclude struct {
	Exception     string   `json:"exception"`
	ExceptionList []string `json:"exception_list"`
}

// QueryRequest - входные данные для render-and-dispatch.
type QueryRequest struct {
	PromptID    int
	Version     int // Отрицательное значение означает последнюю версию
	LangAbbr    string
	Provider    Provider
	CacheKey    string
	Text        string
	Context     string
	Exclude     Exclude
	Variants    int
	Temperature float32
}

// ResponseLLM - результат запроса к провайдеру. Также хранится в кеше.
type ResponseLLM struct {
	PromptID     int       `json:"prompt_id"`
	Translations []string  `json:"translations"`
	Error        string    `json:"error"`
	Provider     Provider  `json:"provider"`
	CreatedAt    time.Time `json:"created_at"`
}
