package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// fallbackEncoding используется, когда tiktoken не знает модель (deepseek, gemini, claude).
const fallbackEncoding = "cl100k_base"

var encodingCache sync.Map // model -> *tiktoken.Tiktoken

// estimateTokens оценивает число токенов текста. Только по уже загруженным
// кодировкам: 0, если WarmUpTokenizers для модели ещё не отработал.
func estimateTokens(model, text string) int {
	cached, ok := encodingCache.Load(model)
	if !ok {
		return 0
	}
	return len(cached.(*tiktoken.Tiktoken).Encode(text, nil, nil))
}

// WarmUpTokenizers загружает BPE словари для моделей. Первая загрузка идёт по сети,
// поэтому вызывается при старте, а не на пути запроса к провайдеру.
func WarmUpTokenizers(modelNames []string, logger *zap.Logger) {
	for _, model := range modelNames {
		if _, ok := encodingCache.Load(model); ok {
			continue
		}
		tke, err := tiktoken.EncodingForModel(model)
		if err != nil {
			tke, err = tiktoken.GetEncoding(fallbackEncoding)
			if err != nil {
				logger.Warn("Tokenizer unavailable, prompt token estimates disabled", zap.String("model", model), zap.Error(err))
				continue
			}
		}
		encodingCache.Store(model, tke)
		logger.Debug("Tokenizer loaded", zap.String("model", model))
	}
}

// observePromptTokens пишет метрику: reported, если API вернул usage, иначе оценку tiktoken.
func observePromptTokens(provider, model, prompt string, reported int) {
	tokens := reported
	if tokens <= 0 {
		tokens = estimateTokens(model, prompt)
	}
	if tokens > 0 {
		llmPromptTokens.With(prometheus.Labels{"provider": provider}).Observe(float64(tokens))
	}
}
