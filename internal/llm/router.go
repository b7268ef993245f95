package llm

import (
	"context"
	"fmt"
	"time"

	"prompt-server/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Completer - один LLM провайдер: отправляет готовый промпт и возвращает текст ответа.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float32) (string, error)
}

// Result - итог одного вызова провайдера. Ошибка провайдера всегда приходит
// здесь как *models.ProviderError, а не паникой или сырой транспортной ошибкой.
type Result struct {
	Text string
	Err  error
}

// OK сообщает, что вызов завершился без ошибки.
func (r Result) OK() bool { return r.Err == nil }

// Router выбирает обработчик по закрытому набору тегов провайдеров.
// Неизвестные теги уходят в OpenAI-совместимый обработчик по умолчанию.
type Router struct {
	openai   Completer
	deepseek Completer
	gemini   Completer
	claude   Completer
	timeout  time.Duration
	logger   *zap.Logger
}

// NewRouter creates a Router. Only the four known tags are taken from handlers;
// a tag without a handler answers with NotConfigured. timeout <= 0 disables the per-call deadline.
func NewRouter(handlers map[models.Provider]Completer, timeout time.Duration, logger *zap.Logger) *Router {
	return &Router{
		openai:   handlers[models.ProviderOpenAI],
		deepseek: handlers[models.ProviderDeepSeek],
		gemini:   handlers[models.ProviderGemini],
		claude:   handlers[models.ProviderClaude],
		timeout:  timeout,
		logger:   logger.Named("LLMRouter"),
	}
}

// Resolve возвращает тег, который реально обслужит запрос.
func (r *Router) Resolve(provider models.Provider) models.Provider {
	switch provider {
	case models.ProviderOpenAI, models.ProviderDeepSeek, models.ProviderGemini, models.ProviderClaude:
		return provider
	default:
		return models.ProviderOpenAI
	}
}

// handlerFor - единственное место диспетчеризации: один обработчик на тег, явный default.
func (r *Router) handlerFor(served models.Provider) Completer {
	switch served {
	case models.ProviderDeepSeek:
		return r.deepseek
	case models.ProviderGemini:
		return r.gemini
	case models.ProviderClaude:
		return r.claude
	default:
		return r.openai
	}
}

// Configured сообщает, есть ли обработчик для тега (с учётом fallback).
func (r *Router) Configured(provider models.Provider) bool {
	return r.handlerFor(r.Resolve(provider)) != nil
}

// Complete отправляет промпт выбранному провайдеру. Без ретраев.
func (r *Router) Complete(ctx context.Context, provider models.Provider, prompt string, temperature float32) (res Result) {
	served := r.Resolve(provider)
	log := r.logger.With(zap.String("provider", string(served)))
	if served != provider {
		log.Debug("Unknown provider tag, using default handler", zap.String("requested", string(provider)))
	}

	handler := r.handlerFor(served)
	if handler == nil {
		llmRequestsTotal.With(prometheus.Labels{"provider": string(served), "status": string(models.ProviderErrNotConfigured)}).Inc()
		return Result{Err: &models.ProviderError{Provider: served, Kind: models.ProviderErrNotConfigured, Err: models.ErrProviderNotConfigured}}
	}

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			log.Error("Provider handler panicked", zap.Any("panic", p))
			res = Result{Err: &models.ProviderError{Provider: served, Kind: models.ProviderErrGeneric, Err: fmt.Errorf("panic: %v", p)}}
		}
		status := "success"
		if res.Err != nil {
			if perr, ok := res.Err.(*models.ProviderError); ok {
				status = string(perr.Kind)
			}
		}
		llmRequestsTotal.With(prometheus.Labels{"provider": string(served), "status": status}).Inc()
		llmRequestDuration.With(prometheus.Labels{"provider": string(served)}).Observe(time.Since(start).Seconds())
	}()

	text, err := handler.Complete(callCtx, prompt, temperature)
	if err != nil {
		perr := classifyError(served, err)
		log.Warn("Provider call failed", zap.String("kind", string(perr.Kind)), zap.Duration("duration", time.Since(start)), zap.Error(err))
		return Result{Err: perr}
	}
	if text == "" {
		log.Warn("Provider returned empty text")
		return Result{Err: &models.ProviderError{Provider: served, Kind: models.ProviderErrEmptyResponse, Err: models.ErrEmptyProviderResponse}}
	}
	log.Debug("Provider call succeeded", zap.Duration("duration", time.Since(start)), zap.Int("responseLen", len(text)))
	return Result{Text: text}
}
