package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"prompt-server/internal/config"
	"prompt-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenAICompatClient_Complete(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"deepseek-chat",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Hola"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":5,"completion_tokens":1,"total_tokens":6}}`)
	}))
	defer srv.Close()

	client := NewOpenAICompatClient(models.ProviderDeepSeek, config.ProviderConfig{
		Model: "deepseek-chat", BaseURL: srv.URL + "/v1", APIKey: "sk-test",
	}, 256, zap.NewNop())

	text, err := client.Complete(context.Background(), "Translate: Hello", 0.4)
	require.NoError(t, err)
	assert.Equal(t, "Hola", text)
	assert.Equal(t, "deepseek-chat", gotBody["model"])
	assert.InDelta(t, 0.4, gotBody["temperature"], 1e-6)
	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, "Translate: Hello", messages[0].(map[string]any)["content"])
}

func TestOpenAICompatClient_Errors(t *testing.T) {
	t.Run("API error is classified", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":{"message":"rate limited","type":"rate_limit_error"}}`)
		}))
		defer srv.Close()

		client := NewOpenAICompatClient(models.ProviderOpenAI, config.ProviderConfig{Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1", APIKey: "k"}, 0, zap.NewNop())
		_, err := client.Complete(context.Background(), "p", 0)
		require.Error(t, err)

		perr := classifyError(models.ProviderOpenAI, err)
		assert.Equal(t, models.ProviderErrAPI, perr.Kind)
		assert.Contains(t, models.FormatError(perr), "rate limited")
	})

	t.Run("Empty choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[],
				"usage":{"prompt_tokens":3,"completion_tokens":0,"total_tokens":3}}`)
		}))
		defer srv.Close()

		client := NewOpenAICompatClient(models.ProviderOpenAI, config.ProviderConfig{Model: "m", BaseURL: srv.URL + "/v1", APIKey: "k"}, 0, zap.NewNop())
		_, err := client.Complete(context.Background(), "p", 0)
		assert.True(t, errors.Is(err, models.ErrEmptyProviderResponse))
	})
}

func TestAnthropicClient_Complete(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "claude-key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",
			"content":[{"type":"text","text":"Bon"},{"type":"text","text":"jour"}],
			"stop_reason":"end_turn","usage":{"input_tokens":9,"output_tokens":2}}`)
	}))
	defer srv.Close()

	client := NewAnthropicClient(config.ProviderConfig{Model: "claude-test", BaseURL: srv.URL + "/v1", APIKey: "claude-key"}, 512, zap.NewNop())

	text, err := client.Complete(context.Background(), "Translate: Hello", 0.7)
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", text)
	assert.Equal(t, "claude-test", gotBody["model"])
	assert.EqualValues(t, 512, gotBody["max_tokens"])
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind models.ProviderErrorKind
	}{
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), models.ProviderErrTimeout},
		{"canceled", context.Canceled, models.ProviderErrCanceled},
		{"not configured", models.ErrProviderNotConfigured, models.ProviderErrNotConfigured},
		{"empty", fmt.Errorf("%w: x", models.ErrEmptyProviderResponse), models.ProviderErrEmptyResponse},
		{"generic", errors.New("boom"), models.ProviderErrGeneric},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			perr := classifyError(models.ProviderGemini, tc.err)
			assert.Equal(t, tc.kind, perr.Kind)
			assert.Equal(t, models.ProviderGemini, perr.Provider)
			assert.ErrorIs(t, perr, tc.err)
		})
	}

	t.Run("Already classified error is kept", func(t *testing.T) {
		orig := &models.ProviderError{Provider: models.ProviderClaude, Kind: models.ProviderErrAPI, Err: errors.New("x")}
		assert.Same(t, orig, classifyError(models.ProviderOpenAI, fmt.Errorf("wrap: %w", orig)))
	})
}

func TestNewRouterFromConfig(t *testing.T) {
	cfg := &config.Config{
		OpenAIModel:  "gpt-4o-mini",
		OpenAIAPIKey: "k1",
		ClaudeModel:  "claude-test",
		ClaudeAPIKey: "k2",
		MaxTokens:    128,
	}
	router := NewRouterFromConfig(cfg, zap.NewNop())

	assert.True(t, router.Configured(models.ProviderOpenAI))
	assert.True(t, router.Configured(models.ProviderClaude))
	assert.False(t, router.Configured(models.ProviderDeepSeek))
	assert.False(t, router.Configured(models.ProviderGemini))
	// Неизвестный тег обслуживает openai
	assert.True(t, router.Configured(models.Provider("mistral")))
}

func TestEstimateTokens_OnlyUsesLoadedEncodings(t *testing.T) {
	// Без прогрева оценка не лезет в сеть и просто возвращает 0
	assert.Equal(t, 0, estimateTokens("model-never-warmed", "some prompt text"))
	assert.NotPanics(t, func() {
		observePromptTokens(string(models.ProviderGemini), "model-never-warmed", "some prompt text", 0)
	})
}
