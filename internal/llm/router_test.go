package llm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"prompt-server/internal/llm"
	"prompt-server/internal/mocks"
	"prompt-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRouter_Dispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Known tag goes to its handler", func(t *testing.T) {
		openaiMock := mocks.NewMockCompleter(t)
		claudeMock := mocks.NewMockCompleter(t)
		router := llm.NewRouter(map[models.Provider]llm.Completer{
			models.ProviderOpenAI: openaiMock,
			models.ProviderClaude: claudeMock,
		}, 0, zap.NewNop())

		claudeMock.On("Complete", mock.Anything, "Translate: Hi", float32(0.2)).Return("Hola", nil).Once()

		res := router.Complete(ctx, models.ProviderClaude, "Translate: Hi", 0.2)
		assert.True(t, res.OK())
		assert.Equal(t, "Hola", res.Text)
		openaiMock.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown tag falls back to openai", func(t *testing.T) {
		openaiMock := mocks.NewMockCompleter(t)
		router := llm.NewRouter(map[models.Provider]llm.Completer{models.ProviderOpenAI: openaiMock}, 0, zap.NewNop())

		openaiMock.On("Complete", mock.Anything, "p", float32(0.5)).Return("ok", nil).Once()

		res := router.Complete(ctx, models.Provider("mistral"), "p", 0.5)
		require.NoError(t, res.Err)
		assert.Equal(t, "ok", res.Text)
		assert.Equal(t, models.ProviderOpenAI, router.Resolve("mistral"))
	})

	t.Run("Handlers outside the closed tag set are ignored", func(t *testing.T) {
		mistral := mocks.NewMockCompleter(t)
		router := llm.NewRouter(map[models.Provider]llm.Completer{models.Provider("mistral"): mistral}, 0, zap.NewNop())

		res := router.Complete(ctx, models.Provider("mistral"), "p", 0.5)
		var perr *models.ProviderError
		require.True(t, errors.As(res.Err, &perr))
		assert.Equal(t, models.ProviderErrNotConfigured, perr.Kind)
		assert.Equal(t, models.ProviderOpenAI, perr.Provider)
		assert.False(t, router.Configured(models.Provider("mistral")))
		mistral.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Missing handler is NotConfigured", func(t *testing.T) {
		router := llm.NewRouter(map[models.Provider]llm.Completer{}, 0, zap.NewNop())

		res := router.Complete(ctx, models.ProviderGemini, "p", 0.5)
		require.Error(t, res.Err)
		var perr *models.ProviderError
		require.True(t, errors.As(res.Err, &perr))
		assert.Equal(t, models.ProviderErrNotConfigured, perr.Kind)
		assert.Equal(t, models.ProviderGemini, perr.Provider)
		assert.False(t, router.Configured(models.ProviderGemini))
	})

	t.Run("Empty text is EmptyResponse", func(t *testing.T) {
		m := mocks.NewMockCompleter(t)
		router := llm.NewRouter(map[models.Provider]llm.Completer{models.ProviderDeepSeek: m}, 0, zap.NewNop())
		m.On("Complete", mock.Anything, "p", float32(1)).Return("", nil).Once()

		res := router.Complete(ctx, models.ProviderDeepSeek, "p", 1)
		var perr *models.ProviderError
		require.True(t, errors.As(res.Err, &perr))
		assert.Equal(t, models.ProviderErrEmptyResponse, perr.Kind)
		assert.Equal(t, "EmptyResponse: deepseek: provider returned empty response", models.FormatError(res.Err))
	})

	t.Run("Handler error is wrapped as ProviderError", func(t *testing.T) {
		m := mocks.NewMockCompleter(t)
		router := llm.NewRouter(map[models.Provider]llm.Completer{models.ProviderOpenAI: m}, 0, zap.NewNop())
		m.On("Complete", mock.Anything, "p", float32(0)).Return("", errors.New("boom")).Once()

		res := router.Complete(ctx, models.ProviderOpenAI, "p", 0)
		assert.False(t, res.OK())
		assert.Equal(t, "Error: openai: boom", models.FormatError(res.Err))
	})

	t.Run("Panic is converted to an error result", func(t *testing.T) {
		m := mocks.NewMockCompleter(t)
		router := llm.NewRouter(map[models.Provider]llm.Completer{models.ProviderOpenAI: m}, 0, zap.NewNop())
		m.On("Complete", mock.Anything, "p", float32(0)).Run(func(mock.Arguments) {
			panic("sdk exploded")
		}).Return("", nil).Once()

		var res llm.Result
		assert.NotPanics(t, func() {
			res = router.Complete(ctx, models.ProviderOpenAI, "p", 0)
		})
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), "sdk exploded")
	})

	t.Run("Timeout is applied to the call", func(t *testing.T) {
		m := mocks.NewMockCompleter(t)
		router := llm.NewRouter(map[models.Provider]llm.Completer{models.ProviderOpenAI: m}, 20*time.Millisecond, zap.NewNop())
		m.On("Complete", mock.Anything, "p", float32(0)).Return("", func(ctx context.Context, _ string, _ float32) error {
			<-ctx.Done()
			return ctx.Err()
		}).Once()

		res := router.Complete(ctx, models.ProviderOpenAI, "p", 0)
		var perr *models.ProviderError
		require.True(t, errors.As(res.Err, &perr))
		assert.Equal(t, models.ProviderErrTimeout, perr.Kind)
	})
}
