package llm

import (
	"context"
	"errors"
	"net"

	"prompt-server/internal/models"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
)

// classifyError переводит ошибку SDK или транспорта в *models.ProviderError.
func classifyError(provider models.Provider, err error) *models.ProviderError {
	var perr *models.ProviderError
	if errors.As(err, &perr) {
		return perr
	}
	return &models.ProviderError{Provider: provider, Kind: errorKind(err), Err: err}
}

func errorKind(err error) models.ProviderErrorKind {
	var (
		oaAPI  *openai.APIError
		oaReq  *openai.RequestError
		anAPI  *anthropic.APIError
		anReq  *anthropic.RequestError
		netErr net.Error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.ProviderErrTimeout
	case errors.Is(err, context.Canceled):
		return models.ProviderErrCanceled
	case errors.Is(err, models.ErrProviderNotConfigured):
		return models.ProviderErrNotConfigured
	case errors.Is(err, models.ErrEmptyProviderResponse):
		return models.ProviderErrEmptyResponse
	case errors.As(err, &oaAPI), errors.As(err, &anAPI):
		return models.ProviderErrAPI
	case errors.As(err, &oaReq), errors.As(err, &anReq):
		return models.ProviderErrRequest
	case errors.As(err, &netErr) && netErr.Timeout():
		return models.ProviderErrTimeout
	case errors.As(err, &netErr):
		return models.ProviderErrRequest
	default:
		return models.ProviderErrGeneric
	}
}
