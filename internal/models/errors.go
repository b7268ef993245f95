package models

import (
	"errors"
	"fmt"
	"strings"
)

// Application-wide standard errors
var (
	ErrNotFound              = errors.New("resource not found")
	ErrBadRequest            = errors.New("bad request")
	ErrMalformedVersionLabel = errors.New("malformed version label")
	ErrVersionConflict       = errors.New("version label taken by concurrent writer")
	ErrTemplateRender        = errors.New("template render failed")
	ErrCorruptedCacheEntry   = errors.New("corrupted cache entry")

	// Provider errors
	ErrProviderNotConfigured = errors.New("provider is not configured")
	ErrEmptyProviderResponse = errors.New("provider returned empty response")
)

// ProviderErrorKind классифицирует сбой провайдера для поля error в ответе.
type ProviderErrorKind string

const (
	ProviderErrAPI           ProviderErrorKind = "APIError"
	ProviderErrRequest       ProviderErrorKind = "RequestError"
	ProviderErrTimeout       ProviderErrorKind = "Timeout"
	ProviderErrCanceled      ProviderErrorKind = "Canceled"
	ProviderErrEmptyResponse ProviderErrorKind = "EmptyResponse"
	ProviderErrNotConfigured ProviderErrorKind = "NotConfigured"
	ProviderErrGeneric       ProviderErrorKind = "Error"
)

// ProviderError - ошибка вызова конкретного провайдера.
type ProviderError struct {
	Provider Provider
	Kind     ProviderErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// FormatError превращает ошибку в строку для поля error ответа: "<Kind>: <message>".
// nil даёт пустую строку.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return strings.TrimSpace(fmt.Sprintf("%s: %s", perr.Kind, perr.Error()))
	}
	if errors.Is(err, ErrTemplateRender) {
		return strings.TrimSpace(fmt.Sprintf("TemplateError: %v", err))
	}
	return strings.TrimSpace(fmt.Sprintf("%s: %v", ProviderErrGeneric, err))
}
