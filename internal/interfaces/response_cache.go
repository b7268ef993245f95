package interfaces

import (
	"context"

	"prompt-server/internal/models"
)

// ResponseCache stores rendered provider responses under caller-supplied keys.
type ResponseCache interface {
	Get(ctx context.Context, key string) (*models.ResponseLLM, bool, error)
	Put(ctx context.Context, key string, resp *models.ResponseLLM) error
}
