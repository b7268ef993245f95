package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"prompt-server/internal/interfaces"
	"prompt-server/internal/models"

	"go.uber.org/zap"
)

var _ interfaces.ResponseCache = (*hashResponseCache)(nil)

// Поля хеша кешированного ответа
const (
	cacheFieldPromptID     = "prompt_id"
	cacheFieldTranslations = "translations"
	cacheFieldError        = "error"
	cacheFieldProvider     = "provider"
	cacheFieldCreatedAt    = "created_at"
)

// hashResponseCache хранит ResponseLLM как хеш под ключом prefix+cache_key.
// Префикс не бывает пустым: ключи промптов живут в том же хранилище.
// Записи не истекают: TTL, если нужен, задаётся политикой хранилища.
type hashResponseCache struct {
	store  interfaces.HashStore
	prefix string
	logger *zap.Logger
}

// NewResponseCache creates a ResponseCache on top of a HashStore. A prefix that could
// collide with prompt keys (empty or digits only) is replaced with models.DefaultCacheKeyPrefix.
func NewResponseCache(store interfaces.HashStore, keyPrefix string, logger *zap.Logger) interfaces.ResponseCache {
	log := logger.Named("ResponseCache")
	if err := models.ValidateCacheKeyPrefix(keyPrefix); err != nil {
		log.Warn("Unsafe cache key prefix, using default",
			zap.String("prefix", keyPrefix),
			zap.String("default", models.DefaultCacheKeyPrefix),
			zap.Error(err),
		)
		keyPrefix = models.DefaultCacheKeyPrefix
	}
	return &hashResponseCache{
		store:  store,
		prefix: keyPrefix,
		logger: log,
	}
}

func (c *hashResponseCache) Get(ctx context.Context, key string) (*models.ResponseLLM, bool, error) {
	storeKey := c.prefix + key
	exists, err := c.store.Exists(ctx, storeKey)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check cache key %q: %w", key, err)
	}
	if !exists {
		return nil, false, nil
	}

	fields, err := c.store.HGetAll(ctx, storeKey)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache key %q: %w", key, err)
	}
	if len(fields) == 0 {
		// Ключ исчез между EXISTS и HGETALL
		return nil, false, nil
	}

	resp, err := decodeCachedResponse(fields)
	if err != nil {
		c.logger.Error("Cached response is corrupted", zap.String("cacheKey", key), zap.Error(err))
		return nil, false, err
	}
	return resp, true, nil
}

func (c *hashResponseCache) Put(ctx context.Context, key string, resp *models.ResponseLLM) error {
	translations := resp.Translations
	if translations == nil {
		translations = []string{}
	}
	encoded, err := json.Marshal(translations)
	if err != nil {
		return fmt.Errorf("failed to encode translations for cache key %q: %w", key, err)
	}

	fields := map[string]string{
		cacheFieldPromptID:     strconv.Itoa(resp.PromptID),
		cacheFieldTranslations: string(encoded),
		cacheFieldError:        resp.Error,
		cacheFieldProvider:     string(resp.Provider),
		cacheFieldCreatedAt:    resp.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if err := c.store.HSet(ctx, c.prefix+key, fields); err != nil {
		return fmt.Errorf("failed to write cache key %q: %w", key, err)
	}
	c.logger.Debug("Response cached", zap.String("cacheKey", key), zap.Int("translations", len(translations)), zap.Bool("hasError", resp.Error != ""))
	return nil
}

func decodeCachedResponse(fields map[string]string) (*models.ResponseLLM, error) {
	resp := &models.ResponseLLM{
		Error:    fields[cacheFieldError],
		Provider: models.Provider(fields[cacheFieldProvider]),
	}

	promptID, err := strconv.Atoi(fields[cacheFieldPromptID])
	if err != nil {
		return nil, fmt.Errorf("%w: prompt_id %q", models.ErrCorruptedCacheEntry, fields[cacheFieldPromptID])
	}
	resp.PromptID = promptID

	resp.Translations = []string{}
	if raw := fields[cacheFieldTranslations]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &resp.Translations); err != nil {
			return nil, fmt.Errorf("%w: translations: %v", models.ErrCorruptedCacheEntry, err)
		}
	}

	if raw := fields[cacheFieldCreatedAt]; raw != "" {
		createdAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: created_at %q", models.ErrCorruptedCacheEntry, raw)
		}
		resp.CreatedAt = createdAt
	}
	return resp, nil
}
