package database

import (
	"context"
	"errors"
	"fmt"

	"prompt-server/internal/interfaces"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check to ensure RedisHashStore implements HashStore
var _ interfaces.HashStore = (*RedisHashStore)(nil)

// hscanBatch - подсказка COUNT для HSCAN.
const hscanBatch = 100

// RedisHashStore реализует HashStore поверх Redis хешей.
type RedisHashStore struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewRedisHashStore creates a new Redis-backed HashStore.
func NewRedisHashStore(client redis.UniversalClient, logger *zap.Logger) *RedisHashStore {
	return &RedisHashStore{
		client: client,
		logger: logger.Named("RedisHashStore"),
	}
}

func (s *RedisHashStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		s.logger.Error("Failed to check key existence in redis", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("redis EXISTS %s: %w", key, err)
	}
	return n > 0, nil
}

func (s *RedisHashStore) HGet(ctx context.Context, key, field string) (string, bool, error) {
	val, err := s.client.HGet(ctx, key, field).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		s.logger.Error("Failed to get hash field from redis", zap.String("key", key), zap.String("field", field), zap.Error(err))
		return "", false, fmt.Errorf("redis HGET %s %s: %w", key, field, err)
	}
	return val, true, nil
}

func (s *RedisHashStore) HSet(ctx context.Context, key string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(values)*2)
	for field, value := range values {
		args = append(args, field, value)
	}
	if err := s.client.HSet(ctx, key, args...).Err(); err != nil {
		s.logger.Error("Failed to set hash fields in redis", zap.String("key", key), zap.Int("fields", len(values)), zap.Error(err))
		return fmt.Errorf("redis HSET %s: %w", key, err)
	}
	return nil
}

func (s *RedisHashStore) HSetNX(ctx context.Context, key, field, value string) (bool, error) {
	ok, err := s.client.HSetNX(ctx, key, field, value).Result()
	if err != nil {
		s.logger.Error("Failed to set hash field (NX) in redis", zap.String("key", key), zap.String("field", field), zap.Error(err))
		return false, fmt.Errorf("redis HSETNX %s %s: %w", key, field, err)
	}
	return ok, nil
}

func (s *RedisHashStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	values, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		s.logger.Error("Failed to get all hash fields from redis", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("redis HGETALL %s: %w", key, err)
	}
	return values, nil
}

func (s *RedisHashStore) HScan(ctx context.Context, key string) interfaces.HashIterator {
	return &redisHashIterator{
		key: key,
		it:  s.client.HScan(ctx, key, 0, "", hscanBatch).Iterator(),
	}
}

// redisHashIterator склеивает плоский поток HSCAN (поле, значение, поле, ...) в пары.
type redisHashIterator struct {
	key   string
	it    *redis.ScanIterator
	field string
	value string
	err   error
}

func (i *redisHashIterator) Next(ctx context.Context) bool {
	if i.err != nil || !i.it.Next(ctx) {
		return false
	}
	field := i.it.Val()
	if !i.it.Next(ctx) {
		if i.it.Err() == nil {
			i.err = fmt.Errorf("redis HSCAN %s: field %q without value", i.key, field)
		}
		return false
	}
	i.field = field
	i.value = i.it.Val()
	return true
}

func (i *redisHashIterator) Field() string { return i.field }
func (i *redisHashIterator) Value() string { return i.value }

func (i *redisHashIterator) Err() error {
	if i.err != nil {
		return i.err
	}
	if err := i.it.Err(); err != nil {
		return fmt.Errorf("redis HSCAN %s: %w", i.key, err)
	}
	return nil
}
