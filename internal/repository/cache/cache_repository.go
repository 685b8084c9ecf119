package cache

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/geostore-service/internal/domain/repository"
	"github.com/geostore-service/internal/pkg/errors"
)

// KeyPrefix отделяет ключи сервиса от прочих данных в общей Redis
const KeyPrefix = "geostore:"

// redisCache хранит сериализованные тайлы и сегменты маршрутов.
// Ошибки Redis оборачиваются в ErrCacheError; memoize их логирует и считает без кеша.
type redisCache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(r *Redis) repository.CacheRepository {
	return &redisCache{
		client: r.Client(),
		logger: r.logger.With(zap.String("cache", "redis")),
	}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, KeyPrefix+key).Bytes()
	switch {
	case stderrors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("%w: get %s: %v", errors.ErrCacheError, key, err)
	}
	return val, nil
}

// Set без TTL (ttl <= 0) хранит ключ бессрочно
func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, KeyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", errors.ErrCacheError, key, err)
	}
	c.logger.Debug("Cached", zap.String("key", key), zap.Int("bytes", len(value)), zap.Duration("ttl", ttl))
	return nil
}
