// Package memory - кеш в памяти процесса для запуска без Redis (CACHE_BACKEND=memory)
package memory

import (
	"context"
	"time"

	"github.com/geostore-service/internal/domain/repository"
	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
)

// Cache - ttlcache с ограничением по числу записей; истекшие записи вычищаются фоновой горутиной
type Cache struct {
	items  *ttlcache.Cache[string, []byte]
	logger *zap.Logger
}

// NewCache создает кеш и запускает очистку; Close останавливает ее
func NewCache(capacity uint64, logger *zap.Logger) *Cache {
	opts := []ttlcache.Option[string, []byte]{
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []byte](capacity))
	}

	items := ttlcache.New[string, []byte](opts...)
	go items.Start()

	logger.Info("In-memory cache started", zap.Uint64("capacity", capacity))
	return &Cache{items: items, logger: logger}
}

func (c *Cache) Close() error {
	c.items.Stop()
	return nil
}

// Repository возвращает кеш как repository.CacheRepository
func (c *Cache) Repository() repository.CacheRepository {
	return c
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	item := c.items.Get(key)
	if item == nil {
		return nil, nil // Cache miss
	}
	return item.Value(), nil
}

func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	c.items.Set(key, value, ttl)
	return nil
}
