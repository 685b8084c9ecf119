package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/geostore-service/internal/domain/repository"
	"github.com/geostore-service/internal/pkg/metrics"
	"go.uber.org/zap"
)

// cachePolicy - явные параметры кеширования одного значения
type cachePolicy struct {
	Key     string
	Version int64
	TTL     time.Duration
	// Force пропускает чтение и перезаписывает значение (прогрев кеша)
	Force bool
}

func (p cachePolicy) versionedKey() string {
	return fmt.Sprintf("%s:v%d", p.Key, p.Version)
}

// memoize возвращает значение из кеша или вычисляет и сохраняет его.
// Ошибки кеша не фатальны: они логируются, а значение вычисляется напрямую.
// Второе возвращаемое значение - было ли попадание в кеш.
func memoize[T any](
	ctx context.Context,
	cache repository.CacheRepository,
	logger *zap.Logger,
	policy cachePolicy,
	compute func(ctx context.Context) (T, error),
) (T, bool, error) {
	key := policy.versionedKey()

	if !policy.Force {
		data, err := cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.CacheErrorsTotal.WithLabelValues("get").Inc()
			logger.Warn("Cache read failed, computing directly", zap.String("key", key), zap.Error(err))
		case data != nil:
			var cached T
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, true, nil
			}
			metrics.CacheErrorsTotal.WithLabelValues("decode").Inc()
			logger.Warn("Corrupted cache entry, recomputing", zap.String("key", key))
		}
	}

	value, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		logger.Error("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return value, false, nil
	}
	if err := cache.Set(ctx, key, data, policy.TTL); err != nil {
		metrics.CacheErrorsTotal.WithLabelValues("set").Inc()
		logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}

	return value, false, nil
}
