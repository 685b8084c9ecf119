// Package app собирает репозитории и use cases из конфигурации;
// общий для cmd/api, cmd/worker и cmd/geostore.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/geostore-service/internal/config"
	"github.com/geostore-service/internal/domain/repository"
	"github.com/geostore-service/internal/repository/cache"
	"github.com/geostore-service/internal/repository/memory"
	"github.com/geostore-service/internal/repository/postgres"
	redisRepo "github.com/geostore-service/internal/repository/redis"
	"github.com/geostore-service/internal/usecase"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options - что нужно конкретному бинарнику
type Options struct {
	// Stream требует Redis для очереди задач прогрева даже при CACHE_BACKEND=memory
	Stream bool
}

// App - подключения и собранные use cases
type App struct {
	Config *config.Store
	Logger *zap.Logger

	DB     *postgres.DB
	Redis  *cache.Redis  // nil без Redis
	Memory *memory.Cache // nil при CACHE_BACKEND=redis

	Cache  repository.CacheRepository
	Stream repository.StreamRepository // nil без Redis

	Zoom       *usecase.ZoomUseCase
	Tiles      *usecase.TileUseCase
	Routing    *usecase.RoutingUseCase
	Processing *usecase.ProcessingUseCase
}

// New подключается к PostgreSQL и выбранному бэкенду кеша
func New(ctx context.Context, store *config.Store, logger *zap.Logger, opts Options) (*App, error) {
	cfg := store.Current()
	a := &App{Config: store, Logger: logger}

	db, err := postgres.New(&cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	a.DB = db

	if cfg.Cache.Backend == BackendRedis || opts.Stream {
		r, err := cache.NewRedis(&cfg.Redis, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Redis = r
		a.Stream = redisRepo.NewStreamRepository(r.Client(), cfg.Worker.StreamReadTimeout, logger)
	}

	switch cfg.Cache.Backend {
	case BackendRedis:
		a.Cache = cache.NewCacheRepository(a.Redis)
	case BackendMemory:
		a.Memory = memory.NewCache(cfg.Cache.MemoryCapacity, logger)
		a.Cache = a.Memory.Repository()
	default:
		a.Close()
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q (expected %s or %s)", cfg.Cache.Backend, BackendRedis, BackendMemory)
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.DB.Health(healthCtx); err != nil {
		a.Close()
		return nil, fmt.Errorf("postgres health check failed: %w", err)
	}

	layerRepo := postgres.NewLayerRepository(db)
	tileRepo := postgres.NewTileRepository(db, cfg.Tile.Width, cfg.Tile.ExtentRatio)
	routingRepo := postgres.NewRoutingRepository(db)
	processingRepo := postgres.NewProcessingRepository(db)

	a.Zoom = usecase.NewZoomUseCase(layerRepo, cfg.TileExtent(), logger)
	a.Tiles = usecase.NewTileUseCase(layerRepo, tileRepo, a.Cache, a.Stream, a.Zoom, store, logger)
	a.Routing = usecase.NewRoutingUseCase(layerRepo, routingRepo, a.Cache, store, logger)
	a.Processing = usecase.NewProcessingUseCase(layerRepo, processingRepo, logger)

	logger.Info("Application initialized",
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("stream", a.Stream != nil),
	)
	return a, nil
}

// Close закрывает все открытые подключения
func (a *App) Close() {
	if a.Memory != nil {
		_ = a.Memory.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}
}
