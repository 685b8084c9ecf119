package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/geostore-service/internal/config"
	"github.com/geostore-service/internal/domain"
	"github.com/geostore-service/internal/domain/repository"
	"github.com/geostore-service/internal/pkg/errors"
	"github.com/geostore-service/internal/pkg/metrics"
	"github.com/geostore-service/internal/pkg/tilemath"
	"github.com/geostore-service/internal/usecase/dto"
)

type TileUseCase struct {
	layerRepo  repository.LayerRepository
	tileRepo   repository.TileRepository
	cacheRepo  repository.CacheRepository
	streamRepo repository.StreamRepository
	zoom       *ZoomUseCase
	cfg        *config.Store
	logger     *zap.Logger
	rnd        func() float64
}

// NewTileUseCase; streamRepo может быть nil - тогда прогрев выполняется в процессе
func NewTileUseCase(
	layerRepo repository.LayerRepository,
	tileRepo repository.TileRepository,
	cacheRepo repository.CacheRepository,
	streamRepo repository.StreamRepository,
	zoom *ZoomUseCase,
	cfg *config.Store,
	logger *zap.Logger,
) *TileUseCase {
	return &TileUseCase{
		layerRepo:  layerRepo,
		tileRepo:   tileRepo,
		cacheRepo:  cacheRepo,
		streamRepo: streamRepo,
		zoom:       zoom,
		cfg:        cfg,
		logger:     logger,
		rnd:        rand.Float64,
	}
}

// Layer находит слой по ID или имени
func (uc *TileUseCase) Layer(ctx context.Context, layerRef string) (*domain.Layer, error) {
	return resolveLayer(ctx, uc.layerRepo, layerRef)
}

// GetTile возвращает тайл слоя из кеша или генерирует его
func (uc *TileUseCase) GetTile(ctx context.Context, layerRef string, addr domain.TileAddress) (*domain.Tile, error) {
	if !tilemath.ValidTile(addr.X, addr.Y, addr.Z) {
		return nil, errors.ErrInvalidTileCoordinates.WithDetails(map[string]interface{}{
			"z": addr.Z, "x": addr.X, "y": addr.Y,
		})
	}

	layer, err := resolveLayer(ctx, uc.layerRepo, layerRef)
	if err != nil {
		return nil, err
	}

	tile, _, err := uc.tile(ctx, layer, addr, false)
	return tile, err
}

// tile - кешированная генерация; force перезаписывает запись в кеше
func (uc *TileUseCase) tile(ctx context.Context, layer *domain.Layer, addr domain.TileAddress, force bool) (*domain.Tile, bool, error) {
	settings, err := layer.TileSettings()
	if err != nil {
		return nil, false, err
	}
	params := domain.TileParams{
		PixelBuffer:      settings.PixelBuffer,
		FeaturesFilter:   settings.FeaturesFilter,
		PropertiesFilter: settings.PropertiesFilter,
		FeaturesLimit:    settings.FeaturesLimit,
	}

	version, err := uc.layerRepo.Version(ctx, layer.ID)
	if err != nil {
		uc.logger.Warn("Failed to get layer version, tile is not cached",
			zap.Int64("layer_id", layer.ID), zap.Error(err))
		tile, err := uc.tileRepo.EncodeTile(ctx, layer, addr, params)
		return tile, false, err
	}

	policy := cachePolicy{
		Key:     TileCacheKey(LayerCacheKey(layer), addr, params),
		Version: version,
		TTL:     TileTTL(uc.cfg.Current().Cache.TileBaseTTL, addr.Z, uc.rnd),
		Force:   force,
	}

	tile, hit, err := memoize(ctx, uc.cacheRepo, uc.logger, policy, func(ctx context.Context) (*domain.Tile, error) {
		start := time.Now()
		t, err := uc.tileRepo.EncodeTile(ctx, layer, addr, params)
		metrics.TileDurationMs.Observe(float64(time.Since(start).Milliseconds()))
		return t, err
	})
	if err != nil {
		return nil, false, err
	}

	if hit {
		metrics.TileCacheHitsTotal.Inc()
	} else {
		metrics.TileCacheMissesTotal.Inc()
	}
	return tile, hit, nil
}

// TileJSON описывает слой как источник векторных тайлов
func (uc *TileUseCase) TileJSON(ctx context.Context, layerRef, tilesURL string) (*domain.TileJSON, error) {
	layer, err := resolveLayer(ctx, uc.layerRepo, layerRef)
	if err != nil {
		return nil, err
	}

	minZoom, err := uc.zoom.MinZoom(ctx, layer)
	if err != nil {
		return nil, err
	}
	maxZoom, err := uc.zoom.MaxZoom(ctx, layer)
	if err != nil {
		return nil, err
	}

	ext, err := uc.layerRepo.Extent(ctx, layer.ID)
	if err != nil {
		return nil, err
	}
	bounds := [4]float64{-180, -85.05112878, 180, 85.05112878}
	if !ext.Empty {
		bounds = [4]float64{ext.Bound.Min.Lon(), ext.Bound.Min.Lat(), ext.Bound.Max.Lon(), ext.Bound.Max.Lat()}
	}
	center := orb.Bound{Min: orb.Point{bounds[0], bounds[1]}, Max: orb.Point{bounds[2], bounds[3]}}.Center()

	keys, err := uc.layerRepo.PropertyKeys(ctx, layer.ID)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(keys)+1)
	for _, k := range keys {
		fields[k] = "String"
	}
	fields["_id"] = "String"

	version, err := uc.layerRepo.Version(ctx, layer.ID)
	if err != nil {
		return nil, err
	}

	return &domain.TileJSON{
		TileJSON: "3.0.0",
		Name:     layer.Name,
		Tiles:    []string{tilesURL},
		MinZoom:  minZoom,
		MaxZoom:  maxZoom,
		Bounds:   bounds,
		Center:   [3]float64{center.Lon(), center.Lat(), float64(minZoom)},
		Version:  fmt.Sprintf("%d", version),
		VectorLayers: []domain.VectorLayer{{
			ID:      layer.Name,
			Fields:  fields,
			MinZoom: minZoom,
			MaxZoom: maxZoom,
		}},
	}, nil
}

// FillTilesCache принудительно пересчитывает и кладет в кеш все тайлы слоя
// (или всех слоев при пустом layerRef) в диапазоне зумов. Повторный запуск безопасен.
func (uc *TileUseCase) FillTilesCache(ctx context.Context, layerRef string, minZoom, maxZoom *int) (int, error) {
	var layers []*domain.Layer
	if layerRef == "" {
		all, err := uc.layerRepo.List(ctx)
		if err != nil {
			return 0, err
		}
		layers = all
	} else {
		layer, err := resolveLayer(ctx, uc.layerRepo, layerRef)
		if err != nil {
			return 0, err
		}
		layers = []*domain.Layer{layer}
	}

	total := 0
	for _, layer := range layers {
		n, err := uc.fillLayer(ctx, layer, minZoom, maxZoom)
		total += n
		if err != nil {
			return total, fmt.Errorf("layer %s: %w", layer.Name, err)
		}
	}
	return total, nil
}

func (uc *TileUseCase) fillLayer(ctx context.Context, layer *domain.Layer, minZoom, maxZoom *int) (int, error) {
	layerMin, err := uc.zoom.MinZoom(ctx, layer)
	if err != nil {
		return 0, err
	}
	layerMax, err := uc.zoom.MaxZoom(ctx, layer)
	if err != nil {
		return 0, err
	}
	job := domain.TileWarmJob{MinZoom: minZoom, MaxZoom: maxZoom}
	from, to := job.ZoomRange(layerMin, layerMax)

	ext, err := uc.layerRepo.Extent(ctx, layer.ID)
	if err != nil {
		return 0, err
	}
	if ext.Empty {
		uc.logger.Info("Layer is empty, nothing to warm", zap.String("layer", layer.Name))
		return 0, nil
	}

	uc.logger.Info("Filling tiles cache",
		zap.String("layer", layer.Name),
		zap.Int("minzoom", from),
		zap.Int("maxzoom", to),
	)

	warmed := 0
	for z := from; z <= to; z++ {
		tiles := tilemath.TilesInBounds(ext.Bound, z)
		for _, t := range tiles {
			if err := ctx.Err(); err != nil {
				return warmed, err
			}
			addr := domain.TileAddress{X: int(t.X), Y: int(t.Y), Z: z}
			if _, _, err := uc.tile(ctx, layer, addr, true); err != nil {
				return warmed, err
			}
			warmed++
			metrics.TilesWarmedTotal.Inc()
		}
		uc.logger.Info("Zoom level warmed",
			zap.String("layer", layer.Name),
			zap.Int("z", z),
			zap.Int("tiles", len(tiles)),
		)
	}
	return warmed, nil
}

// RequestWarm ставит задачу прогрева в очередь воркеров.
// Без очереди задача выполняется в фоне текущего процесса.
func (uc *TileUseCase) RequestWarm(ctx context.Context, layerRef string, req dto.WarmTilesRequest) (*dto.WarmTilesResponse, error) {
	job := domain.TileWarmJob{
		JobID:   uuid.New(),
		MinZoom: req.MinZoom,
		MaxZoom: req.MaxZoom,
	}
	if layerRef != "" {
		layer, err := resolveLayer(ctx, uc.layerRepo, layerRef)
		if err != nil {
			return nil, err
		}
		job.LayerID = layer.ID
	}

	if uc.streamRepo == nil {
		go func() {
			if err := uc.RunWarmJob(context.Background(), job); err != nil {
				uc.logger.Error("Background tile warming failed", zap.String("job_id", job.JobID.String()), zap.Error(err))
			}
		}()
		return &dto.WarmTilesResponse{JobID: job.JobID.String(), Queued: false}, nil
	}

	if err := uc.streamRepo.PublishToStream(ctx, uc.cfg.Current().Worker.Stream, job); err != nil {
		return nil, fmt.Errorf("publish warm job: %w", err)
	}
	uc.logger.Info("Tile warm job queued",
		zap.String("job_id", job.JobID.String()),
		zap.Int64("layer_id", job.LayerID),
	)
	return &dto.WarmTilesResponse{JobID: job.JobID.String(), Queued: true}, nil
}

// RunWarmJob выполняет задачу прогрева (воркер или фон API)
func (uc *TileUseCase) RunWarmJob(ctx context.Context, job domain.TileWarmJob) error {
	ref := ""
	if !job.AllLayers() {
		ref = fmt.Sprintf("%d", job.LayerID)
	}

	start := time.Now()
	n, err := uc.FillTilesCache(ctx, ref, job.MinZoom, job.MaxZoom)
	uc.logger.Info("Tile warm job finished",
		zap.String("job_id", job.JobID.String()),
		zap.Int("tiles", n),
		zap.Duration("took", time.Since(start)),
		zap.Error(err),
	)
	return err
}
