package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/geostore-service/internal/domain"
	"github.com/geostore-service/internal/domain/repository"
	pkgerrors "github.com/geostore-service/internal/pkg/errors"
	"github.com/geostore-service/internal/pkg/tilemath"
	"go.uber.org/zap"
)

const (
	settingMinZoom = "minzoom"
	settingMaxZoom = "maxzoom"
)

// ZoomUseCase - эвристики диапазона зумов слоя и их сохранение в настройки
type ZoomUseCase struct {
	layerRepo      repository.LayerRepository
	tileResolution int
	logger         *zap.Logger
}

func NewZoomUseCase(layerRepo repository.LayerRepository, tileResolution int, logger *zap.Logger) *ZoomUseCase {
	return &ZoomUseCase{
		layerRepo:      layerRepo,
		tileResolution: tileResolution,
		logger:         logger,
	}
}

// GuessMaxZoom оценивает максимальный зум по плотности вершин слоя
func (uc *ZoomUseCase) GuessMaxZoom(ctx context.Context, layer *domain.Layer) (int, error) {
	spacing, err := uc.layerRepo.MeanVertexSpacing(ctx, layer.ID)
	if err != nil {
		return 0, fmt.Errorf("mean vertex spacing: %w", err)
	}
	return tilemath.GuessMaxZoom(spacing, uc.tileResolution), nil
}

// GuessMinZoom оценивает минимальный зум по размеру охвата слоя
func (uc *ZoomUseCase) GuessMinZoom(ctx context.Context, layer *domain.Layer) (int, error) {
	ext, err := uc.layerRepo.Extent(ctx, layer.ID)
	if err != nil {
		return 0, fmt.Errorf("layer extent: %w", err)
	}
	if ext.Empty {
		return 0, nil
	}
	return tilemath.GuessMinZoom(ext.MercWidth, ext.MercHeight), nil
}

// MinZoom возвращает tiles.minzoom слоя; если он не задан, вычисляет и сохраняет
func (uc *ZoomUseCase) MinZoom(ctx context.Context, layer *domain.Layer) (int, error) {
	return uc.zoomUpdate(ctx, layer, settingMinZoom, uc.GuessMinZoom)
}

// MaxZoom возвращает tiles.maxzoom слоя; если он не задан, вычисляет и сохраняет
func (uc *ZoomUseCase) MaxZoom(ctx context.Context, layer *domain.Layer) (int, error) {
	return uc.zoomUpdate(ctx, layer, settingMaxZoom, uc.GuessMaxZoom)
}

func (uc *ZoomUseCase) zoomUpdate(
	ctx context.Context,
	layer *domain.Layer,
	key string,
	guess func(context.Context, *domain.Layer) (int, error),
) (int, error) {
	value, err := layer.Setting(domain.SettingsSectionTiles, key)
	if err == nil {
		return settingInt(layer, key, value)
	}
	if !errors.Is(err, pkgerrors.ErrSettingNotFound) {
		return 0, err
	}

	zoom, err := guess(ctx, layer)
	if err != nil {
		return 0, err
	}

	layer.SetSetting(domain.SettingsSectionTiles, key, zoom)
	if err := uc.layerRepo.UpdateSettings(ctx, layer); err != nil {
		return 0, fmt.Errorf("persist %s: %w", key, err)
	}

	uc.logger.Info("Zoom level guessed and saved",
		zap.Int64("layer_id", layer.ID),
		zap.String("setting", key),
		zap.Int("zoom", zoom),
	)
	return zoom, nil
}

// settingInt приводит значение настройки из JSON к int
func settingInt(layer *domain.Layer, key string, value interface{}) (int, error) {
	switch v := value.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("layer %d: tiles.%s must be a number, got %T", layer.ID, key, value)
	}
}
