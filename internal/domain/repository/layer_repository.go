package repository

import (
	"context"

	"github.com/geostore-service/internal/domain"
)

// LayerRepository - доступ к слоям и агрегатам по их объектам
type LayerRepository interface {
	// GetByID возвращает слой по идентификатору
	GetByID(ctx context.Context, id int64) (*domain.Layer, error)

	// GetByName возвращает слой по уникальному имени
	GetByName(ctx context.Context, name string) (*domain.Layer, error)

	// List возвращает все слои
	List(ctx context.Context) ([]*domain.Layer, error)

	// Create добавляет новый слой
	Create(ctx context.Context, layer *domain.Layer) error

	// UpdateSettings сохраняет документ настроек слоя
	UpdateSettings(ctx context.Context, layer *domain.Layer) error

	// Version - UNIX время последнего изменения объекта слоя, 1 для пустого слоя
	Version(ctx context.Context, layerID int64) (int64, error)

	// Extent - охват слоя (WGS84 + размеры в EPSG:3857)
	Extent(ctx context.Context, layerID int64) (*domain.LayerExtent, error)

	// MeanVertexSpacing - среднее геометрическое расстояние между соседними вершинами,
	// nil если вершин меньше двух
	MeanVertexSpacing(ctx context.Context, layerID int64) (*float64, error)

	// PropertyKeys - ключи свойств, встречающиеся в слое (для TileJSON)
	PropertyKeys(ctx context.Context, layerID int64) ([]string, error)
}
