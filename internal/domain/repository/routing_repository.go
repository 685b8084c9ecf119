package repository

import (
	"context"

	"github.com/geostore-service/internal/domain"
	"github.com/paulmach/orb"
)

// RoutingRepository - привязка точек к сети и поиск пути через pgRouting
type RoutingRepository interface {
	// SnapPoint находит ближайшее ребро слоя и дробную позицию точки на нем
	SnapPoint(ctx context.Context, layerID int64, p orb.Point) (*domain.SnappedPoint, error)

	// SliceFeature возвращает часть геометрии ребра между двумя позициями
	SliceFeature(ctx context.Context, featureID int64, from, to float64) (*domain.RouteEdge, error)

	// ShortestPath ищет путь между двумя точками на разных ребрах
	ShortestPath(ctx context.Context, layerID int64, from, to domain.SnappedPoint) ([]domain.RouteEdge, error)

	// CreateTopology проставляет source/target ребрам слоя (pgr_createTopology)
	CreateTopology(ctx context.Context, layerID int64, tolerance float64, clean bool) (string, error)
}
