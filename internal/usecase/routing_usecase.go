package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/geostore-service/internal/config"
	"github.com/geostore-service/internal/domain"
	"github.com/geostore-service/internal/domain/repository"
	"github.com/geostore-service/internal/pkg/errors"
	"github.com/geostore-service/internal/pkg/metrics"
)

const (
	segmentKeyPrefix = "segment"

	strategySameEdge = "same_edge"
	strategyGraph    = "graph"
)

// RoutingUseCase - маршруты по линейному слою через pgRouting
type RoutingUseCase struct {
	layerRepo   repository.LayerRepository
	routingRepo repository.RoutingRepository
	cacheRepo   repository.CacheRepository
	cfg         *config.Store
	logger      *zap.Logger
}

func NewRoutingUseCase(
	layerRepo repository.LayerRepository,
	routingRepo repository.RoutingRepository,
	cacheRepo repository.CacheRepository,
	cfg *config.Store,
	logger *zap.Logger,
) *RoutingUseCase {
	return &RoutingUseCase{
		layerRepo:   layerRepo,
		routingRepo: routingRepo,
		cacheRepo:   cacheRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// validateRoutingLayer - маршрутизация возможна только по слою простых LineString
func validateRoutingLayer(layer *domain.Layer) error {
	if layer.GeometryType != domain.GeometryLineString {
		return errors.ErrRoutingLayer.WithDetails(map[string]interface{}{
			"layer":     layer.Name,
			"geom_type": layer.GeometryType.String(),
		})
	}
	return nil
}

// Route строит маршрут через точки по порядку и возвращает ребра пути
func (uc *RoutingUseCase) Route(ctx context.Context, layerRef string, points []orb.Point) ([]domain.RouteEdge, error) {
	if len(points) < 2 {
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"points": "at least two points are required",
		})
	}

	layer, err := resolveLayer(ctx, uc.layerRepo, layerRef)
	if err != nil {
		return nil, err
	}
	if err := validateRoutingLayer(layer); err != nil {
		return nil, err
	}

	snapped := make([]domain.SnappedPoint, 0, len(points))
	for _, p := range points {
		sp, err := uc.routingRepo.SnapPoint(ctx, layer.ID, p)
		if err != nil {
			return nil, err
		}
		sp.Fraction = domain.ClampFraction(sp.Fraction)
		snapped = append(snapped, *sp)
	}

	version := int64(1)
	if uc.cfg.Current().Cache.VersionSegments {
		if version, err = uc.layerRepo.Version(ctx, layer.ID); err != nil {
			return nil, err
		}
	}

	var route []domain.RouteEdge
	for i := 1; i < len(snapped); i++ {
		segment, err := uc.segment(ctx, layer, version, snapped[i-1], snapped[i])
		if err != nil {
			return nil, err
		}
		route = append(route, segment...)
	}
	return route, nil
}

// SegmentCacheKey - ключ сегмента между двумя привязанными точками
func SegmentCacheKey(layerID int64, from, to domain.SnappedPoint) string {
	return fmt.Sprintf("%s:%d:%d:%s:%d:%s",
		segmentKeyPrefix, layerID,
		from.FeatureID, strconv.FormatFloat(from.Fraction, 'g', -1, 64),
		to.FeatureID, strconv.FormatFloat(to.Fraction, 'g', -1, 64),
	)
}

func (uc *RoutingUseCase) segment(
	ctx context.Context,
	layer *domain.Layer,
	version int64,
	from, to domain.SnappedPoint,
) ([]domain.RouteEdge, error) {
	policy := cachePolicy{
		Key:     SegmentCacheKey(layer.ID, from, to),
		Version: version,
		TTL:     uc.cfg.Current().Cache.SegmentTTL,
	}

	edges, _, err := memoize(ctx, uc.cacheRepo, uc.logger, policy, func(ctx context.Context) ([]domain.RouteEdge, error) {
		if from.FeatureID == to.FeatureID {
			metrics.RouteSegmentsTotal.WithLabelValues(strategySameEdge).Inc()
			edge, err := uc.routingRepo.SliceFeature(ctx, from.FeatureID, from.Fraction, to.Fraction)
			if err != nil {
				return nil, err
			}
			return []domain.RouteEdge{*edge}, nil
		}

		metrics.RouteSegmentsTotal.WithLabelValues(strategyGraph).Inc()
		return uc.routingRepo.ShortestPath(ctx, layer.ID, from, to)
	})
	return edges, err
}

// RouteFeatureCollection - маршрут как GeoJSON FeatureCollection ребер с исходными свойствами
func (uc *RoutingUseCase) RouteFeatureCollection(ctx context.Context, layerRef string, points []orb.Point) (*geojson.FeatureCollection, error) {
	edges, err := uc.Route(ctx, layerRef, points)
	if err != nil {
		return nil, err
	}
	return EdgesToFeatureCollection(edges), nil
}

// RouteLineString - маршрут, слитый в одну линию
func (uc *RoutingUseCase) RouteLineString(ctx context.Context, layerRef string, points []orb.Point) (orb.LineString, error) {
	edges, err := uc.Route(ctx, layerRef, points)
	if err != nil {
		return nil, err
	}
	return MergeEdges(edges), nil
}

// EdgesToFeatureCollection переводит ребра маршрута в GeoJSON
func EdgesToFeatureCollection(edges []domain.RouteEdge) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, e := range edges {
		f := geojson.NewFeature(e.Geometry)
		f.ID = e.FeatureID
		if len(e.Properties) > 0 {
			props := geojson.Properties{}
			if err := json.Unmarshal(e.Properties, &props); err == nil {
				f.Properties = props
			}
		}
		fc.Append(f)
	}
	return fc
}

// MergeEdges склеивает ребра в одну линию, не дублируя общие вершины
func MergeEdges(edges []domain.RouteEdge) orb.LineString {
	var line orb.LineString
	for _, e := range edges {
		for i, p := range e.Geometry {
			if i == 0 && len(line) > 0 && line[len(line)-1].Equal(p) {
				continue
			}
			line = append(line, p)
		}
	}
	return line
}

// CreateTopology строит топологию маршрутизации слоя; tolerance nil - значение из конфигурации
func (uc *RoutingUseCase) CreateTopology(ctx context.Context, layerRef string, tolerance *float64, clean bool) (*domain.TopologyResult, error) {
	layer, err := resolveLayer(ctx, uc.layerRepo, layerRef)
	if err != nil {
		return nil, err
	}
	if err := validateRoutingLayer(layer); err != nil {
		return nil, err
	}

	tol := uc.cfg.Current().Routing.DefaultTolerance
	if tolerance != nil {
		tol = *tolerance
	}

	status, err := uc.routingRepo.CreateTopology(ctx, layer.ID, tol, clean)
	if err != nil {
		return nil, err
	}
	return &domain.TopologyResult{LayerID: layer.ID, Tolerance: tol, Status: status}, nil
}
