package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/geostore-service/internal/domain"
	"github.com/geostore-service/internal/domain/repository"
	"github.com/geostore-service/internal/pkg/errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"go.uber.org/zap"
)

const (
	topologyOK = "OK"

	// виртуальные вершины pgr_withPoints для начала и конца сегмента
	startVertex = -1
	endVertex   = -2
)

type routingRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRoutingRepository создает репозиторий маршрутизации (PostGIS + pgRouting)
func NewRoutingRepository(db *DB) repository.RoutingRepository {
	return &routingRepository{
		db:     db,
		logger: db.logger,
	}
}

// SnapPoint - ближайшее ребро по KNN индексу и позиция проекции точки на нем
func (r *routingRepository) SnapPoint(ctx context.Context, layerID int64, p orb.Point) (*domain.SnappedPoint, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `
		WITH point AS (
			SELECT ST_SetSRID(ST_MakePoint($2::float8, $3::float8), 4326) AS geom
		)
		SELECT f.id, ST_LineLocatePoint(f.geom, point.geom) AS fraction
		FROM ` + featureTable + ` f, point
		WHERE f.layer_id = $1
		ORDER BY f.geom <-> point.geom
		LIMIT 1`

	var snapped domain.SnappedPoint
	err := r.db.GetContext(ctx, &snapped, query, layerID, p.Lon(), p.Lat())
	if err == sql.ErrNoRows {
		return nil, errors.ErrNoSnap
	}
	if err != nil {
		r.logger.Error("Failed to snap point",
			zap.Int64("layer_id", layerID),
			zap.Float64("lon", p.Lon()), zap.Float64("lat", p.Lat()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", errors.ErrDatabaseError, err)
	}
	return &snapped, nil
}

// SliceFeature вырезает часть ребра; при from > to геометрия разворачивается
func (r *routingRepository) SliceFeature(ctx context.Context, featureID int64, from, to float64) (*domain.RouteEdge, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT f.id,
			ST_AsBinary(CASE
				WHEN $2::float8 <= $3::float8 THEN ST_LineSubstring(f.geom, $2::float8, $3::float8)
				ELSE ST_Reverse(ST_LineSubstring(f.geom, $3::float8, $2::float8))
			END) AS geom,
			f.properties
		FROM ` + featureTable + ` f
		WHERE f.id = $1`

	rows, err := r.db.QueryContext(ctx, query, featureID, from, to)
	if err != nil {
		r.logger.Error("Failed to slice feature", zap.Int64("feature_id", featureID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", errors.ErrDatabaseError, err)
	}
	defer rows.Close()

	edges, err := scanRouteEdges(rows)
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, errors.ErrNoRoute
	}
	return &edges[0], nil
}

// ShortestPath ищет кратчайший путь pgr_withPoints между двумя привязанными точками.
// Первое и последнее ребра обрезаются по позициям точек, все ребра ориентируются
// по направлению движения.
func (r *routingRepository) ShortestPath(ctx context.Context, layerID int64, from, to domain.SnappedPoint) ([]domain.RouteEdge, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	b := newQueryBuilder()
	layer := b.Arg(layerID)
	fromID, fromFrac := b.Arg(from.FeatureID), b.Arg(from.Fraction)
	toID, toFrac := b.Arg(to.FeatureID), b.Arg(to.Fraction)

	b.With("path", fmt.Sprintf(`
		SELECT seq, node, edge
		FROM pgr_withPoints(
			format(
				'SELECT id, source, target,
					ST_Length(geom::geography) AS cost,
					ST_Length(geom::geography) AS reverse_cost
				FROM %s
				WHERE layer_id = %%s AND source IS NOT NULL AND target IS NOT NULL',
				%s::integer
			),
			format(
				'SELECT 1 AS pid, %%s::bigint AS edge_id, %%s::float8 AS fraction
				UNION ALL
				SELECT 2, %%s::bigint, %%s::float8',
				%s::bigint, %s::float8, %s::bigint, %s::float8
			),
			%d, %d, false
		)`, featureTable, layer, fromID, fromFrac, toID, toFrac, startVertex, endVertex))

	b.With("steps", `
		SELECT seq, node, edge, lead(node) OVER (ORDER BY seq) AS next_node
		FROM path`)

	final := fmt.Sprintf(`
		SELECT f.id,
			ST_AsBinary(CASE
				WHEN s.node = %[1]d AND s.next_node = f.target
					THEN ST_LineSubstring(f.geom, %[3]s::float8, 1)
				WHEN s.node = %[1]d
					THEN ST_Reverse(ST_LineSubstring(f.geom, 0, %[3]s::float8))
				WHEN s.next_node = %[2]d AND s.node = f.source
					THEN ST_LineSubstring(f.geom, 0, %[4]s::float8)
				WHEN s.next_node = %[2]d
					THEN ST_Reverse(ST_LineSubstring(f.geom, %[4]s::float8, 1))
				WHEN s.node = f.source
					THEN f.geom
				ELSE ST_Reverse(f.geom)
			END) AS geom,
			f.properties
		FROM steps s
		JOIN %[5]s f ON f.id = s.edge
		WHERE s.edge <> -1
		ORDER BY s.seq`, startVertex, endVertex, fromFrac, toFrac, featureTable)

	query, args := b.Build(final)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to find shortest path",
			zap.Int64("layer_id", layerID),
			zap.Int64("from_feature", from.FeatureID),
			zap.Int64("to_feature", to.FeatureID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", errors.ErrDatabaseError, err)
	}
	defer rows.Close()

	edges, err := scanRouteEdges(rows)
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, errors.ErrNoRoute
	}
	return edges, nil
}

// CreateTopology строит топологию pgRouting только для ребер слоя
func (r *routingRepository) CreateTopology(ctx context.Context, layerID int64, tolerance float64, clean bool) (string, error) {
	// построение топологии на большом слое дольше обычного запроса
	query := `
		SELECT pgr_createTopology(
			'` + featureTable + `', $1::float8, 'geom', 'id', 'source', 'target',
			format('layer_id = %s', $2::integer), $3::boolean
		)`

	var status string
	if err := r.db.GetContext(ctx, &status, query, tolerance, layerID, clean); err != nil {
		r.logger.Error("Failed to create topology", zap.Int64("layer_id", layerID), zap.Error(err))
		return "", fmt.Errorf("%w: %v", errors.ErrDatabaseError, err)
	}

	r.logger.Info("Topology created",
		zap.Int64("layer_id", layerID),
		zap.Float64("tolerance", tolerance),
		zap.String("status", status),
	)
	if status != topologyOK {
		return status, errors.ErrTopologyFailed
	}
	return status, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanRouteEdges(rows rowScanner) ([]domain.RouteEdge, error) {
	var edges []domain.RouteEdge
	for rows.Next() {
		var (
			edge  domain.RouteEdge
			line  orb.LineString
			props []byte
		)
		if err := rows.Scan(&edge.FeatureID, wkb.Scanner(&line), &props); err != nil {
			return nil, fmt.Errorf("scan route edge: %w", err)
		}
		edge.Geometry = line
		edge.Properties = json.RawMessage(props)
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrDatabaseError, err)
	}
	return edges, nil
}
