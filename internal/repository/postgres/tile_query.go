package postgres

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/geostore-service/internal/domain"
	"github.com/geostore-service/internal/pkg/tilemath"
	"github.com/lib/pq"
)

// TileQuery - входные данные для построения запроса одного MVT тайла
type TileQuery struct {
	LayerID      int64
	LayerName    string
	GeometryType domain.GeometryType
	Addr         domain.TileAddress
	Params       domain.TileParams
	TileWidth    int // пикселей
	Extent       int // координатное пространство MVT
}

// Build собирает SQL и аргументы запроса тайла.
//
// Шаги запроса:
//  1. fullgeom - объекты слоя, пересекающие bbox тайла, расширенный на pixel_buffer
//     (индекс по geom в 4326), плюс фильтр свойств и отсечение слишком мелких объектов;
//  2. tilegeom - упрощение полигонов и ST_AsMVTGeom в координатах тайла;
//  3. итог - число объектов и ST_AsMVT.
func (q TileQuery) Build() (string, []interface{}, error) {
	if q.TileWidth <= 0 {
		q.TileWidth = tilemath.DefaultTileWidth
	}
	if q.Extent <= 0 {
		q.Extent = q.TileWidth * 8
	}
	if !tilemath.ValidTile(q.Addr.X, q.Addr.Y, q.Addr.Z) {
		return "", nil, fmt.Errorf("tile %d/%d/%d out of range", q.Addr.Z, q.Addr.X, q.Addr.Y)
	}

	bbox := tilemath.TileBBox(q.Addr.X, q.Addr.Y, q.Addr.Z)
	dx, dy := tilemath.PixelWidths(bbox, q.TileWidth)
	selectBBox := bbox.Expand(float64(q.Params.PixelBuffer)*dx, float64(q.Params.PixelBuffer)*dy)
	mvtBuffer := q.Params.PixelBuffer * (q.Extent / q.TileWidth)

	b := newQueryBuilder()

	bounds := fmt.Sprintf(`SELECT
	ST_MakeEnvelope(%s::float8, %s::float8, %s::float8, %s::float8, %d) AS tile_geom,
	ST_Transform(ST_MakeEnvelope(%s::float8, %s::float8, %s::float8, %s::float8, %d), %d) AS select_geom`,
		b.Arg(bbox.XMin), b.Arg(bbox.YMin), b.Arg(bbox.XMax), b.Arg(bbox.YMax), SRIDMercator,
		b.Arg(selectBBox.XMin), b.Arg(selectBBox.YMin), b.Arg(selectBBox.XMax), b.Arg(selectBBox.YMax),
		SRIDMercator, SRIDInternal,
	)
	b.With("bounds", bounds)

	where := "f.layer_id = " + b.Arg(q.LayerID) + " AND f.geom && bounds.select_geom"
	if len(q.Params.FeaturesFilter) > 0 {
		filter, err := json.Marshal(q.Params.FeaturesFilter)
		if err != nil {
			return "", nil, fmt.Errorf("marshal features filter: %w", err)
		}
		where += " AND f.properties @> " + b.Arg(string(filter)) + "::jsonb"
	}

	size := sizeExpression(q.GeometryType)
	if size != "" {
		where += " AND " + size + " > " + b.Arg(minFeatureSize(q.GeometryType, dx, dy)) + "::float8"
	}

	fullgeom := fmt.Sprintf(`SELECT f.identifier, f.properties, ST_Transform(f.geom, %d) AS geom
FROM %s f, bounds
WHERE %s`, SRIDMercator, featureTable, where)
	if q.Params.FeaturesLimit != nil {
		if size != "" {
			fullgeom += "\nORDER BY " + size + " DESC"
		}
		fullgeom += "\nLIMIT " + b.Arg(*q.Params.FeaturesLimit)
	}
	b.With("fullgeom", fullgeom)

	geom := "fullgeom.geom"
	if q.GeometryType.IsPolygon() {
		geom = "ST_SimplifyPreserveTopology(fullgeom.geom, " + b.Arg((dx+dy)/4) + "::float8)"
	}

	extent := b.Arg(q.Extent)
	tilegeom := fmt.Sprintf(`SELECT %s AS properties,
	ST_AsMVTGeom(%s, bounds.tile_geom::box2d, %s::integer, %s::integer, true) AS geometry
FROM fullgeom, bounds`,
		propertiesExpression(b, q.Params.PropertiesFilter), geom, extent, b.Arg(mvtBuffer))
	b.With("tilegeom", tilegeom)

	final := fmt.Sprintf(`SELECT count(*) AS count,
	COALESCE(ST_AsMVT(tilegeom.*, %s::text, %s::integer, 'geometry'), ''::bytea) AS mvt
FROM tilegeom
WHERE tilegeom.geometry IS NOT NULL`, b.Arg(q.LayerName), extent)

	sql, args := b.Build(final)
	return sql, args, nil
}

// sizeExpression - метрика размера объекта в EPSG:3857; точки не фильтруются
func sizeExpression(t domain.GeometryType) string {
	geom := "ST_Transform(f.geom, " + strconv.Itoa(SRIDMercator) + ")"
	switch {
	case t.IsLineString():
		return "ST_Length(" + geom + ")"
	case t.IsPolygon():
		return "ST_Area(" + geom + ")"
	default:
		return ""
	}
}

// minFeatureSize - порог, ниже которого объект не виден на тайле:
// половина диагонали пикселя для линий, четверть площади пикселя для полигонов
func minFeatureSize(t domain.GeometryType, dx, dy float64) float64 {
	if t.IsPolygon() {
		return dx * dy / 4
	}
	return math.Hypot(dx, dy) / 2
}

// propertiesExpression выбирает свойства объекта: все, только разрешенные или никаких.
// _id добавляется всегда.
func propertiesExpression(b *queryBuilder, allowed []string) string {
	const id = "jsonb_build_object('_id', fullgeom.identifier)"
	switch {
	case allowed == nil:
		return "fullgeom.properties || " + id
	case len(allowed) == 0:
		return id
	default:
		return fmt.Sprintf(`(SELECT COALESCE(jsonb_object_agg(p.key, p.value), '{}'::jsonb)
		FROM jsonb_each(fullgeom.properties) AS p
		WHERE p.key = ANY(%s::text[])) || %s`, b.Arg(pq.Array(allowed)), id)
	}
}
