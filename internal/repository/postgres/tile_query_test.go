package postgres

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/geostore-service/internal/domain"
	"github.com/geostore-service/internal/pkg/tilemath"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func baseQuery(t domain.GeometryType) TileQuery {
	return TileQuery{
		LayerID:      42,
		LayerName:    "roads",
		GeometryType: t,
		Addr:         domain.TileAddress{X: 1, Y: 1, Z: 2},
		Params:       domain.TileParams{PixelBuffer: 4},
		TileWidth:    512,
		Extent:       4096,
	}
}

func TestTileQuery_InvalidAddress(t *testing.T) {
	q := baseQuery(domain.GeometryPoint)
	q.Addr = domain.TileAddress{X: 4, Y: 0, Z: 2}

	_, _, err := q.Build()
	assert.Error(t, err)
}

func TestTileQuery_PointLayerHasNoSizeFilter(t *testing.T) {
	sql, args, err := baseQuery(domain.GeometryPoint).Build()
	require.NoError(t, err)

	assert.NotContains(t, sql, "ST_Length")
	assert.NotContains(t, sql, "ST_Area")
	assert.NotContains(t, sql, "ST_SimplifyPreserveTopology")
	assert.NotContains(t, sql, "LIMIT")
	assert.Contains(t, sql, "f.geom && bounds.select_geom")
	assert.Contains(t, sql, "ST_AsMVT(tilegeom.*")
	assert.Contains(t, args, int64(42))
	assert.Contains(t, args, "roads")
}

func TestTileQuery_ExpandedBBoxAndBuffer(t *testing.T) {
	sql, args, err := baseQuery(domain.GeometryPoint).Build()
	require.NoError(t, err)

	bbox := tilemath.TileBBox(1, 1, 2)
	dx, dy := tilemath.PixelWidths(bbox, 512)

	// tile envelope, then select envelope grown by 4 pixels on each side
	assert.Equal(t, bbox.XMin, args[0])
	assert.Equal(t, bbox.YMax, args[3])
	assert.InDelta(t, bbox.XMin-4*dx, args[4].(float64), 1e-6)
	assert.InDelta(t, bbox.YMax+4*dy, args[7].(float64), 1e-6)

	// MVT buffer is expressed in extent units: 4 px * 4096/512
	assert.Contains(t, args, 32)
	assert.Contains(t, sql, "ST_AsMVTGeom(fullgeom.geom, bounds.tile_geom::box2d")
}

func TestTileQuery_LineSizeFilter(t *testing.T) {
	sql, args, err := baseQuery(domain.GeometryLineString).Build()
	require.NoError(t, err)

	dx, dy := tilemath.PixelWidths(tilemath.TileBBox(1, 1, 2), 512)
	assert.Contains(t, sql, "ST_Length(ST_Transform(f.geom, 3857)) >")
	assert.Contains(t, args, math.Hypot(dx, dy)/2)
	assert.NotContains(t, sql, "ST_SimplifyPreserveTopology")
}

func TestTileQuery_PolygonSizeFilterAndSimplification(t *testing.T) {
	sql, args, err := baseQuery(domain.GeometryMultiPolygon).Build()
	require.NoError(t, err)

	dx, dy := tilemath.PixelWidths(tilemath.TileBBox(1, 1, 2), 512)
	assert.Contains(t, sql, "ST_Area(ST_Transform(f.geom, 3857)) >")
	assert.Contains(t, args, dx*dy/4)
	assert.Contains(t, sql, "ST_SimplifyPreserveTopology(fullgeom.geom")
	assert.Contains(t, args, (dx+dy)/4)
}

func TestTileQuery_FeaturesLimitOrdersBySize(t *testing.T) {
	q := baseQuery(domain.GeometryLineString)
	q.Params.FeaturesLimit = intPtr(100)

	sql, args, err := q.Build()
	require.NoError(t, err)

	assert.Contains(t, sql, "ORDER BY ST_Length(ST_Transform(f.geom, 3857)) DESC")
	assert.Contains(t, sql, "LIMIT $")
	assert.Contains(t, args, 100)
}

func TestTileQuery_FeaturesFilterIsBound(t *testing.T) {
	q := baseQuery(domain.GeometryPoint)
	q.Params.FeaturesFilter = map[string]interface{}{"kind": "school"}

	sql, args, err := q.Build()
	require.NoError(t, err)

	assert.Contains(t, sql, "f.properties @> $")
	assert.Contains(t, args, `{"kind":"school"}`)
	assert.NotContains(t, sql, "school")
}

func TestTileQuery_PropertiesSubset(t *testing.T) {
	t.Run("all properties", func(t *testing.T) {
		sql, _, err := baseQuery(domain.GeometryPoint).Build()
		require.NoError(t, err)
		assert.Contains(t, sql, "fullgeom.properties || jsonb_build_object('_id', fullgeom.identifier)")
	})

	t.Run("allow list", func(t *testing.T) {
		q := baseQuery(domain.GeometryPoint)
		q.Params.PropertiesFilter = []string{"name"}

		sql, args, err := q.Build()
		require.NoError(t, err)
		assert.Contains(t, sql, "jsonb_object_agg(p.key, p.value)")
		assert.Contains(t, sql, "jsonb_build_object('_id', fullgeom.identifier)")
		assert.Contains(t, args, pq.Array([]string{"name"}))
	})

	t.Run("no properties", func(t *testing.T) {
		q := baseQuery(domain.GeometryPoint)
		q.Params.PropertiesFilter = []string{}

		sql, _, err := q.Build()
		require.NoError(t, err)
		assert.Contains(t, sql, "SELECT jsonb_build_object('_id', fullgeom.identifier) AS properties")
		assert.NotContains(t, sql, "fullgeom.properties ||")
	})
}

func TestTileQuery_PlaceholdersMatchArgs(t *testing.T) {
	q := baseQuery(domain.GeometryPolygon)
	q.Params.FeaturesFilter = map[string]interface{}{"a": 1}
	q.Params.PropertiesFilter = []string{"a"}
	q.Params.FeaturesLimit = intPtr(10)

	sql, args, err := q.Build()
	require.NoError(t, err)

	for i := 1; i <= len(args); i++ {
		assert.True(t, strings.Contains(sql, "$"+strconv.Itoa(i)), "placeholder $%d missing", i)
	}
	assert.False(t, strings.Contains(sql, "$"+strconv.Itoa(len(args)+1)))
}

