package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/suite"

	"github.com/geostore-service/internal/domain"
	"github.com/geostore-service/internal/domain/repository"
	"github.com/geostore-service/internal/pkg/errors"
	"github.com/geostore-service/internal/repository/postgres/testhelpers"
)

// RepositoryTestSuite проверяет репозитории на реальной PostGIS + pgRouting
type RepositoryTestSuite struct {
	suite.Suite
	testDB     *testhelpers.TestDB
	layers     repository.LayerRepository
	tiles      repository.TileRepository
	routing    repository.RoutingRepository
	processing repository.ProcessingRepository
	ctx        context.Context
}

func TestRepositoryTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(RepositoryTestSuite))
}

// SetupSuite выполняется один раз перед всеми тестами
func (s *RepositoryTestSuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDB(s.T())
	testhelpers.ApplyMigrations(s.T(), s.testDB)

	s.layers = testhelpers.NewLayerRepositoryForTest(s.testDB.DB, s.testDB.Logger)
	s.tiles = testhelpers.NewTileRepositoryForTest(s.testDB.DB, s.testDB.Logger)
	s.routing = testhelpers.NewRoutingRepositoryForTest(s.testDB.DB, s.testDB.Logger)
	s.processing = testhelpers.NewProcessingRepositoryForTest(s.testDB.DB, s.testDB.Logger)
}

// TearDownSuite выполняется один раз после всех тестов
func (s *RepositoryTestSuite) TearDownSuite() {
	if s.testDB != nil {
		s.testDB.Close()
	}
}

// SetupTest выполняется перед каждым тестом
func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.testDB.Cleanup(s.ctx))
}

func (s *RepositoryTestSuite) newLayer(name string, t domain.GeometryType) *domain.Layer {
	id, err := testhelpers.InsertLayer(s.testDB.DB, name, t, nil)
	s.Require().NoError(err)
	layer, err := s.layers.GetByID(s.ctx, id)
	s.Require().NoError(err)
	return layer
}

func (s *RepositoryTestSuite) addFeature(layerID int64, identifier, wkt string, props map[string]interface{}) int64 {
	id, err := testhelpers.InsertFeature(s.testDB.DB, layerID, identifier, wkt, props)
	s.Require().NoError(err)
	return id
}

// ============================================================================
// Layers
// ============================================================================

func (s *RepositoryTestSuite) TestLayer_CreateAndGet() {
	layer := &domain.Layer{Name: "parcels", GeometryType: domain.GeometryPolygon}
	layer.SetSetting(domain.SettingsSectionTiles, "maxzoom", 16)
	s.Require().NoError(s.layers.Create(s.ctx, layer))
	s.NotZero(layer.ID)

	got, err := s.layers.GetByName(s.ctx, "parcels")
	s.Require().NoError(err)
	s.Equal(layer.ID, got.ID)
	s.Equal(domain.GeometryPolygon, got.GeometryType)

	maxZoom, err := got.Setting(domain.SettingsSectionTiles, "maxzoom")
	s.Require().NoError(err)
	s.Equal(float64(16), maxZoom)
}

func (s *RepositoryTestSuite) TestLayer_NotFound() {
	_, err := s.layers.GetByID(s.ctx, 999999)
	s.ErrorIs(err, errors.ErrLayerNotFound)

	_, err = s.layers.GetByName(s.ctx, "missing")
	s.ErrorIs(err, errors.ErrLayerNotFound)
}

func (s *RepositoryTestSuite) TestLayer_UpdateSettings() {
	layer := s.newLayer("settings", domain.GeometryPoint)
	layer.SetSetting(domain.SettingsSectionTiles, "minzoom", 5)
	s.Require().NoError(s.layers.UpdateSettings(s.ctx, layer))

	got, err := s.layers.GetByID(s.ctx, layer.ID)
	s.Require().NoError(err)
	v, err := got.Setting(domain.SettingsSectionTiles, "minzoom")
	s.Require().NoError(err)
	s.Equal(float64(5), v)
}

func (s *RepositoryTestSuite) TestLayer_Version() {
	layer := s.newLayer("versioned", domain.GeometryPoint)

	v, err := s.layers.Version(s.ctx, layer.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), v, "empty layer has version 1")

	id := s.addFeature(layer.ID, "a", "POINT(1 1)", nil)
	inserted, err := s.layers.Version(s.ctx, layer.ID)
	s.Require().NoError(err)
	s.Greater(inserted, int64(1))

	// версия с точностью до секунды: ждем смены секунды
	time.Sleep(1100 * time.Millisecond)
	_, err = s.testDB.DB.ExecContext(s.ctx,
		`UPDATE geostore_feature SET properties = '{"name": "renamed"}'::jsonb WHERE id = $1`, id)
	s.Require().NoError(err)

	updated, err := s.layers.Version(s.ctx, layer.ID)
	s.Require().NoError(err)
	s.Greater(updated, inserted, "update must bump the version")
}

func (s *RepositoryTestSuite) TestLayer_ExtentAndSpacing() {
	layer := s.newLayer("extent", domain.GeometryPoint)

	ext, err := s.layers.Extent(s.ctx, layer.ID)
	s.Require().NoError(err)
	s.True(ext.Empty)

	spacing, err := s.layers.MeanVertexSpacing(s.ctx, layer.ID)
	s.Require().NoError(err)
	s.Nil(spacing)

	s.addFeature(layer.ID, "a", "POINT(0 0)", map[string]interface{}{"name": "a"})
	s.addFeature(layer.ID, "b", "POINT(1 1)", map[string]interface{}{"kind": "b"})

	ext, err = s.layers.Extent(s.ctx, layer.ID)
	s.Require().NoError(err)
	s.False(ext.Empty)
	s.Equal(orb.Point{0, 0}, ext.Bound.Min)
	s.Equal(orb.Point{1, 1}, ext.Bound.Max)
	s.InDelta(111319.49, ext.MercWidth, 1)

	spacing, err = s.layers.MeanVertexSpacing(s.ctx, layer.ID)
	s.Require().NoError(err)
	s.Require().NotNil(spacing)
	s.InDelta(111319.49, *spacing, 1)

	keys, err := s.layers.PropertyKeys(s.ctx, layer.ID)
	s.Require().NoError(err)
	s.Equal([]string{"kind", "name"}, keys)
}

// ============================================================================
// Tiles
// ============================================================================

func (s *RepositoryTestSuite) TestTile_EmptyLayer() {
	layer := s.newLayer("empty", domain.GeometryPoint)

	tile, err := s.tiles.EncodeTile(s.ctx, layer, domain.TileAddress{X: 0, Y: 0, Z: 0}, domain.TileParams{PixelBuffer: 4})
	s.Require().NoError(err)
	s.Equal(0, tile.Count)
	s.Empty(tile.MVT)
}

func (s *RepositoryTestSuite) TestTile_PointsAndFilter() {
	layer := s.newLayer("pois", domain.GeometryPoint)
	s.addFeature(layer.ID, "school-1", "POINT(2.1734 41.3851)", map[string]interface{}{"kind": "school"})
	s.addFeature(layer.ID, "shop-1", "POINT(2.1800 41.3900)", map[string]interface{}{"kind": "shop"})

	tile, err := s.tiles.EncodeTile(s.ctx, layer, domain.TileAddress{X: 0, Y: 0, Z: 0}, domain.TileParams{PixelBuffer: 4})
	s.Require().NoError(err)
	s.Equal(2, tile.Count)
	s.NotEmpty(tile.MVT)

	params := domain.TileParams{
		PixelBuffer:      4,
		FeaturesFilter:   map[string]interface{}{"kind": "school"},
		PropertiesFilter: []string{},
	}
	tile, err = s.tiles.EncodeTile(s.ctx, layer, domain.TileAddress{X: 0, Y: 0, Z: 0}, params)
	s.Require().NoError(err)
	s.Equal(1, tile.Count)

	// tile on the other side of the world
	tile, err = s.tiles.EncodeTile(s.ctx, layer, domain.TileAddress{X: 0, Y: 1, Z: 1}, domain.TileParams{PixelBuffer: 4})
	s.Require().NoError(err)
	s.Equal(0, tile.Count)
}

func (s *RepositoryTestSuite) TestTile_PolygonSizeFilter() {
	layer := s.newLayer("polygons", domain.GeometryPolygon)
	s.addFeature(layer.ID, "tiny", "POLYGON((0 0, 0.001 0, 0.001 0.001, 0 0.001, 0 0))", nil)
	s.addFeature(layer.ID, "big", "POLYGON((0 0, 10 0, 10 10, 0 10, 0 0))", nil)

	tile, err := s.tiles.EncodeTile(s.ctx, layer, domain.TileAddress{X: 0, Y: 0, Z: 0}, domain.TileParams{PixelBuffer: 4})
	s.Require().NoError(err)
	s.Equal(1, tile.Count, "sub-pixel polygon must be dropped at zoom 0")

	tile, err = s.tiles.EncodeTile(s.ctx, layer, domain.TileAddress{X: 1 << 13, Y: (1 << 13) - 1, Z: 14}, domain.TileParams{PixelBuffer: 4})
	s.Require().NoError(err)
	s.Equal(2, tile.Count)
}

// ============================================================================
// Routing
// ============================================================================

func (s *RepositoryTestSuite) routingLayer() *domain.Layer {
	layer := s.newLayer("roads", domain.GeometryLineString)
	s.addFeature(layer.ID, "west", "LINESTRING(0 0, 1 0)", map[string]interface{}{"name": "west"})
	s.addFeature(layer.ID, "center-west", "LINESTRING(1 0, 5 0)", map[string]interface{}{"name": "center-west"})
	s.addFeature(layer.ID, "center-east", "LINESTRING(5 0, 9 0)", map[string]interface{}{"name": "center-east"})
	s.addFeature(layer.ID, "east", "LINESTRING(9 0, 10 0)", map[string]interface{}{"name": "east"})
	return layer
}

func (s *RepositoryTestSuite) TestRouting_TopologyIdempotent() {
	layer := s.routingLayer()

	status, err := s.routing.CreateTopology(s.ctx, layer.ID, 0.00001, true)
	s.Require().NoError(err)
	s.Equal("OK", status)

	first := s.topology(layer.ID)
	s.Len(first, 4)
	for _, e := range first {
		s.NotNil(e.Source, "edge %d", e.ID)
		s.NotNil(e.Target, "edge %d", e.ID)
	}

	status, err = s.routing.CreateTopology(s.ctx, layer.ID, 0.00001, false)
	s.Require().NoError(err)
	s.Equal("OK", status)

	s.Equal(first, s.topology(layer.ID))
}

type topologyEdge struct {
	ID     int64  `db:"id"`
	Source *int64 `db:"source"`
	Target *int64 `db:"target"`
}

func (s *RepositoryTestSuite) topology(layerID int64) []topologyEdge {
	var edges []topologyEdge
	err := s.testDB.DB.SelectContext(s.ctx, &edges,
		`SELECT id, source, target FROM geostore_feature WHERE layer_id = $1 ORDER BY id`, layerID)
	s.Require().NoError(err)
	return edges
}

func (s *RepositoryTestSuite) TestRouting_ShortestPath() {
	layer := s.routingLayer()
	_, err := s.routing.CreateTopology(s.ctx, layer.ID, 0.00001, true)
	s.Require().NoError(err)

	from, err := s.routing.SnapPoint(s.ctx, layer.ID, orb.Point{0.5, 0})
	s.Require().NoError(err)
	s.InDelta(0.5, from.Fraction, 1e-9)

	to, err := s.routing.SnapPoint(s.ctx, layer.ID, orb.Point{9.5, 0})
	s.Require().NoError(err)

	edges, err := s.routing.ShortestPath(s.ctx, layer.ID, *from, *to)
	s.Require().NoError(err)
	s.Require().Len(edges, 4)

	var length float64
	for _, e := range edges {
		length += planar.Length(e.Geometry)
	}
	s.InDelta(9.0, length, 1e-6)

	s.InDelta(0.5, edges[0].Geometry[0].X(), 1e-9)
	s.InDelta(9.5, edges[3].Geometry[len(edges[3].Geometry)-1].X(), 1e-9)
	s.JSONEq(`{"name": "center-west"}`, string(edges[1].Properties))
}

func (s *RepositoryTestSuite) TestRouting_ReverseDirection() {
	layer := s.routingLayer()
	_, err := s.routing.CreateTopology(s.ctx, layer.ID, 0.00001, true)
	s.Require().NoError(err)

	from, err := s.routing.SnapPoint(s.ctx, layer.ID, orb.Point{9.5, 0})
	s.Require().NoError(err)
	to, err := s.routing.SnapPoint(s.ctx, layer.ID, orb.Point{0.5, 0})
	s.Require().NoError(err)

	edges, err := s.routing.ShortestPath(s.ctx, layer.ID, *from, *to)
	s.Require().NoError(err)
	s.Require().Len(edges, 4)

	// every edge is oriented along the path
	s.InDelta(9.5, edges[0].Geometry[0].X(), 1e-9)
	s.InDelta(5.0, edges[1].Geometry[len(edges[1].Geometry)-1].X(), 1e-9)
	s.InDelta(1.0, edges[2].Geometry[len(edges[2].Geometry)-1].X(), 1e-9)
	s.InDelta(0.5, edges[3].Geometry[len(edges[3].Geometry)-1].X(), 1e-9)
}

func (s *RepositoryTestSuite) TestRouting_SliceFeature() {
	layer := s.routingLayer()
	snapped, err := s.routing.SnapPoint(s.ctx, layer.ID, orb.Point{3, 0.1})
	s.Require().NoError(err)
	s.InDelta(0.5, snapped.Fraction, 1e-9)

	edge, err := s.routing.SliceFeature(s.ctx, snapped.FeatureID, 0.75, 0.25)
	s.Require().NoError(err)
	s.InDelta(4.0, edge.Geometry[0].X(), 1e-9)
	s.InDelta(2.0, edge.Geometry[len(edge.Geometry)-1].X(), 1e-9)
}

func (s *RepositoryTestSuite) TestRouting_NoSnapOnEmptyLayer() {
	layer := s.newLayer("nothing", domain.GeometryLineString)
	_, err := s.routing.SnapPoint(s.ctx, layer.ID, orb.Point{0, 0})
	s.ErrorIs(err, errors.ErrNoSnap)
}

// ============================================================================
// Processing
// ============================================================================

func (s *RepositoryTestSuite) TestProcessing_Centroid() {
	input := s.newLayer("blocks", domain.GeometryPolygon)
	output := s.newLayer("blocks_centroids", domain.GeometryPoint)
	s.addFeature(input.ID, "a", "POLYGON((0 0, 2 0, 2 2, 0 2, 0 0))", map[string]interface{}{"name": "a"})
	s.addFeature(input.ID, "b", "POLYGON((4 4, 6 4, 6 6, 4 6, 4 4))", nil)

	n, err := s.processing.ProcessLayer(s.ctx, input.ID, output.ID, domain.GeometryOp{Kind: domain.OpCentroid})
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	ext, err := s.layers.Extent(s.ctx, output.ID)
	s.Require().NoError(err)
	s.Equal(orb.Point{1, 1}, ext.Bound.Min)
	s.Equal(orb.Point{5, 5}, ext.Bound.Max)
}
