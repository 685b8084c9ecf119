package usecase_test

import (
	"context"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/mock"

	"github.com/geostore-service/internal/config"
	"github.com/geostore-service/internal/domain"
)

// MockLayerRepository is a mock of LayerRepository
type MockLayerRepository struct {
	mock.Mock
}

func (m *MockLayerRepository) GetByID(ctx context.Context, id int64) (*domain.Layer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Layer), args.Error(1)
}

func (m *MockLayerRepository) GetByName(ctx context.Context, name string) (*domain.Layer, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Layer), args.Error(1)
}

func (m *MockLayerRepository) List(ctx context.Context) ([]*domain.Layer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Layer), args.Error(1)
}

func (m *MockLayerRepository) Create(ctx context.Context, layer *domain.Layer) error {
	args := m.Called(ctx, layer)
	return args.Error(0)
}

func (m *MockLayerRepository) UpdateSettings(ctx context.Context, layer *domain.Layer) error {
	args := m.Called(ctx, layer)
	return args.Error(0)
}

func (m *MockLayerRepository) Version(ctx context.Context, layerID int64) (int64, error) {
	args := m.Called(ctx, layerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLayerRepository) Extent(ctx context.Context, layerID int64) (*domain.LayerExtent, error) {
	args := m.Called(ctx, layerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LayerExtent), args.Error(1)
}

func (m *MockLayerRepository) MeanVertexSpacing(ctx context.Context, layerID int64) (*float64, error) {
	args := m.Called(ctx, layerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*float64), args.Error(1)
}

func (m *MockLayerRepository) PropertyKeys(ctx context.Context, layerID int64) ([]string, error) {
	args := m.Called(ctx, layerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockTileRepository is a mock of TileRepository
type MockTileRepository struct {
	mock.Mock
}

func (m *MockTileRepository) EncodeTile(ctx context.Context, layer *domain.Layer, addr domain.TileAddress, params domain.TileParams) (*domain.Tile, error) {
	args := m.Called(ctx, layer, addr, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tile), args.Error(1)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// MockRoutingRepository is a mock of RoutingRepository
type MockRoutingRepository struct {
	mock.Mock
}

func (m *MockRoutingRepository) SnapPoint(ctx context.Context, layerID int64, p orb.Point) (*domain.SnappedPoint, error) {
	args := m.Called(ctx, layerID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SnappedPoint), args.Error(1)
}

func (m *MockRoutingRepository) SliceFeature(ctx context.Context, featureID int64, from, to float64) (*domain.RouteEdge, error) {
	args := m.Called(ctx, featureID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RouteEdge), args.Error(1)
}

func (m *MockRoutingRepository) ShortestPath(ctx context.Context, layerID int64, from, to domain.SnappedPoint) ([]domain.RouteEdge, error) {
	args := m.Called(ctx, layerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RouteEdge), args.Error(1)
}

func (m *MockRoutingRepository) CreateTopology(ctx context.Context, layerID int64, tolerance float64, clean bool) (string, error) {
	args := m.Called(ctx, layerID, tolerance, clean)
	return args.String(0), args.Error(1)
}

// MockProcessingRepository is a mock of ProcessingRepository
type MockProcessingRepository struct {
	mock.Mock
}

func (m *MockProcessingRepository) ProcessLayer(ctx context.Context, inputID, outputID int64, op domain.GeometryOp) (int64, error) {
	args := m.Called(ctx, inputID, outputID, op)
	return args.Get(0).(int64), args.Error(1)
}

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) ClaimPending(ctx context.Context, stream, group, consumer string, minIdle time.Duration) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, minIdle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

func testConfig() *config.Store {
	return config.NewStaticStore(&config.Config{
		Cache: config.CacheConfig{
			Backend:         "memory",
			TileBaseTTL:     time.Hour,
			SegmentTTL:      time.Hour,
			VersionSegments: true,
		},
		Tile:    config.TileConfig{Width: 512, ExtentRatio: 8},
		Routing: config.RoutingConfig{DefaultTolerance: 0.00001},
		Worker:  config.WorkerConfig{Stream: "stream:tiles:warm"},
	})
}

func ptrInt(v int) *int { return &v }

func ptrFloat64(v float64) *float64 { return &v }
