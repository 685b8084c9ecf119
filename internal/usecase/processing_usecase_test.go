package usecase_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geostore-service/internal/domain"
	"github.com/geostore-service/internal/pkg/errors"
	"github.com/geostore-service/internal/usecase"
	"github.com/geostore-service/internal/usecase/dto"
)

func TestProcessingUseCase_Operations(t *testing.T) {
	uc := usecase.NewProcessingUseCase(&MockLayerRepository{}, &MockProcessingRepository{}, zap.NewNop())

	assert.Equal(t, []string{"buffer", "centroid", "make_valid", "simplify"}, uc.Operations())
}

func TestProcessingUseCase_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown operation", func(t *testing.T) {
		layers := &MockLayerRepository{}
		uc := usecase.NewProcessingUseCase(layers, &MockProcessingRepository{}, zap.NewNop())

		_, err := uc.Process(ctx, dto.ProcessRequest{Input: "roads", Output: "out", Operation: "explode"})

		assert.True(t, stderrors.Is(err, errors.ErrUnknownProcessing))
		layers.AssertNotCalled(t, "GetByName", mock.Anything, mock.Anything)
	})

	t.Run("missing parameter", func(t *testing.T) {
		uc := usecase.NewProcessingUseCase(&MockLayerRepository{}, &MockProcessingRepository{}, zap.NewNop())

		_, err := uc.Process(ctx, dto.ProcessRequest{Input: "roads", Output: "out", Operation: "simplify"})

		assert.True(t, stderrors.Is(err, errors.ErrInvalidRequest))
	})

	t.Run("buffer creates polygon output layer", func(t *testing.T) {
		layers := &MockLayerRepository{}
		proc := &MockProcessingRepository{}
		uc := usecase.NewProcessingUseCase(layers, proc, zap.NewNop())

		layers.On("GetByName", ctx, "roads").Return(roadsLayer(), nil)
		layers.On("GetByName", ctx, "roads_buffer").Return(nil, errors.ErrLayerNotFound)
		layers.On("Create", ctx, mock.MatchedBy(func(l *domain.Layer) bool {
			return l.Name == "roads_buffer" && l.GeometryType == domain.GeometryPolygon
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Layer).ID = 9
		}).Return(nil)
		proc.On("ProcessLayer", ctx, int64(3), int64(9), domain.GeometryOp{Kind: domain.OpBuffer, Param: 25}).
			Return(int64(4), nil)

		resp, err := uc.Process(ctx, dto.ProcessRequest{
			Input:     "roads",
			Output:    "roads_buffer",
			Operation: "buffer",
			Params:    map[string]float64{"distance": 25},
		})

		require.NoError(t, err)
		assert.Equal(t, int64(9), resp.OutputID)
		assert.Equal(t, int64(4), resp.Features)
		layers.AssertExpectations(t)
	})

	t.Run("output must differ from input", func(t *testing.T) {
		layers := &MockLayerRepository{}
		uc := usecase.NewProcessingUseCase(layers, &MockProcessingRepository{}, zap.NewNop())
		layers.On("GetByName", ctx, "roads").Return(roadsLayer(), nil)

		_, err := uc.Process(ctx, dto.ProcessRequest{Input: "roads", Output: "roads", Operation: "make_valid"})

		assert.True(t, stderrors.Is(err, errors.ErrInvalidRequest))
	})
}
