package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/geostore-service/internal/domain"
	"github.com/geostore-service/internal/domain/repository"
	"github.com/geostore-service/internal/pkg/errors"
	"github.com/geostore-service/internal/usecase/dto"
)

// ProcessingFunc проверяет параметры запроса и строит операцию
type ProcessingFunc func(params map[string]float64) (domain.GeometryOp, error)

// processing - зарегистрированная операция и тип геометрии ее результата
type processing struct {
	build  ProcessingFunc
	output func(input domain.GeometryType) domain.GeometryType
}

func sameType(t domain.GeometryType) domain.GeometryType { return t }

func positiveParam(kind domain.GeometryOpKind, name string) ProcessingFunc {
	return func(params map[string]float64) (domain.GeometryOp, error) {
		v, ok := params[name]
		if !ok || v <= 0 {
			return domain.GeometryOp{}, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
				name: "must be a positive number",
			})
		}
		return domain.GeometryOp{Kind: kind, Param: v}, nil
	}
}

func noParams(kind domain.GeometryOpKind) ProcessingFunc {
	return func(map[string]float64) (domain.GeometryOp, error) {
		return domain.GeometryOp{Kind: kind}, nil
	}
}

var processings = map[string]processing{
	string(domain.OpSimplify): {
		build:  positiveParam(domain.OpSimplify, "tolerance"),
		output: sameType,
	},
	string(domain.OpBuffer): {
		build:  positiveParam(domain.OpBuffer, "distance"),
		output: func(domain.GeometryType) domain.GeometryType { return domain.GeometryPolygon },
	},
	string(domain.OpMakeValid): {
		build:  noParams(domain.OpMakeValid),
		output: sameType,
	},
	string(domain.OpCentroid): {
		build:  noParams(domain.OpCentroid),
		output: func(domain.GeometryType) domain.GeometryType { return domain.GeometryPoint },
	},
}

// ProcessingUseCase - пакетные геометрические операции над слоями
type ProcessingUseCase struct {
	layerRepo      repository.LayerRepository
	processingRepo repository.ProcessingRepository
	logger         *zap.Logger
}

func NewProcessingUseCase(
	layerRepo repository.LayerRepository,
	processingRepo repository.ProcessingRepository,
	logger *zap.Logger,
) *ProcessingUseCase {
	return &ProcessingUseCase{
		layerRepo:      layerRepo,
		processingRepo: processingRepo,
		logger:         logger,
	}
}

// Operations - имена зарегистрированных операций
func (uc *ProcessingUseCase) Operations() []string {
	names := make([]string, 0, len(processings))
	for name := range processings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Process применяет операцию к входному слою и пишет результат в выходной.
// Выходной слой создается, если его нет.
func (uc *ProcessingUseCase) Process(ctx context.Context, req dto.ProcessRequest) (*dto.ProcessResponse, error) {
	proc, ok := processings[req.Operation]
	if !ok {
		return nil, errors.ErrUnknownProcessing.WithDetails(map[string]interface{}{
			"operation": req.Operation,
			"available": uc.Operations(),
		})
	}
	op, err := proc.build(req.Params)
	if err != nil {
		return nil, err
	}

	input, err := resolveLayer(ctx, uc.layerRepo, req.Input)
	if err != nil {
		return nil, err
	}

	output, err := uc.outputLayer(ctx, req.Output, proc.output(input.GeometryType))
	if err != nil {
		return nil, err
	}
	if output.ID == input.ID {
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"output": "must differ from input",
		})
	}

	n, err := uc.processingRepo.ProcessLayer(ctx, input.ID, output.ID, op)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Layer processed",
		zap.String("input", input.Name),
		zap.String("output", output.Name),
		zap.String("operation", req.Operation),
		zap.Int64("features", n),
	)

	return &dto.ProcessResponse{
		InputLayer:  input.Name,
		OutputLayer: output.Name,
		OutputID:    output.ID,
		Operation:   req.Operation,
		Features:    n,
	}, nil
}

func (uc *ProcessingUseCase) outputLayer(ctx context.Context, name string, geomType domain.GeometryType) (*domain.Layer, error) {
	layer, err := resolveLayer(ctx, uc.layerRepo, name)
	if err == nil {
		return layer, nil
	}
	if !stderrors.Is(err, errors.ErrLayerNotFound) {
		return nil, err
	}

	layer = &domain.Layer{
		Name:         name,
		GeometryType: geomType,
		Settings:     domain.Settings{},
	}
	if err := uc.layerRepo.Create(ctx, layer); err != nil {
		return nil, fmt.Errorf("create output layer %s: %w", name, err)
	}
	return layer, nil
}
