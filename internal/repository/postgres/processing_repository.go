package postgres

import (
	"context"
	"fmt"

	"github.com/geostore-service/internal/domain"
	"github.com/geostore-service/internal/domain/repository"
	"github.com/geostore-service/internal/pkg/errors"
	"go.uber.org/zap"
)

type processingRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewProcessingRepository создает репозиторий пакетной обработки слоев
func NewProcessingRepository(db *DB) repository.ProcessingRepository {
	return &processingRepository{
		db:     db,
		logger: db.logger,
	}
}

// operationExpression - SQL выражение операции над колонкой geom
func operationExpression(b *queryBuilder, op domain.GeometryOp) (string, error) {
	switch op.Kind {
	case domain.OpSimplify:
		return "ST_SimplifyPreserveTopology(geom, " + b.Arg(op.Param) + "::float8)", nil
	case domain.OpBuffer:
		// буфер в метрах, поэтому через geography
		return "ST_Buffer(geom::geography, " + b.Arg(op.Param) + "::float8)::geometry", nil
	case domain.OpMakeValid:
		return "ST_MakeValid(geom)", nil
	case domain.OpCentroid:
		return "ST_Centroid(geom)", nil
	default:
		return "", errors.ErrUnknownProcessing
	}
}

// ProcessLayer применяет операцию ко всем объектам inputID и вставляет результат в outputID.
// Пустые и невалидные результаты пропускаются.
func (r *processingRepository) ProcessLayer(ctx context.Context, inputID, outputID int64, op domain.GeometryOp) (int64, error) {
	b := newQueryBuilder()
	expr, err := operationExpression(b, op)
	if err != nil {
		return 0, err
	}

	b.With("input_features", `
		SELECT identifier, geom, properties
		FROM `+featureTable+`
		WHERE layer_id = `+b.Arg(inputID))
	b.With("processed", `
		SELECT identifier, `+expr+` AS geom, properties
		FROM input_features`)

	query, args := b.Build(fmt.Sprintf(`
		INSERT INTO %s (layer_id, identifier, geom, properties)
		SELECT %s, identifier, geom, properties
		FROM processed
		WHERE geom IS NOT NULL AND NOT ST_IsEmpty(geom) AND ST_IsValid(geom)`,
		featureTable, b.Arg(outputID)))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to process layer",
			zap.Int64("input_layer", inputID),
			zap.Int64("output_layer", outputID),
			zap.String("operation", string(op.Kind)),
			zap.Error(err),
		)
		return 0, fmt.Errorf("%w: %v", errors.ErrDatabaseError, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrDatabaseError, err)
	}
	return n, nil
}
