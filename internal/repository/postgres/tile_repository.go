package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/geostore-service/internal/domain"
	"github.com/geostore-service/internal/domain/repository"
	"github.com/geostore-service/internal/pkg/errors"
	"go.uber.org/zap"
)

type tileRepository struct {
	db          *DB
	tileWidth   int
	extentRatio int
}

// NewTileRepository создает генератор MVT тайлов поверх PostGIS
func NewTileRepository(db *DB, tileWidth, extentRatio int) repository.TileRepository {
	return &tileRepository{
		db:          db,
		tileWidth:   tileWidth,
		extentRatio: extentRatio,
	}
}

// EncodeTile выполняет запрос тайла и возвращает число объектов и MVT
func (r *tileRepository) EncodeTile(
	ctx context.Context,
	layer *domain.Layer,
	addr domain.TileAddress,
	params domain.TileParams,
) (*domain.Tile, error) {
	q := TileQuery{
		LayerID:      layer.ID,
		LayerName:    layer.Name,
		GeometryType: layer.GeometryType,
		Addr:         addr,
		Params:       params,
		TileWidth:    r.tileWidth,
		Extent:       r.tileWidth * r.extentRatio,
	}

	query, args, err := q.Build()
	if err != nil {
		return nil, fmt.Errorf("build tile query: %w", err)
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	var row struct {
		Count int    `db:"count"`
		MVT   []byte `db:"mvt"`
	}
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		r.db.logger.Error("failed to encode tile",
			zap.Int64("layer_id", layer.ID),
			zap.Int("z", addr.Z), zap.Int("x", addr.X), zap.Int("y", addr.Y),
			zap.Error(err),
		)
		return nil, fmt.Errorf("encode tile %d/%d/%d of layer %d: %w: %v",
			addr.Z, addr.X, addr.Y, layer.ID, errors.ErrDatabaseError, err)
	}

	r.db.logger.Debug("tile encoded",
		zap.Int64("layer_id", layer.ID),
		zap.Int("z", addr.Z), zap.Int("x", addr.X), zap.Int("y", addr.Y),
		zap.Int("count", row.Count),
		zap.Int("bytes", len(row.MVT)),
		zap.Duration("took", time.Since(start)),
	)

	if row.MVT == nil {
		row.MVT = []byte{}
	}
	return &domain.Tile{Count: row.Count, MVT: row.MVT}, nil
}
