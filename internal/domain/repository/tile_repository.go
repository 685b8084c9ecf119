package repository

import (
	"context"

	"github.com/geostore-service/internal/domain"
)

// TileRepository - генерация MVT средствами PostGIS
type TileRepository interface {
	// EncodeTile выбирает объекты слоя для тайла и кодирует их через ST_AsMVT
	EncodeTile(ctx context.Context, layer *domain.Layer, addr domain.TileAddress, params domain.TileParams) (*domain.Tile, error)
}
