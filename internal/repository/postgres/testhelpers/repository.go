package testhelpers

import (
	"github.com/geostore-service/internal/domain/repository"
	"github.com/geostore-service/internal/repository/postgres"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewLayerRepositoryForTest creates a layer repository with test database and logger
func NewLayerRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.LayerRepository {
	return postgres.NewLayerRepository(NewDBForTest(db, logger))
}

// NewTileRepositoryForTest creates a tile repository with 512px tiles and 4096 extent
func NewTileRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.TileRepository {
	return postgres.NewTileRepository(NewDBForTest(db, logger), 512, 8)
}

// NewRoutingRepositoryForTest creates a routing repository with test database and logger
func NewRoutingRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.RoutingRepository {
	return postgres.NewRoutingRepository(NewDBForTest(db, logger))
}

// NewProcessingRepositoryForTest creates a processing repository with test database and logger
func NewProcessingRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.ProcessingRepository {
	return postgres.NewProcessingRepository(NewDBForTest(db, logger))
}
