package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/geostore-service/internal/domain"
	"github.com/geostore-service/internal/domain/repository"
	"github.com/geostore-service/internal/pkg/errors"
	"github.com/geostore-service/internal/pkg/tilemath"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

type layerRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewLayerRepository создает репозиторий слоев
func NewLayerRepository(db *DB) repository.LayerRepository {
	return &layerRepository{
		db:     db,
		logger: db.logger,
	}
}

// layerRow - строка geostore_layer; настройки читаются как сырой JSON
type layerRow struct {
	ID           int64               `db:"id"`
	Name         string              `db:"name"`
	GeometryType domain.GeometryType `db:"geom_type"`
	Settings     []byte              `db:"settings"`
	Routable     bool                `db:"routable"`
	CreatedAt    time.Time           `db:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at"`
}

func (row *layerRow) toDomain() (*domain.Layer, error) {
	layer := &domain.Layer{
		ID:           row.ID,
		Name:         row.Name,
		GeometryType: row.GeometryType,
		Routable:     row.Routable,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		Settings:     domain.Settings{},
	}
	if len(row.Settings) > 0 {
		if err := json.Unmarshal(row.Settings, &layer.Settings); err != nil {
			return nil, fmt.Errorf("layer %d: decode settings: %w", row.ID, err)
		}
	}
	return layer, nil
}

const layerColumns = `id, name, geom_type, settings, routable, created_at, updated_at`

func (r *layerRepository) GetByID(ctx context.Context, id int64) (*domain.Layer, error) {
	query := `SELECT ` + layerColumns + ` FROM ` + layerTable + ` WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *layerRepository) GetByName(ctx context.Context, name string) (*domain.Layer, error) {
	query := `SELECT ` + layerColumns + ` FROM ` + layerTable + ` WHERE name = $1`
	return r.getOne(ctx, query, name)
}

func (r *layerRepository) getOne(ctx context.Context, query string, arg interface{}) (*domain.Layer, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var row layerRow
	err := r.db.GetContext(ctx, &row, query, arg)
	if err == sql.ErrNoRows {
		return nil, errors.ErrLayerNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get layer", zap.Any("key", arg), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", errors.ErrDatabaseError, err)
	}
	return row.toDomain()
}

func (r *layerRepository) List(ctx context.Context) ([]*domain.Layer, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var rows []layerRow
	query := `SELECT ` + layerColumns + ` FROM ` + layerTable + ` ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		r.logger.Error("Failed to list layers", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", errors.ErrDatabaseError, err)
	}

	layers := make([]*domain.Layer, 0, len(rows))
	for i := range rows {
		layer, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		layers = append(layers, layer)
	}
	return layers, nil
}

// Create вставляет слой и заполняет ID и временные метки
func (r *layerRepository) Create(ctx context.Context, layer *domain.Layer) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	settings, err := json.Marshal(settingsOrEmpty(layer.Settings))
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	query := `
		INSERT INTO ` + layerTable + ` (name, geom_type, settings, routable)
		VALUES ($1, $2, $3::jsonb, $4)
		RETURNING id, created_at, updated_at`
	err = r.db.QueryRowxContext(ctx, query, layer.Name, int(layer.GeometryType), string(settings), layer.Routable).
		Scan(&layer.ID, &layer.CreatedAt, &layer.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create layer", zap.String("name", layer.Name), zap.Error(err))
		return fmt.Errorf("%w: %v", errors.ErrDatabaseError, err)
	}
	return nil
}

func (r *layerRepository) UpdateSettings(ctx context.Context, layer *domain.Layer) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	settings, err := json.Marshal(settingsOrEmpty(layer.Settings))
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE `+layerTable+` SET settings = $1::jsonb WHERE id = $2`,
		string(settings), layer.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update layer settings", zap.Int64("layer_id", layer.ID), zap.Error(err))
		return fmt.Errorf("%w: %v", errors.ErrDatabaseError, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrLayerNotFound
	}
	return nil
}

// Version - секунды UNIX последнего изменения объектов слоя; 1 если объектов нет
func (r *layerRepository) Version(ctx context.Context, layerID int64) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT COALESCE(EXTRACT(EPOCH FROM date_trunc('second', max(updated_at)))::bigint, 1)
		FROM ` + featureTable + `
		WHERE layer_id = $1`

	var version int64
	if err := r.db.GetContext(ctx, &version, query, layerID); err != nil {
		r.logger.Error("Failed to get layer version", zap.Int64("layer_id", layerID), zap.Error(err))
		return 0, fmt.Errorf("%w: %v", errors.ErrDatabaseError, err)
	}
	return version, nil
}

func (r *layerRepository) Extent(ctx context.Context, layerID int64) (*domain.LayerExtent, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `
		WITH ext AS (
			SELECT ST_Extent(geom) AS box FROM ` + featureTable + ` WHERE layer_id = $1
		)
		SELECT ST_XMin(box) AS xmin, ST_YMin(box) AS ymin, ST_XMax(box) AS xmax, ST_YMax(box) AS ymax
		FROM ext`

	var row struct {
		XMin sql.NullFloat64 `db:"xmin"`
		YMin sql.NullFloat64 `db:"ymin"`
		XMax sql.NullFloat64 `db:"xmax"`
		YMax sql.NullFloat64 `db:"ymax"`
	}
	if err := r.db.GetContext(ctx, &row, query, layerID); err != nil {
		r.logger.Error("Failed to get layer extent", zap.Int64("layer_id", layerID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", errors.ErrDatabaseError, err)
	}

	if !row.XMin.Valid {
		return &domain.LayerExtent{Empty: true}, nil
	}

	bound := orb.Bound{
		Min: orb.Point{row.XMin.Float64, row.YMin.Float64},
		Max: orb.Point{row.XMax.Float64, row.YMax.Float64},
	}
	w, h := tilemath.MercatorSize(bound)
	return &domain.LayerExtent{Bound: bound, MercWidth: w, MercHeight: h}, nil
}

// MeanVertexSpacing считает среднее геометрическое расстояний между соседними
// различными x-координатами вершин слоя в EPSG:3857
func (r *layerRepository) MeanVertexSpacing(ctx context.Context, layerID int64) (*float64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `
		WITH xs AS (
			SELECT DISTINCT ST_X(ST_Transform(dp.geom, 3857)) AS x
			FROM ` + featureTable + ` f, LATERAL ST_DumpPoints(f.geom) AS dp
			WHERE f.layer_id = $1
		),
		gaps AS (
			SELECT x - lag(x) OVER (ORDER BY x) AS dst FROM xs
		)
		SELECT exp(avg(ln(dst))) FROM gaps WHERE dst > 0`

	var mean sql.NullFloat64
	if err := r.db.GetContext(ctx, &mean, query, layerID); err != nil {
		r.logger.Error("Failed to compute vertex spacing", zap.Int64("layer_id", layerID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", errors.ErrDatabaseError, err)
	}
	if !mean.Valid {
		return nil, nil
	}
	return &mean.Float64, nil
}

func (r *layerRepository) PropertyKeys(ctx context.Context, layerID int64) ([]string, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT DISTINCT k
		FROM ` + featureTable + ` f, jsonb_object_keys(f.properties) AS k
		WHERE f.layer_id = $1
		ORDER BY k`

	keys := []string{}
	if err := r.db.SelectContext(ctx, &keys, query, layerID); err != nil {
		r.logger.Error("Failed to list property keys", zap.Int64("layer_id", layerID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", errors.ErrDatabaseError, err)
	}
	return keys, nil
}

func settingsOrEmpty(s domain.Settings) domain.Settings {
	if s == nil {
		return domain.Settings{}
	}
	return s
}
