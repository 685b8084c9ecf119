package testhelpers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/geostore-service/internal/domain"
	"github.com/jmoiron/sqlx"
)

// InsertLayer creates a layer and returns its ID
func InsertLayer(db *sqlx.DB, name string, geomType domain.GeometryType, settings domain.Settings) (int64, error) {
	if settings == nil {
		settings = domain.Settings{}
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return 0, fmt.Errorf("encode settings: %w", err)
	}

	var id int64
	err = db.QueryRowContext(context.Background(),
		"INSERT INTO geostore_layer (name, geom_type, settings) VALUES ($1, $2, $3::jsonb) RETURNING id",
		name, int(geomType), string(raw),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert layer %s: %w", name, err)
	}
	return id, nil
}

// InsertFeature inserts a feature given as WKT in EPSG:4326 and returns its ID
func InsertFeature(db *sqlx.DB, layerID int64, identifier, wkt string, properties map[string]interface{}) (int64, error) {
	if properties == nil {
		properties = map[string]interface{}{}
	}
	raw, err := json.Marshal(properties)
	if err != nil {
		return 0, fmt.Errorf("encode properties: %w", err)
	}

	var id int64
	err = db.QueryRowContext(context.Background(),
		`INSERT INTO geostore_feature (layer_id, identifier, geom, properties)
		VALUES ($1, $2, ST_GeomFromText($3, 4326), $4::jsonb) RETURNING id`,
		layerID, identifier, wkt, string(raw),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert feature %s: %w", identifier, err)
	}
	return id, nil
}
