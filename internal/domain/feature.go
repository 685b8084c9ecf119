package domain

import (
	"encoding/json"
	"time"

	"github.com/paulmach/orb"
)

// Feature - объект слоя: геометрия + JSON свойства
type Feature struct {
	ID         int64           `json:"id" db:"id"`
	LayerID    int64           `json:"layer_id" db:"layer_id"`
	Identifier string          `json:"identifier" db:"identifier"`
	Geometry   orb.Geometry    `json:"-" db:"-"`
	Properties json.RawMessage `json:"properties" db:"properties"`
	Source     *int64          `json:"source,omitempty" db:"source"`
	Target     *int64          `json:"target,omitempty" db:"target"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// LayerExtent - охват слоя в WGS84 и в EPSG:3857
type LayerExtent struct {
	Bound       orb.Bound
	MercWidth   float64
	MercHeight  float64
	Empty       bool
	MeanSpacing *float64
}
