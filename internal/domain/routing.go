package domain

import (
	"encoding/json"

	"github.com/paulmach/orb"
)

const (
	// FractionEpsilon - сдвиг дробной позиции от концов линии,
	// чтобы не попадать точно в узел топологии
	FractionEpsilon = 1e-5
)

// SnappedPoint - точка, спроецированная на ближайшее ребро слоя
type SnappedPoint struct {
	FeatureID int64   `json:"feature_id" db:"id"`
	Fraction  float64 `json:"fraction" db:"fraction"`
}

// ClampFraction отодвигает 0 и 1 внутрь линии на FractionEpsilon
func ClampFraction(f float64) float64 {
	if f <= 0 {
		return FractionEpsilon
	}
	if f >= 1 {
		return 1 - FractionEpsilon
	}
	return f
}

// RouteEdge - часть маршрута: геометрия ребра (полная или обрезанная) и его свойства
type RouteEdge struct {
	FeatureID  int64           `json:"feature_id"`
	Geometry   orb.LineString  `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

// TopologyResult - итог построения топологии маршрутизации
type TopologyResult struct {
	LayerID   int64   `json:"layer_id"`
	Tolerance float64 `json:"tolerance"`
	Status    string  `json:"status"`
}
