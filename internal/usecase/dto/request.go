package dto

import "github.com/paulmach/orb"

// Point - координаты точки WGS84. Ноль допустим, поэтому без required.
type Point struct {
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
}

func (p Point) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// RouteRequest - запрос маршрута через точки по порядку
type RouteRequest struct {
	Points []Point `json:"points" validate:"required,min=2,max=100,dive"`
}

// OrbPoints переводит точки запроса в orb
func (r *RouteRequest) OrbPoints() []orb.Point {
	out := make([]orb.Point, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Orb()
	}
	return out
}

// TopologyRequest - построение топологии маршрутизации слоя
type TopologyRequest struct {
	Tolerance *float64 `json:"tolerance,omitempty" validate:"omitempty,gt=0"`
	Clean     bool     `json:"clean"`
}

// WarmTilesRequest - прогрев кеша тайлов; пустые зумы берутся из настроек слоя
type WarmTilesRequest struct {
	MinZoom *int `json:"minzoom,omitempty" validate:"omitempty,min=0,max=22"`
	MaxZoom *int `json:"maxzoom,omitempty" validate:"omitempty,min=0,max=22"`
}

// ProcessRequest - пакетная обработка слоя
type ProcessRequest struct {
	Input     string             `json:"input" validate:"required"`
	Output    string             `json:"output" validate:"required"`
	Operation string             `json:"operation" validate:"required"`
	Params    map[string]float64 `json:"params,omitempty"`
}
