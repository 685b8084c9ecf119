package domain

// TileAddress - адрес тайла (slippy map)
type TileAddress struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// TileParams - параметры, влияющие на содержимое тайла (входят в ключ кеша)
type TileParams struct {
	PixelBuffer      int
	FeaturesFilter   map[string]interface{}
	PropertiesFilter []string
	FeaturesLimit    *int
}

// Tile - результат генерации: число объектов и MVT
type Tile struct {
	Count int    `json:"count"`
	MVT   []byte `json:"mvt"`
}

// Empty - в тайле нет объектов (но он уже посчитан)
func (t *Tile) Empty() bool {
	return t.Count == 0
}

// TileJSON - описание тайлового источника (https://github.com/mapbox/tilejson-spec)
type TileJSON struct {
	TileJSON     string        `json:"tilejson"`
	Name         string        `json:"name"`
	Tiles        []string      `json:"tiles"`
	MinZoom      int           `json:"minzoom"`
	MaxZoom      int           `json:"maxzoom"`
	Bounds       [4]float64    `json:"bounds"`
	Center       [3]float64    `json:"center"`
	VectorLayers []VectorLayer `json:"vector_layers"`
	Version      string        `json:"version,omitempty"`
	Attribution  string        `json:"attribution,omitempty"`
}

type VectorLayer struct {
	ID      string            `json:"id"`
	Fields  map[string]string `json:"fields"`
	MinZoom int               `json:"minzoom"`
	MaxZoom int               `json:"maxzoom"`
}
