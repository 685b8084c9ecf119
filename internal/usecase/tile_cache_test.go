package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/geostore-service/internal/domain"
)

func limitPtr(v int) *int { return &v }

func TestTileCacheKey_Deterministic(t *testing.T) {
	addr := domain.TileAddress{X: 1, Y: 2, Z: 3}
	params := domain.TileParams{
		PixelBuffer:      4,
		FeaturesFilter:   map[string]interface{}{"b": 1, "a": "x"},
		PropertiesFilter: []string{"name"},
		FeaturesLimit:    limitPtr(100),
	}
	same := domain.TileParams{
		PixelBuffer:      4,
		FeaturesFilter:   map[string]interface{}{"a": "x", "b": 1},
		PropertiesFilter: []string{"name"},
		FeaturesLimit:    limitPtr(100),
	}

	assert.Equal(t, TileCacheKey("layer1", addr, params), TileCacheKey("layer1", addr, same))
}

func TestTileCacheKey_EveryParameterMatters(t *testing.T) {
	addr := domain.TileAddress{X: 1, Y: 2, Z: 3}
	base := domain.TileParams{
		PixelBuffer:      4,
		FeaturesFilter:   map[string]interface{}{"kind": "road"},
		PropertiesFilter: []string{"name"},
		FeaturesLimit:    limitPtr(100),
	}
	key := TileCacheKey("layer1", addr, base)

	variants := map[string]func() (string, domain.TileAddress, domain.TileParams){
		"layer": func() (string, domain.TileAddress, domain.TileParams) { return "layer2", addr, base },
		"x": func() (string, domain.TileAddress, domain.TileParams) {
			return "layer1", domain.TileAddress{X: 2, Y: 2, Z: 3}, base
		},
		"y": func() (string, domain.TileAddress, domain.TileParams) {
			return "layer1", domain.TileAddress{X: 1, Y: 3, Z: 3}, base
		},
		"z": func() (string, domain.TileAddress, domain.TileParams) {
			return "layer1", domain.TileAddress{X: 1, Y: 2, Z: 4}, base
		},
		"pixel buffer": func() (string, domain.TileAddress, domain.TileParams) {
			p := base
			p.PixelBuffer = 8
			return "layer1", addr, p
		},
		"features filter": func() (string, domain.TileAddress, domain.TileParams) {
			p := base
			p.FeaturesFilter = map[string]interface{}{"kind": "rail"}
			return "layer1", addr, p
		},
		"properties filter": func() (string, domain.TileAddress, domain.TileParams) {
			p := base
			p.PropertiesFilter = []string{"name", "ref"}
			return "layer1", addr, p
		},
		"no properties": func() (string, domain.TileAddress, domain.TileParams) {
			p := base
			p.PropertiesFilter = []string{}
			return "layer1", addr, p
		},
		"limit": func() (string, domain.TileAddress, domain.TileParams) {
			p := base
			p.FeaturesLimit = limitPtr(10)
			return "layer1", addr, p
		},
		"no limit": func() (string, domain.TileAddress, domain.TileParams) {
			p := base
			p.FeaturesLimit = nil
			return "layer1", addr, p
		},
	}

	for name, variant := range variants {
		t.Run(name, func(t *testing.T) {
			assert.NotEqual(t, key, TileCacheKey(variant()))
		})
	}
}

func TestTileTTL(t *testing.T) {
	week := 7 * 24 * time.Hour
	mid := func() float64 { return 0.5 }

	// log_5(5) = 1
	assert.Equal(t, week, TileTTL(week, 5, mid))

	// higher zoom expires faster
	assert.Greater(t, TileTTL(week, 3, mid), TileTTL(week, 10, mid))
	assert.Greater(t, TileTTL(week, 10, mid), TileTTL(week, 22, mid))

	// zoom 0 and 1 are treated as 2
	assert.Equal(t, TileTTL(week, 2, mid), TileTTL(week, 0, mid))
	assert.Equal(t, TileTTL(week, 2, mid), TileTTL(week, 1, mid))

	// jitter stays within +-10%
	low := TileTTL(week, 5, func() float64 { return 0 })
	high := TileTTL(week, 5, func() float64 { return 0.999999 })
	assert.InDelta(t, float64(week)*0.9, float64(low), float64(time.Second))
	assert.InDelta(t, float64(week)*1.1, float64(high), float64(time.Minute))
}
