package tilemath

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
)

func TestTileBBoxCenterMatchesTileCenter(t *testing.T) {
	tiles := []struct{ x, y, z int }{
		{0, 0, 0},
		{1, 0, 1},
		{0, 1, 1},
		{8508, 5911, 14},
		{2063, 1409, 12},
		{4194303, 0, 22},
	}

	for _, tt := range tiles {
		bbox := TileBBox(tt.x, tt.y, tt.z)
		cx, cy := bbox.Center()

		// center of the tile in WGS84, projected back to mercator
		bound := maptile.New(uint32(tt.x), uint32(tt.y), maptile.Zoom(tt.z)).Bound()
		lon := (bound.Min.Lon() + bound.Max.Lon()) / 2
		expectedX := ToMercator(orb.Point{lon, 0}).X()

		nw := ToMercator(orb.Point{bound.Min.Lon(), bound.Max.Lat()})
		se := ToMercator(orb.Point{bound.Max.Lon(), bound.Min.Lat()})
		expectedY := (nw.Y() + se.Y()) / 2

		assert.InDelta(t, expectedX, cx, 1e-3, "x center for %v", tt)
		assert.InDelta(t, expectedY, cy, 1e-3, "y center for %v", tt)
	}
}

func TestTileBBoxWorld(t *testing.T) {
	bbox := TileBBox(0, 0, 0)
	assert.InDelta(t, -MercatorMax, bbox.XMin, 1e-6)
	assert.InDelta(t, MercatorMax, bbox.YMax, 1e-6)
	assert.InDelta(t, EarthCircumference, bbox.Width(), 1e-6)
}

func TestPixelWidths(t *testing.T) {
	bbox := TileBBox(3, 5, 4)
	dx, dy := PixelWidths(bbox, 512)
	assert.InDelta(t, EarthCircumference/16/512, dx, 1e-9)
	assert.InDelta(t, dx, dy, 1e-9)

	dx2, _ := PixelWidths(bbox, 0)
	assert.Equal(t, dx, dx2, "zero width falls back to 512")
}

func TestValidTile(t *testing.T) {
	assert.True(t, ValidTile(0, 0, 0))
	assert.True(t, ValidTile(3, 3, 2))
	assert.False(t, ValidTile(4, 0, 2))
	assert.False(t, ValidTile(0, -1, 2))
	assert.False(t, ValidTile(0, 0, -1))
	assert.False(t, ValidTile(0, 0, 23))
}

func TestTilesInBounds(t *testing.T) {
	t.Run("whole world at zoom 1", func(t *testing.T) {
		tiles := TilesInBounds(orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{179.9, 90}}, 1)
		assert.Len(t, tiles, 4)
	})

	t.Run("single point", func(t *testing.T) {
		p := orb.Point{2.1734, 41.3851}
		tiles := TilesInBounds(orb.Bound{Min: p, Max: p}, 14)
		assert.Equal(t, []maptile.Tile{maptile.At(p, 14)}, tiles)
	})

	t.Run("antimeridian and south edge stay in range", func(t *testing.T) {
		bounds := []orb.Bound{
			{Min: orb.Point{170, -10}, Max: orb.Point{180, 10}},
			{Min: orb.Point{180, 0}, Max: orb.Point{180, 0}},
			{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}},
		}
		for _, b := range bounds {
			for z := 0; z <= 4; z++ {
				tiles := TilesInBounds(b, z)
				assert.NotEmpty(t, tiles, "bound %v z=%d", b, z)
				for _, tile := range tiles {
					assert.True(t, ValidTile(int(tile.X), int(tile.Y), z), "bound %v: tile %v", b, tile)
				}
			}
		}

		world := TilesInBounds(orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}, 2)
		assert.Len(t, world, 16)
	})

	t.Run("every tile intersects", func(t *testing.T) {
		b := orb.Bound{Min: orb.Point{0.5, 0.1}, Max: orb.Point{9.5, 1}}
		for _, tile := range TilesInBounds(b, 8) {
			assert.True(t, tile.Bound().Intersects(b), "tile %v", tile)
		}
	})
}

func TestBBoxExpand(t *testing.T) {
	b := BBox{0, 0, 10, 10}.Expand(1, 2)
	assert.Equal(t, BBox{-1, -2, 11, 12}, b)
	assert.False(t, math.IsNaN(b.Width()))
}

func TestMercatorSize(t *testing.T) {
	w, h := MercatorSize(orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}})
	assert.InDelta(t, EarthCircumference, w, 1e-3)
	assert.InDelta(t, EarthCircumference, h, 100)

	w, h = MercatorSize(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 0}})
	assert.InDelta(t, EarthCircumference/36, w, 1e-3)
	assert.Zero(t, h)
}
