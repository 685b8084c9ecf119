// Package tilemath holds the slippy-map and Web Mercator arithmetic shared by
// tile generation, zoom estimation and cache pre-warming.
package tilemath

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/project"
)

const (
	// MercatorMax is the half-width of the EPSG:3857 square world, in metres.
	MercatorMax = 20037508.342789244

	// EarthCircumference is the equatorial circumference in EPSG:3857 units.
	EarthCircumference = 2 * MercatorMax

	// MaxZoom bounds both tile addressing and zoom guesses.
	MaxZoom = 22

	DefaultTileWidth = 512
)

// BBox is an axis-aligned box in projected (EPSG:3857) coordinates.
type BBox struct {
	XMin, YMin, XMax, YMax float64
}

func (b BBox) Width() float64  { return b.XMax - b.XMin }
func (b BBox) Height() float64 { return b.YMax - b.YMin }

func (b BBox) Center() (float64, float64) {
	return (b.XMin + b.XMax) / 2, (b.YMin + b.YMax) / 2
}

// Expand grows the box by dx on the x axis and dy on the y axis, on each side.
func (b BBox) Expand(dx, dy float64) BBox {
	return BBox{XMin: b.XMin - dx, YMin: b.YMin - dy, XMax: b.XMax + dx, YMax: b.YMax + dy}
}

// ValidTile reports whether (x, y, z) addresses an existing tile.
func ValidTile(x, y, z int) bool {
	if z < 0 || z > MaxZoom {
		return false
	}
	n := 1 << uint(z)
	return x >= 0 && y >= 0 && x < n && y < n
}

// TileBBox returns the EPSG:3857 bounds of tile (x, y, z). Callers validate
// the address with ValidTile first.
func TileBBox(x, y, z int) BBox {
	size := EarthCircumference / math.Exp2(float64(z))
	return BBox{
		XMin: -MercatorMax + size*float64(x),
		XMax: -MercatorMax + size*float64(x+1),
		YMin: MercatorMax - size*float64(y+1),
		YMax: MercatorMax - size*float64(y),
	}
}

// PixelWidths returns the size of one tile pixel along each axis.
func PixelWidths(bbox BBox, tileWidthPx int) (float64, float64) {
	if tileWidthPx <= 0 {
		tileWidthPx = DefaultTileWidth
	}
	return bbox.Width() / float64(tileWidthPx), bbox.Height() / float64(tileWidthPx)
}

// ToMercator projects a WGS84 lon/lat point into EPSG:3857.
func ToMercator(p orb.Point) orb.Point {
	return project.WGS84.ToMercator(p)
}

// TilesInBounds lists every tile at zoom z that intersects a WGS84 bound.
func TilesInBounds(bound orb.Bound, z int) []maptile.Tile {
	zoom := maptile.Zoom(z)
	bound = clampLatitude(bound)
	minTile := maptile.At(orb.Point{bound.Min.Lon(), bound.Max.Lat()}, zoom)
	maxTile := maptile.At(orb.Point{bound.Max.Lon(), bound.Min.Lat()}, zoom)

	minX, maxX := minTile.X, maxTile.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := minTile.Y, maxTile.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}

	// lon 180 и южная граница проекции дают индекс 2^z
	last := uint32(1)<<uint32(z) - 1
	maxX = min(maxX, last)
	maxY = min(maxY, last)
	minX = min(minX, last)
	minY = min(minY, last)

	tiles := make([]maptile.Tile, 0, int(maxX-minX+1)*int(maxY-minY+1))
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			tiles = append(tiles, maptile.New(x, y, zoom))
		}
	}
	return tiles
}

const maxLatitude = 85.05112

func clampLatitude(b orb.Bound) orb.Bound {
	clamp := func(lat float64) float64 {
		return math.Max(-maxLatitude, math.Min(maxLatitude, lat))
	}
	b.Min[1] = clamp(b.Min[1])
	b.Max[1] = clamp(b.Max[1])
	return b
}

// MercatorSize returns the EPSG:3857 width and height of a WGS84 bound.
// Latitudes are clamped to the Web Mercator limits first.
func MercatorSize(bound orb.Bound) (float64, float64) {
	bound = clampLatitude(bound)
	min := ToMercator(bound.Min)
	max := ToMercator(bound.Max)
	return max.X() - min.X(), max.Y() - min.Y()
}
