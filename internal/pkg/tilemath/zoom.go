package tilemath

import "math"

const (
	// FallbackMaxZoom is used when point spacing cannot be measured.
	FallbackMaxZoom = 14

	// MinZoomTileFraction: a dataset narrower than 1/8 of a tile is
	// considered invisible at that zoom.
	MinZoomTileFraction = 8
)

// GuessMaxZoom derives a max zoom from the geometric mean spacing between
// consecutive vertices (EPSG:3857 units). A nil or non-positive spacing means
// the layer has fewer than two distinct vertices.
func GuessMaxZoom(meanSpacing *float64, tileResolution int) int {
	if meanSpacing == nil || *meanSpacing <= 0 || math.IsNaN(*meanSpacing) || math.IsInf(*meanSpacing, 0) {
		return FallbackMaxZoom
	}
	if tileResolution <= 0 {
		tileResolution = DefaultTileWidth * 8
	}

	pixels := EarthCircumference / *meanSpacing
	zoom := int(math.Ceil(math.Log2(pixels / float64(tileResolution))))
	return clampZoom(zoom)
}

// GuessMinZoom derives a min zoom from the layer extent (EPSG:3857 units).
func GuessMinZoom(width, height float64) int {
	extent := math.Min(width, height)
	if extent <= 0 || math.IsNaN(extent) {
		return 0
	}

	zoom := int(math.Floor(math.Log2(EarthCircumference / (extent * MinZoomTileFraction))))
	return clampZoom(zoom)
}

func clampZoom(z int) int {
	if z < 0 {
		return 0
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
