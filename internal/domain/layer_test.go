package domain

import (
	"encoding/json"
	"errors"
	"testing"

	pkgerrors "github.com/geostore-service/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layerWithSettings(t *testing.T, raw string) *Layer {
	t.Helper()
	var s Settings
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	return &Layer{ID: 1, Name: "roads", GeometryType: GeometryLineString, Settings: s}
}

func TestDeepMerge(t *testing.T) {
	base := map[string]interface{}{
		"tiles": map[string]interface{}{"minzoom": 0, "maxzoom": 22},
		"other": "x",
	}
	override := map[string]interface{}{
		"tiles": map[string]interface{}{"maxzoom": 14},
	}

	merged := DeepMerge(base, override)

	assert.Equal(t, map[string]interface{}{"minzoom": 0, "maxzoom": 14}, merged["tiles"])
	assert.Equal(t, "x", merged["other"])
	assert.Equal(t, 22, base["tiles"].(map[string]interface{})["maxzoom"], "base must not change")
}

func TestLayerSetting(t *testing.T) {
	layer := layerWithSettings(t, `{"tiles": {"pixel_buffer": 8}}`)

	_, err := layer.Setting("tiles", "maxzoom")
	assert.True(t, errors.Is(err, pkgerrors.ErrSettingNotFound))

	v, err := layer.SettingWithDefault("tiles", "maxzoom")
	require.NoError(t, err)
	assert.Equal(t, float64(22), v)

	v, err = layer.SettingWithDefault("tiles", "pixel_buffer")
	require.NoError(t, err)
	assert.Equal(t, float64(8), v)

	_, err = layer.SettingWithDefault("routing", "tolerance")
	assert.True(t, errors.Is(err, pkgerrors.ErrSettingNotFound))
}

func TestLayerSetSetting(t *testing.T) {
	layer := &Layer{}
	layer.SetSetting("tiles", "minzoom", 5)

	v, err := layer.Setting("tiles", "minzoom")
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestLayerTileSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		ts, err := (&Layer{}).TileSettings()
		require.NoError(t, err)
		assert.Equal(t, 4, ts.PixelBuffer)
		assert.Nil(t, ts.FeaturesFilter)
		assert.Nil(t, ts.PropertiesFilter)
		require.NotNil(t, ts.FeaturesLimit)
		assert.Equal(t, 10000, *ts.FeaturesLimit)
	})

	t.Run("explicit values", func(t *testing.T) {
		layer := layerWithSettings(t, `{"tiles": {
			"features_filter": {"type": "road"},
			"properties_filter": [],
			"features_limit": null
		}}`)
		ts, err := layer.TileSettings()
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"type": "road"}, ts.FeaturesFilter)
		assert.NotNil(t, ts.PropertiesFilter)
		assert.Empty(t, ts.PropertiesFilter)
		assert.Nil(t, ts.FeaturesLimit)
	})

	t.Run("invalid type", func(t *testing.T) {
		layer := layerWithSettings(t, `{"tiles": {"pixel_buffer": "wide"}}`)
		_, err := layer.TileSettings()
		assert.Error(t, err)
	})
}

func TestGeometryType(t *testing.T) {
	assert.Equal(t, GeometryLineString, ParseGeometryType("ST_LineString"))
	assert.Equal(t, GeometryMultiPolygon, ParseGeometryType("MULTIPOLYGON"))
	assert.Equal(t, GeometryUnknown, ParseGeometryType("circle"))

	assert.True(t, GeometryMultiLineString.IsLineString())
	assert.True(t, GeometryMultiLineString.IsMulti())
	assert.False(t, GeometryLineString.IsMulti())
	assert.True(t, GeometryPoint.IsPoint())
	assert.True(t, GeometryPolygon.IsPolygon())
	assert.Equal(t, "Polygon", GeometryPolygon.String())
}

func TestClampFraction(t *testing.T) {
	assert.Equal(t, FractionEpsilon, ClampFraction(0))
	assert.Equal(t, 1-FractionEpsilon, ClampFraction(1))
	assert.Equal(t, 0.5, ClampFraction(0.5))
}
