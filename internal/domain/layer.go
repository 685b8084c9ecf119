package domain

import (
	"encoding/json"
	"fmt"
	"time"

	pkgerrors "github.com/geostore-service/internal/pkg/errors"
)

const SettingsSectionTiles = "tiles"

// DefaultLayerSettings - значения по умолчанию, поверх которых накладываются настройки слоя
func DefaultLayerSettings() Settings {
	return Settings{
		SettingsSectionTiles: map[string]interface{}{
			"minzoom":           float64(0),
			"maxzoom":           float64(22),
			"pixel_buffer":      float64(4),
			"features_filter":   nil,
			"properties_filter": nil,
			"features_limit":    float64(10000),
		},
	}
}

// Settings - JSON документ настроек слоя
type Settings map[string]interface{}

// Layer - именованная коллекция объектов одного типа геометрии
type Layer struct {
	ID           int64        `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	GeometryType GeometryType `json:"geom_type" db:"geom_type"`
	Settings     Settings     `json:"settings" db:"-"`
	Routable     bool         `json:"routable" db:"routable"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// Setting возвращает явно заданное значение настроек слоя (без значений по умолчанию)
func (l *Layer) Setting(section, key string) (interface{}, error) {
	return lookup(l.Settings, section, key)
}

// SettingWithDefault возвращает значение из настроек слоя, смердженных с DefaultLayerSettings
func (l *Layer) SettingWithDefault(section, key string) (interface{}, error) {
	return lookup(DeepMerge(DefaultLayerSettings(), l.Settings), section, key)
}

// SetSetting записывает значение в настройки слоя, создавая секцию при необходимости
func (l *Layer) SetSetting(section, key string, value interface{}) {
	if l.Settings == nil {
		l.Settings = Settings{}
	}
	sec, ok := l.Settings[section].(map[string]interface{})
	if !ok {
		sec = map[string]interface{}{}
		l.Settings[section] = sec
	}
	sec[key] = value
}

// TileSettings - типизированное представление секции "tiles"
type TileSettings struct {
	MinZoom          int                    `json:"minzoom"`
	MaxZoom          int                    `json:"maxzoom"`
	PixelBuffer      int                    `json:"pixel_buffer"`
	FeaturesFilter   map[string]interface{} `json:"features_filter"`
	PropertiesFilter []string               `json:"properties_filter"`
	FeaturesLimit    *int                   `json:"features_limit"`
}

// TileSettings декодирует секцию tiles с учетом значений по умолчанию
func (l *Layer) TileSettings() (TileSettings, error) {
	merged := DeepMerge(DefaultLayerSettings(), l.Settings)
	raw, err := json.Marshal(merged[SettingsSectionTiles])
	if err != nil {
		return TileSettings{}, fmt.Errorf("marshal tile settings: %w", err)
	}

	var ts TileSettings
	if err := json.Unmarshal(raw, &ts); err != nil {
		return TileSettings{}, fmt.Errorf("layer %d: invalid tile settings: %w", l.ID, err)
	}
	return ts, nil
}

func lookup(s Settings, section, key string) (interface{}, error) {
	sec, ok := s[section].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", section, key, pkgerrors.ErrSettingNotFound)
	}
	v, ok := sec[key]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", section, key, pkgerrors.ErrSettingNotFound)
	}
	return v, nil
}

// DeepMerge накладывает override на base: явные ключи побеждают,
// вложенные объекты мержатся рекурсивно. Аргументы не изменяются.
func DeepMerge(base, override map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		bv, bok := out[k].(map[string]interface{})
		ov, ook := v.(map[string]interface{})
		if bok && ook {
			out[k] = DeepMerge(bv, ov)
			continue
		}
		out[k] = v
	}
	return out
}
