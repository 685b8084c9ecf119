package domain

import "strings"

// GeometryType - тип геометрии слоя (тег, без кеширования производных свойств)
type GeometryType int

const (
	GeometryUnknown GeometryType = iota
	GeometryPoint
	GeometryLineString
	GeometryPolygon
	GeometryMultiPoint
	GeometryMultiLineString
	GeometryMultiPolygon
	GeometryCollection
)

var geometryTypeNames = map[GeometryType]string{
	GeometryUnknown:         "Unknown",
	GeometryPoint:           "Point",
	GeometryLineString:      "LineString",
	GeometryPolygon:         "Polygon",
	GeometryMultiPoint:      "MultiPoint",
	GeometryMultiLineString: "MultiLineString",
	GeometryMultiPolygon:    "MultiPolygon",
	GeometryCollection:      "GeometryCollection",
}

func (g GeometryType) String() string {
	if name, ok := geometryTypeNames[g]; ok {
		return name
	}
	return geometryTypeNames[GeometryUnknown]
}

// ParseGeometryType понимает как "LineString", так и "ST_LineString" из PostGIS
func ParseGeometryType(s string) GeometryType {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "st_")
	for t, name := range geometryTypeNames {
		if strings.ToLower(name) == s {
			return t
		}
	}
	return GeometryUnknown
}

func (g GeometryType) IsPoint() bool {
	return g == GeometryPoint || g == GeometryMultiPoint
}

func (g GeometryType) IsLineString() bool {
	return g == GeometryLineString || g == GeometryMultiLineString
}

func (g GeometryType) IsPolygon() bool {
	return g == GeometryPolygon || g == GeometryMultiPolygon
}

func (g GeometryType) IsMulti() bool {
	return g == GeometryMultiPoint || g == GeometryMultiLineString ||
		g == GeometryMultiPolygon || g == GeometryCollection
}
