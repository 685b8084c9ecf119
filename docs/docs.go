// Package docs GeoStore API.
//
// Векторные тайлы (MVT) слоев PostGIS, TileJSON, маршрутизация pgRouting
// и пакетная обработка слоев.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Состояние сервиса",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/api/v1/layers/{layer}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Tiles"],
                "summary": "Слой",
                "parameters": [
                    {"type": "string", "description": "ID или имя слоя", "name": "layer", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.LayerResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/layers/{layer}/tiles/{z}/{x}/{y}.pbf": {
            "get": {
                "produces": ["application/vnd.mapbox-vector-tile"],
                "tags": ["Tiles"],
                "summary": "Векторный тайл слоя",
                "parameters": [
                    {"type": "string", "description": "ID или имя слоя", "name": "layer", "in": "path", "required": true},
                    {"type": "integer", "description": "Зум", "name": "z", "in": "path", "required": true},
                    {"type": "integer", "description": "X", "name": "x", "in": "path", "required": true},
                    {"type": "integer", "description": "Y", "name": "y", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/layers/{layer}/tilejson": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Tiles"],
                "summary": "TileJSON слоя",
                "parameters": [
                    {"type": "string", "description": "ID или имя слоя", "name": "layer", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.TileJSON"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/layers/{layer}/tiles/warm": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tiles"],
                "summary": "Прогрев кеша тайлов",
                "parameters": [
                    {"type": "string", "description": "ID или имя слоя", "name": "layer", "in": "path", "required": true},
                    {"description": "Диапазон зумов", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/dto.WarmTilesRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/dto.WarmTilesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/layers/{layer}/route": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Routing"],
                "summary": "Маршрут по слою",
                "parameters": [
                    {"type": "string", "description": "ID или имя линейного слоя", "name": "layer", "in": "path", "required": true},
                    {"type": "string", "default": "featurecollection", "description": "featurecollection | linestring", "name": "format", "in": "query"},
                    {"description": "Точки маршрута", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.RouteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/layers/{layer}/topology": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Routing"],
                "summary": "Топология маршрутизации",
                "parameters": [
                    {"type": "string", "description": "ID или имя линейного слоя", "name": "layer", "in": "path", "required": true},
                    {"description": "Параметры", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/dto.TopologyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.TopologyResult"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/processing": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Processing"],
                "summary": "Обработка слоя",
                "parameters": [
                    {"description": "Операция", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ProcessRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProcessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/processing/operations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Processing"],
                "summary": "Доступные операции обработки",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "domain.TileJSON": {
            "type": "object",
            "properties": {
                "tilejson": {"type": "string"},
                "name": {"type": "string"},
                "tiles": {"type": "array", "items": {"type": "string"}},
                "minzoom": {"type": "integer"},
                "maxzoom": {"type": "integer"},
                "bounds": {"type": "array", "items": {"type": "number"}},
                "center": {"type": "array", "items": {"type": "number"}},
                "version": {"type": "string"}
            }
        },
        "domain.TopologyResult": {
            "type": "object",
            "properties": {
                "layer_id": {"type": "integer"},
                "tolerance": {"type": "number"},
                "status": {"type": "string"}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "services": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "dto.LayerResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "geom_type": {"type": "string"},
                "routable": {"type": "boolean"},
                "settings": {"type": "object"}
            }
        },
        "dto.Point": {
            "type": "object",
            "properties": {
                "lon": {"type": "number", "maximum": 180, "minimum": -180},
                "lat": {"type": "number", "maximum": 90, "minimum": -90}
            }
        },
        "dto.RouteRequest": {
            "type": "object",
            "required": ["points"],
            "properties": {
                "points": {"type": "array", "maxItems": 100, "minItems": 2, "items": {"$ref": "#/definitions/dto.Point"}}
            }
        },
        "dto.TopologyRequest": {
            "type": "object",
            "properties": {
                "tolerance": {"type": "number"},
                "clean": {"type": "boolean"}
            }
        },
        "dto.WarmTilesRequest": {
            "type": "object",
            "properties": {
                "minzoom": {"type": "integer", "maximum": 22, "minimum": 0},
                "maxzoom": {"type": "integer", "maximum": 22, "minimum": 0}
            }
        },
        "dto.WarmTilesResponse": {
            "type": "object",
            "properties": {
                "job_id": {"type": "string"},
                "queued": {"type": "boolean"}
            }
        },
        "dto.ProcessRequest": {
            "type": "object",
            "required": ["input", "output", "operation"],
            "properties": {
                "input": {"type": "string"},
                "output": {"type": "string"},
                "operation": {"type": "string"},
                "params": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        },
        "dto.ProcessResponse": {
            "type": "object",
            "properties": {
                "input_layer": {"type": "string"},
                "output_layer": {"type": "string"},
                "output_id": {"type": "integer"},
                "operation": {"type": "string"},
                "features": {"type": "integer"}
            }
        },
        "utils.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "object"}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "GeoStore API",
	Description:      "Векторные тайлы слоев PostGIS, TileJSON, маршрутизация pgRouting и обработка слоев.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
