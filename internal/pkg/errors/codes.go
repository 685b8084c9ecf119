package errors

import "net/http"

var (
	ErrLayerNotFound = New(
		"LAYER_NOT_FOUND",
		"Layer not found",
		http.StatusNotFound,
	)

	ErrInvalidTileCoordinates = New(
		"INVALID_TILE_COORDINATES",
		"Invalid tile coordinates",
		http.StatusBadRequest,
	)

	// ErrSettingNotFound - ключ настроек слоя отсутствует и не имеет значения по умолчанию
	ErrSettingNotFound = New(
		"SETTING_NOT_FOUND",
		"Layer setting not found",
		http.StatusInternalServerError,
	)

	ErrRoutingLayer = New(
		"ROUTING_LAYER_INVALID",
		"Layer is not a routable linestring layer",
		http.StatusBadRequest,
	)

	ErrNoSnap = New(
		"ROUTING_NO_SNAP",
		"No feature found to snap the point to",
		http.StatusUnprocessableEntity,
	)

	ErrNoRoute = New(
		"ROUTING_NO_PATH",
		"No path found between points",
		http.StatusNotFound,
	)

	ErrTopologyFailed = New(
		"TOPOLOGY_FAILED",
		"Routing topology build failed",
		http.StatusInternalServerError,
	)

	ErrUnknownProcessing = New(
		"UNKNOWN_PROCESSING",
		"Unknown layer processing operation",
		http.StatusBadRequest,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
