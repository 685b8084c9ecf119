package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/geostore-service/internal/domain"
	"github.com/geostore-service/internal/pkg/errors"
	"github.com/geostore-service/internal/pkg/utils"
	"github.com/geostore-service/internal/pkg/validator"
	"github.com/geostore-service/internal/usecase"
	"github.com/geostore-service/internal/usecase/dto"
)

const mvtContentType = "application/vnd.mapbox-vector-tile"

// TileHandler - обработчик для запросов векторных тайлов
type TileHandler struct {
	tileUC  *usecase.TileUseCase
	baseURL string
	logger  *zap.Logger
}

// NewTileHandler - создание нового TileHandler; baseURL используется в TileJSON
func NewTileHandler(tileUC *usecase.TileUseCase, baseURL string, logger *zap.Logger) *TileHandler {
	return &TileHandler{
		tileUC:  tileUC,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

func parseTileAddress(c *fiber.Ctx) (domain.TileAddress, error) {
	var addr domain.TileAddress
	var err error
	if addr.Z, err = strconv.Atoi(c.Params("z")); err != nil {
		return addr, errors.ErrInvalidTileCoordinates.WithDetails(map[string]interface{}{"z": c.Params("z")})
	}
	if addr.X, err = strconv.Atoi(c.Params("x")); err != nil {
		return addr, errors.ErrInvalidTileCoordinates.WithDetails(map[string]interface{}{"x": c.Params("x")})
	}
	if addr.Y, err = strconv.Atoi(c.Params("y")); err != nil {
		return addr, errors.ErrInvalidTileCoordinates.WithDetails(map[string]interface{}{"y": c.Params("y")})
	}
	return addr, nil
}

// GetLayer godoc
// @Summary Слой
// @Description Краткая информация о слое; настройки отдаются смердженными со значениями по умолчанию
// @Tags Tiles
// @Produce json
// @Param layer path string true "ID или имя слоя"
// @Success 200 {object} utils.SuccessResponse{data=dto.LayerResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/layers/{layer} [get]
func (h *TileHandler) GetLayer(c *fiber.Ctx) error {
	layer, err := h.tileUC.Layer(c.Context(), c.Params("layer"))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.LayerResponse{
		ID:       layer.ID,
		Name:     layer.Name,
		GeomType: layer.GeometryType.String(),
		Routable: layer.Routable,
		Settings: domain.DeepMerge(domain.DefaultLayerSettings(), layer.Settings),
	}, nil)
}

// GetTile godoc
// @Summary Векторный тайл слоя
// @Description Возвращает MVT тайл слоя. Тайлы кешируются по версии слоя; пустой тайл отдается как 204.
// @Tags Tiles
// @Produce application/vnd.mapbox-vector-tile
// @Param layer path string true "ID или имя слоя"
// @Param z path int true "Зум"
// @Param x path int true "X"
// @Param y path int true "Y"
// @Success 200 {file} binary
// @Success 204
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/layers/{layer}/tiles/{z}/{x}/{y}.pbf [get]
func (h *TileHandler) GetTile(c *fiber.Ctx) error {
	addr, err := parseTileAddress(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	layer := c.Params("layer")

	tile, err := h.tileUC.GetTile(c.Context(), layer, addr)
	if err != nil {
		h.logger.Error("Failed to get tile",
			zap.String("layer", layer),
			zap.Int("z", addr.Z),
			zap.Int("x", addr.X),
			zap.Int("y", addr.Y),
			zap.Error(err))
		return utils.SendError(c, err)
	}

	if tile.Empty() {
		return c.SendStatus(fiber.StatusNoContent)
	}

	c.Set(fiber.HeaderContentType, mvtContentType)
	return c.Send(tile.MVT)
}

// TileJSON godoc
// @Summary TileJSON слоя
// @Description Описание слоя как источника векторных тайлов. Отсутствующие minzoom/maxzoom вычисляются и сохраняются в настройки слоя.
// @Tags Tiles
// @Produce json
// @Param layer path string true "ID или имя слоя"
// @Success 200 {object} domain.TileJSON
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/layers/{layer}/tilejson [get]
func (h *TileHandler) TileJSON(c *fiber.Ctx) error {
	layer := c.Params("layer")
	base := h.baseURL
	if base == "" {
		base = c.BaseURL()
	}
	tilesURL := base + "/api/v1/layers/" + layer + "/tiles/{z}/{x}/{y}.pbf"

	tj, err := h.tileUC.TileJSON(c.Context(), layer, tilesURL)
	if err != nil {
		return utils.SendError(c, err)
	}
	return c.JSON(tj)
}

// WarmTiles godoc
// @Summary Прогрев кеша тайлов
// @Description Ставит задачу принудительного пересчета тайлов слоя в очередь воркеров
// @Tags Tiles
// @Accept json
// @Produce json
// @Param layer path string true "ID или имя слоя"
// @Param request body dto.WarmTilesRequest false "Диапазон зумов"
// @Success 202 {object} utils.SuccessResponse{data=dto.WarmTilesResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/layers/{layer}/tiles/warm [post]
func (h *TileHandler) WarmTiles(c *fiber.Ctx) error {
	var req dto.WarmTilesRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, errors.ErrInvalidRequest)
		}
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.tileUC.RequestWarm(c.Context(), c.Params("layer"), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	c.Status(fiber.StatusAccepted)
	return utils.SendSuccess(c, resp, nil)
}
