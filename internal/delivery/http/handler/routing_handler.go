package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/geostore-service/internal/pkg/errors"
	"github.com/geostore-service/internal/pkg/utils"
	"github.com/geostore-service/internal/pkg/validator"
	"github.com/geostore-service/internal/usecase"
	"github.com/geostore-service/internal/usecase/dto"
)

// RoutingHandler - маршруты и топология линейных слоев
type RoutingHandler struct {
	routingUC *usecase.RoutingUseCase
	logger    *zap.Logger
}

func NewRoutingHandler(routingUC *usecase.RoutingUseCase, logger *zap.Logger) *RoutingHandler {
	return &RoutingHandler{
		routingUC: routingUC,
		logger:    logger,
	}
}

// Route godoc
// @Summary Маршрут по слою
// @Description Строит кратчайший маршрут через точки по порядку. По умолчанию GeoJSON FeatureCollection ребер, format=linestring - одна линия.
// @Tags Routing
// @Accept json
// @Produce json
// @Param layer path string true "ID или имя линейного слоя"
// @Param format query string false "featurecollection | linestring" default(featurecollection)
// @Param request body dto.RouteRequest true "Точки маршрута"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/layers/{layer}/route [post]
func (h *RoutingHandler) Route(c *fiber.Ctx) error {
	var req dto.RouteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	layer := c.Params("layer")
	if c.Query("format") == "linestring" {
		line, err := h.routingUC.RouteLineString(c.Context(), layer, req.OrbPoints())
		if err != nil {
			return utils.SendError(c, err)
		}
		coords := make([][2]float64, len(line))
		for i, p := range line {
			coords[i] = [2]float64{p.Lon(), p.Lat()}
		}
		return c.JSON(dto.RouteLineResponse{Type: "LineString", Coordinates: coords})
	}

	fc, err := h.routingUC.RouteFeatureCollection(c.Context(), layer, req.OrbPoints())
	if err != nil {
		return utils.SendError(c, err)
	}
	return c.JSON(fc)
}

// CreateTopology godoc
// @Summary Топология маршрутизации
// @Description Строит (или перестраивает при clean=true) граф pgRouting для слоя
// @Tags Routing
// @Accept json
// @Produce json
// @Param layer path string true "ID или имя линейного слоя"
// @Param request body dto.TopologyRequest false "Параметры"
// @Success 200 {object} utils.SuccessResponse{data=domain.TopologyResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/layers/{layer}/topology [post]
func (h *RoutingHandler) CreateTopology(c *fiber.Ctx) error {
	var req dto.TopologyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, errors.ErrInvalidRequest)
		}
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	res, err := h.routingUC.CreateTopology(c.Context(), c.Params("layer"), req.Tolerance, req.Clean)
	if err != nil {
		h.logger.Error("Failed to create topology", zap.String("layer", c.Params("layer")), zap.Error(err))
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, res, nil)
}
