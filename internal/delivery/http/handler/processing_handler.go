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

// ProcessingHandler - пакетная обработка слоев
type ProcessingHandler struct {
	processingUC *usecase.ProcessingUseCase
	logger       *zap.Logger
}

func NewProcessingHandler(processingUC *usecase.ProcessingUseCase, logger *zap.Logger) *ProcessingHandler {
	return &ProcessingHandler{
		processingUC: processingUC,
		logger:       logger,
	}
}

// Operations godoc
// @Summary Доступные операции обработки
// @Tags Processing
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]string}
// @Router /api/v1/processing/operations [get]
func (h *ProcessingHandler) Operations(c *fiber.Ctx) error {
	ops := h.processingUC.Operations()
	return utils.SendSuccess(c, ops, &utils.Meta{Total: len(ops)})
}

// Process godoc
// @Summary Обработка слоя
// @Description Применяет геометрическую операцию к объектам входного слоя и пишет результат в выходной слой
// @Tags Processing
// @Accept json
// @Produce json
// @Param request body dto.ProcessRequest true "Операция"
// @Success 200 {object} utils.SuccessResponse{data=dto.ProcessResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/processing [post]
func (h *ProcessingHandler) Process(c *fiber.Ctx) error {
	var req dto.ProcessRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.processingUC.Process(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, nil)
}
