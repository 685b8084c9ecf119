package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/geostore-service/internal/usecase/dto"
)

// HealthChecker - зависимость, умеющая проверить свое состояние
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler - проверка зависимостей сервиса
type HealthHandler struct {
	checks map[string]HealthChecker
}

// NewHealthHandler; nil зависимости пропускаются
func NewHealthHandler(checks map[string]HealthChecker) *HealthHandler {
	filtered := make(map[string]HealthChecker, len(checks))
	for name, check := range checks {
		if check != nil {
			filtered[name] = check
		}
	}
	return &HealthHandler{checks: filtered}
}

// Health godoc
// @Summary Состояние сервиса
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /api/v1/health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{Status: "healthy", Services: map[string]string{}}
	for name, check := range h.checks {
		if err := check.Health(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.Services[name] = err.Error()
			continue
		}
		resp.Services[name] = "ok"
	}

	if resp.Status != "healthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
