package repository

import (
	"context"

	"github.com/geostore-service/internal/domain"
)

// ProcessingRepository - пакетные геометрические операции над слоем
type ProcessingRepository interface {
	// ProcessLayer применяет операцию к объектам входного слоя и пишет результат в выходной.
	// Возвращает число созданных объектов.
	ProcessLayer(ctx context.Context, inputID, outputID int64, op domain.GeometryOp) (int64, error)
}
