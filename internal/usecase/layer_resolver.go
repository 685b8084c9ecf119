package usecase

import (
	"context"
	stderrors "errors"
	"strconv"

	"github.com/geostore-service/internal/domain"
	"github.com/geostore-service/internal/domain/repository"
	"github.com/geostore-service/internal/pkg/errors"
)

// resolveLayer находит слой по числовому ID или по имени.
// Числовая ссылка без слоя с таким ID ищется как имя ("2024").
func resolveLayer(ctx context.Context, repo repository.LayerRepository, ref string) (*domain.Layer, error) {
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return repo.GetByName(ctx, ref)
	}

	layer, err := repo.GetByID(ctx, id)
	if stderrors.Is(err, errors.ErrLayerNotFound) {
		return repo.GetByName(ctx, ref)
	}
	return layer, err
}
