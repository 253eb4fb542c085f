package repository

import (
	"context"

	"github.com/jhoicas/medequipos-api/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para carpetas/ubicaciones.
type LocationRepository interface {
	Create(ctx context.Context, l *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Location, error)
}
