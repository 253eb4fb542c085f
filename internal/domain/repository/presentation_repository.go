package repository

import (
	"context"

	"github.com/jhoicas/medequipos-api/internal/domain/entity"
)

// PresentationRepository define el puerto del catálogo de presentaciones.
type PresentationRepository interface {
	Create(ctx context.Context, p *entity.Presentation) error
	GetByID(ctx context.Context, id string) (*entity.Presentation, error)
	// ListByStockItem devuelve la presentación por defecto primero.
	ListByStockItem(ctx context.Context, stockItemID string) ([]*entity.Presentation, error)
	// ClearDefault quita la marca es_default de todas las presentaciones del item.
	ClearDefault(ctx context.Context, stockItemID string) error
}
