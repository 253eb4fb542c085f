package repository

import (
	"context"
	"time"

	"github.com/jhoicas/medequipos-api/internal/domain/entity"
)

// MovementFilter filtros de consulta del libro de movimientos. Campos vacíos no filtran.
// From es inclusivo y To exclusivo.
type MovementFilter struct {
	StockItemID       string
	LocationID        string
	Type              string
	ExternalReference string
	From              *time.Time
	To                *time.Time
	Limit             int
	Offset            int
}

// MovementRollup agregado de movimientos por tipo.
type MovementRollup struct {
	Type  string
	Count int
	Units int // suma de cantidades (con signo para ajustes)
}

// StockMovementRepository define el puerto del libro de movimientos (solo inserción).
type StockMovementRepository interface {
	Append(ctx context.Context, m *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	List(ctx context.Context, f MovementFilter) ([]*entity.StockMovement, error)
	// Rollup agrupa por tipo; Limit/Offset se ignoran.
	Rollup(ctx context.Context, f MovementFilter) ([]MovementRollup, error)
}
