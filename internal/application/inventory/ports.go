package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/medequipos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Ningún cambio es visible antes del Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.StockItemRepository,
		presRepo repository.PresentationRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// StatsCache guarda lecturas agregadas (estadísticas, stock crítico) con vencimiento.
// Los valores pueden tener hasta ttl de atraso; nunca se usan para decidir una mutación.
type StatsCache interface {
	// Get copia en dest el valor guardado. Devuelve false si no existe o venció.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}
