package repository

import (
	"context"

	"github.com/jhoicas/medequipos-api/internal/domain/entity"
)

// StockItemRepository define el puerto para leer y mutar StockItems.
// Las mutaciones se hacen dentro de una transacción (ver TxRunner).
type StockItemRepository interface {
	// GetByID lectura sin bloqueo (snapshot). Devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.StockItem, error)
	// GetForUpdate bloquea la fila del item hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error)
	// GetByIdentityForUpdate busca por carpeta + clave de identidad y bloquea la fila.
	GetByIdentityForUpdate(ctx context.Context, locationID, identityKey string) (*entity.StockItem, error)
	Create(ctx context.Context, item *entity.StockItem) error
	// Update persiste el nuevo estado si la versión almacenada sigue siendo expectedVersion
	// e incrementa item.Version. Devuelve domain.ErrConcurrency si otra operación ganó.
	Update(ctx context.Context, item *entity.StockItem, expectedVersion int64) error
	ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.StockItem, error)
	// ListLowStock devuelve los items con total de unidades <= mínimo (cajas) * factor.
	// locationID vacío considera todas las carpetas.
	ListLowStock(ctx context.Context, locationID string) ([]*entity.StockItem, error)
}
