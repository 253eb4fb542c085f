package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
	"github.com/jhoicas/medequipos-api/internal/domain/repository"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

// StockItemRepo implementación de StockItemRepository sobre PostgreSQL (usable con pool o tx).
type StockItemRepo struct {
	q Querier
}

// NewStockItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockItemRepository(q Querier) *StockItemRepo {
	return &StockItemRepo{q: q}
}

const stockItemColumns = `
	id, location_id, name, brand, model, identity_key, conversion_factor,
	boxes_stock, loose_units, min_quantity, allows_fractioning, base_price, currency,
	open_box_original_factor, open_box_remaining, open_box_opened_at,
	version, created_at, updated_at`

func scanStockItem(row pgx.Row) (*entity.StockItem, error) {
	var (
		it                    entity.StockItem
		obFactor, obRemaining *int
		obOpenedAt            *time.Time
	)
	err := row.Scan(
		&it.ID, &it.LocationID, &it.Name, &it.Brand, &it.Model, &it.IdentityKey, &it.ConversionFactor,
		&it.BoxesStock, &it.LooseUnits, &it.MinQuantity, &it.AllowsFractioning, &it.BasePrice, &it.Currency,
		&obFactor, &obRemaining, &obOpenedAt,
		&it.Version, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if obRemaining != nil && obFactor != nil && obOpenedAt != nil {
		it.OpenBox = &entity.OpenBox{OriginalFactor: *obFactor, RemainingUnits: *obRemaining, OpenedAt: *obOpenedAt}
	}
	return &it, nil
}

// openBoxArgs devuelve los valores (posiblemente NULL) de las columnas de la caja abierta.
func openBoxArgs(it *entity.StockItem) (factor, remaining *int, openedAt *time.Time) {
	if it.OpenBox == nil {
		return nil, nil, nil
	}
	f, r, o := it.OpenBox.OriginalFactor, it.OpenBox.RemainingUnits, it.OpenBox.OpenedAt
	return &f, &r, &o
}

func (r *StockItemRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.StockItem, error) {
	it, err := scanStockItem(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return it, nil
}

// GetByID obtiene el item sin bloquear la fila.
func (r *StockItemRepo) GetByID(ctx context.Context, id string) (*entity.StockItem, error) {
	return r.getOne(ctx, "get stock item", `SELECT `+stockItemColumns+` FROM stock_items WHERE id = $1`, id)
}

// GetForUpdate obtiene el item y bloquea la fila (SELECT FOR UPDATE) hasta el fin de la tx.
func (r *StockItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error) {
	return r.getOne(ctx, "get stock item for update",
		`SELECT `+stockItemColumns+` FROM stock_items WHERE id = $1 FOR UPDATE`, id)
}

// GetByIdentityForUpdate busca por carpeta + clave de identidad y bloquea la fila.
func (r *StockItemRepo) GetByIdentityForUpdate(ctx context.Context, locationID, identityKey string) (*entity.StockItem, error) {
	return r.getOne(ctx, "get stock item by identity",
		`SELECT `+stockItemColumns+` FROM stock_items WHERE location_id = $1 AND identity_key = $2 FOR UPDATE`,
		locationID, identityKey)
}

// Create inserta el item. Una identidad repetida en la carpeta devuelve domain.ErrDuplicate.
func (r *StockItemRepo) Create(ctx context.Context, it *entity.StockItem) error {
	obFactor, obRemaining, obOpenedAt := openBoxArgs(it)
	query := `
		INSERT INTO stock_items (` + stockItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.LocationID, it.Name, it.Brand, it.Model, it.IdentityKey, it.ConversionFactor,
		it.BoxesStock, it.LooseUnits, it.MinQuantity, it.AllowsFractioning, it.BasePrice, it.Currency,
		obFactor, obRemaining, obOpenedAt,
		it.Version, it.CreatedAt, it.UpdatedAt,
	)
	return mapError("create stock item", err)
}

// Update guarda el nuevo estado solo si la versión almacenada es expectedVersion (CAS).
func (r *StockItemRepo) Update(ctx context.Context, it *entity.StockItem, expectedVersion int64) error {
	obFactor, obRemaining, obOpenedAt := openBoxArgs(it)
	query := `
		UPDATE stock_items SET
			boxes_stock = $3, loose_units = $4, min_quantity = $5, allows_fractioning = $6,
			base_price = $7, open_box_original_factor = $8, open_box_remaining = $9, open_box_opened_at = $10,
			version = version + 1, updated_at = $11
		WHERE id = $1 AND version = $2
		RETURNING version`
	var newVersion int64
	err := r.q.QueryRow(ctx, query,
		it.ID, expectedVersion,
		it.BoxesStock, it.LooseUnits, it.MinQuantity, it.AllowsFractioning,
		it.BasePrice, obFactor, obRemaining, obOpenedAt, it.UpdatedAt,
	).Scan(&newVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewError(domain.ErrConcurrency, "el stock fue modificado por otra operación; reintente")
		}
		return mapError("update stock item", err)
	}
	it.Version = newVersion
	return nil
}

// ListByLocation lista los items de una carpeta (todas si locationID es vacío) ordenados por nombre.
func (r *StockItemRepo) ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + ` FROM stock_items
		WHERE ($1 = '' OR location_id::text = $1)
		ORDER BY name, id LIMIT $2 OFFSET $3`
	return r.list(ctx, "list stock items", query, locationID, limit, offset)
}

// ListLowStock devuelve los items cuyo total de unidades es <= mínimo (cajas) * factor.
func (r *StockItemRepo) ListLowStock(ctx context.Context, locationID string) ([]*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + ` FROM stock_items
		WHERE ($1 = '' OR location_id::text = $1)
		  AND boxes_stock * conversion_factor + loose_units + COALESCE(open_box_remaining, 0)
		      <= min_quantity * conversion_factor
		ORDER BY name, id`
	return r.list(ctx, "list low stock", query, locationID)
}

func (r *StockItemRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.StockItem, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()
	list := make([]*entity.StockItem, 0)
	for rows.Next() {
		it, err := scanStockItem(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		list = append(list, it)
	}
	return list, mapError(op, rows.Err())
}
