package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/medequipos-api/internal/domain/entity"
	"github.com/jhoicas/medequipos-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL (solo INSERT;
// la tabla rechaza UPDATE y DELETE con un trigger).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `
	id, stock_item_id, location_id, type, quantity, sale_type, presentation_id,
	stock_before, stock_after, reason, user_name, external_reference, created_at`

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var (
		m                             entity.StockMovement
		saleType, presID, externalRef *string
	)
	err := row.Scan(&m.ID, &m.StockItemID, &m.LocationID, &m.Type, &m.Quantity, &saleType, &presID,
		&m.StockBefore, &m.StockAfter, &m.Reason, &m.User, &externalRef, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if saleType != nil {
		m.SaleType = *saleType
	}
	if presID != nil {
		m.PresentationID = *presID
	}
	if externalRef != nil {
		m.ExternalReference = *externalRef
	}
	return &m, nil
}

// Append inserta un movimiento.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	query := `INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.StockItemID, m.LocationID, m.Type, m.Quantity, nullIfEmpty(m.SaleType), nullIfEmpty(m.PresentationID),
		m.StockBefore, m.StockAfter, m.Reason, m.User, nullIfEmpty(m.ExternalReference), m.CreatedAt,
	)
	return mapError("append stock movement", err)
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, mapError("get stock movement", err)
	}
	return m, nil
}

// movementWhere arma la cláusula WHERE con los filtros no vacíos.
func movementWhere(f repository.MovementFilter) (string, []any) {
	clause := " WHERE 1=1"
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		clause += fmt.Sprintf(" AND "+cond, len(args))
	}
	if f.StockItemID != "" {
		add("stock_item_id::text = $%d", f.StockItemID)
	}
	if f.LocationID != "" {
		add("location_id::text = $%d", f.LocationID)
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.ExternalReference != "" {
		add("external_reference = $%d", f.ExternalReference)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at < $%d", *f.To)
	}
	return clause, args
}

// List lista movimientos del más reciente al más antiguo.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	where, args := movementWhere(f)
	query := `SELECT ` + movementColumns + ` FROM stock_movements` + where + ` ORDER BY created_at DESC, seq DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list stock movements", err)
	}
	defer rows.Close()
	list := make([]*entity.StockMovement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, mapError("scan stock movement", err)
		}
		list = append(list, m)
	}
	return list, mapError("list stock movements", rows.Err())
}

// Rollup agrupa por tipo: cantidad de movimientos y suma de unidades.
func (r *StockMovementRepo) Rollup(ctx context.Context, f repository.MovementFilter) ([]repository.MovementRollup, error) {
	where, args := movementWhere(f)
	query := `SELECT type, COUNT(*), COALESCE(SUM(quantity), 0)::bigint FROM stock_movements` + where + ` GROUP BY type ORDER BY type`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("rollup stock movements", err)
	}
	defer rows.Close()
	out := make([]repository.MovementRollup, 0, 3)
	for rows.Next() {
		var ru repository.MovementRollup
		var count, units int64
		if err := rows.Scan(&ru.Type, &count, &units); err != nil {
			return nil, mapError("scan rollup", err)
		}
		ru.Count, ru.Units = int(count), int(units)
		out = append(out, ru)
	}
	return out, mapError("rollup stock movements", rows.Err())
}
