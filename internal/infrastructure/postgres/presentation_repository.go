package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/medequipos-api/internal/domain/entity"
	"github.com/jhoicas/medequipos-api/internal/domain/repository"
)

var _ repository.PresentationRepository = (*PresentationRepo)(nil)

// PresentationRepo implementación de PresentationRepository sobre PostgreSQL.
type PresentationRepo struct {
	q Querier
}

// NewPresentationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPresentationRepository(q Querier) *PresentationRepo {
	return &PresentationRepo{q: q}
}

const presentationColumns = `id, stock_item_id, name, conversion_factor, sale_price, sellable_as_whole, is_default, created_at, updated_at`

func scanPresentation(row pgx.Row) (*entity.Presentation, error) {
	var p entity.Presentation
	err := row.Scan(&p.ID, &p.StockItemID, &p.Name, &p.ConversionFactor, &p.SalePrice,
		&p.SellableAsWhole, &p.IsDefault, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste una presentación.
func (r *PresentationRepo) Create(ctx context.Context, p *entity.Presentation) error {
	query := `INSERT INTO presentations (` + presentationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, p.ID, p.StockItemID, p.Name, p.ConversionFactor, p.SalePrice,
		p.SellableAsWhole, p.IsDefault, p.CreatedAt, p.UpdatedAt)
	return mapError("create presentation", err)
}

// GetByID obtiene una presentación por ID.
func (r *PresentationRepo) GetByID(ctx context.Context, id string) (*entity.Presentation, error) {
	p, err := scanPresentation(r.q.QueryRow(ctx, `SELECT `+presentationColumns+` FROM presentations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, mapError("get presentation", err)
	}
	return p, nil
}

// ListByStockItem lista las presentaciones del item, la de por defecto primero.
func (r *PresentationRepo) ListByStockItem(ctx context.Context, stockItemID string) ([]*entity.Presentation, error) {
	query := `SELECT ` + presentationColumns + ` FROM presentations
		WHERE stock_item_id = $1
		ORDER BY is_default DESC, created_at, name`
	rows, err := r.q.Query(ctx, query, stockItemID)
	if err != nil {
		if isInvalidID(err) {
			return []*entity.Presentation{}, nil
		}
		return nil, mapError("list presentations", err)
	}
	defer rows.Close()
	list := make([]*entity.Presentation, 0)
	for rows.Next() {
		p, err := scanPresentation(rows)
		if err != nil {
			return nil, mapError("scan presentation", err)
		}
		list = append(list, p)
	}
	return list, mapError("list presentations", rows.Err())
}

// ClearDefault quita la marca por defecto de las presentaciones del item.
func (r *PresentationRepo) ClearDefault(ctx context.Context, stockItemID string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE presentations SET is_default = false, updated_at = now() WHERE stock_item_id = $1 AND is_default`,
		stockItemID)
	return mapError("clear default presentation", err)
}
