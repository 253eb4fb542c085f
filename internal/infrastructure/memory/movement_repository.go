package memory

import (
	"context"

	"github.com/jhoicas/medequipos-api/internal/domain/entity"
	"github.com/jhoicas/medequipos-api/internal/domain/repository"
)

// MovementRepo implementa repository.StockMovementRepository (solo inserción).
type MovementRepo struct {
	s  *Store
	tx *tx
}

// NewMovementRepository repositorio fuera de transacción.
func NewMovementRepository(s *Store) *MovementRepo {
	return &MovementRepo{s: s}
}

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

func (r *MovementRepo) Append(_ context.Context, m *entity.StockMovement) error {
	if r.tx != nil {
		r.tx.movements = append(r.tx.movements, cloneMovement(m))
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, cloneMovement(m))
	return nil
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.movements {
		if m.ID == id {
			return cloneMovement(m), nil
		}
	}
	return nil, nil
}

// List devuelve los movimientos confirmados del más reciente al más antiguo.
func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.StockMovement, 0)
	skipped := 0
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if !matches(m, f) {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		out = append(out, cloneMovement(m))
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (r *MovementRepo) Rollup(_ context.Context, f repository.MovementFilter) ([]repository.MovementRollup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	byType := make(map[string]*repository.MovementRollup)
	order := make([]string, 0, 3)
	for _, m := range r.s.movements {
		if !matches(m, f) {
			continue
		}
		ru, ok := byType[m.Type]
		if !ok {
			ru = &repository.MovementRollup{Type: m.Type}
			byType[m.Type] = ru
			order = append(order, m.Type)
		}
		ru.Count++
		ru.Units += m.Quantity
	}
	out := make([]repository.MovementRollup, 0, len(order))
	for _, t := range order {
		out = append(out, *byType[t])
	}
	return out, nil
}

func matches(m *entity.StockMovement, f repository.MovementFilter) bool {
	switch {
	case f.StockItemID != "" && m.StockItemID != f.StockItemID:
		return false
	case f.LocationID != "" && m.LocationID != f.LocationID:
		return false
	case f.Type != "" && m.Type != f.Type:
		return false
	case f.ExternalReference != "" && m.ExternalReference != f.ExternalReference:
		return false
	case f.From != nil && m.CreatedAt.Before(*f.From):
		return false
	case f.To != nil && !m.CreatedAt.Before(*f.To):
		return false
	}
	return true
}
