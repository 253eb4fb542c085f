package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
	"github.com/jhoicas/medequipos-api/internal/domain/repository"
)

// PresentationRepo implementa repository.PresentationRepository.
type PresentationRepo struct {
	s  *Store
	tx *tx
}

// NewPresentationRepository repositorio fuera de transacción.
func NewPresentationRepository(s *Store) *PresentationRepo {
	return &PresentationRepo{s: s}
}

var _ repository.PresentationRepository = (*PresentationRepo)(nil)

func (r *PresentationRepo) Create(_ context.Context, p *entity.Presentation) error {
	if r.tx != nil {
		r.tx.presentations = append(r.tx.presentations, clonePresentation(p))
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.presentations[p.ID]; ok {
		return fmt.Errorf("presentación %s: %w", p.ID, domain.ErrDuplicate)
	}
	r.s.presentations[p.ID] = clonePresentation(p)
	return nil
}

func (r *PresentationRepo) GetByID(ctx context.Context, id string) (*entity.Presentation, error) {
	if r.tx != nil {
		for _, p := range r.tx.presentations {
			if p.ID == id {
				return clonePresentation(p), nil
			}
		}
	}
	r.s.mu.RLock()
	p := clonePresentation(r.s.presentations[id])
	r.s.mu.RUnlock()
	if p != nil && r.tx != nil && r.tx.clearDefault[p.StockItemID] {
		p.IsDefault = false
	}
	return p, nil
}

func (r *PresentationRepo) ListByStockItem(_ context.Context, stockItemID string) ([]*entity.Presentation, error) {
	r.s.mu.RLock()
	out := make([]*entity.Presentation, 0)
	for _, p := range r.s.presentations {
		if p.StockItemID == stockItemID {
			out = append(out, clonePresentation(p))
		}
	}
	r.s.mu.RUnlock()

	if r.tx != nil {
		if r.tx.clearDefault[stockItemID] {
			for _, p := range out {
				p.IsDefault = false
			}
		}
		for _, p := range r.tx.presentations {
			if p.StockItemID == stockItemID {
				out = append(out, clonePresentation(p))
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *PresentationRepo) ClearDefault(_ context.Context, stockItemID string) error {
	if r.tx != nil {
		r.tx.clearDefault[stockItemID] = true
		for _, p := range r.tx.presentations {
			if p.StockItemID == stockItemID {
				p.IsDefault = false
			}
		}
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.presentations {
		if p.StockItemID == stockItemID {
			p.IsDefault = false
		}
	}
	return nil
}
