package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
	"github.com/jhoicas/medequipos-api/internal/domain/inventory"
	"github.com/jhoicas/medequipos-api/internal/domain/repository"
)

// StockItemRepo implementa repository.StockItemRepository. Con tx nil las escrituras se
// confirman de inmediato.
type StockItemRepo struct {
	s  *Store
	tx *tx
}

// NewStockItemRepository repositorio fuera de transacción (lecturas de estado confirmado).
func NewStockItemRepository(s *Store) *StockItemRepo {
	return &StockItemRepo{s: s}
}

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

func (r *StockItemRepo) GetByID(_ context.Context, id string) (*entity.StockItem, error) {
	if r.tx != nil {
		if p, ok := r.tx.items[id]; ok {
			return cloneItem(&p.item), nil
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return cloneItem(r.s.items[id]), nil
}

func (r *StockItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error) {
	if r.tx != nil {
		if err := r.tx.lock(ctx, "item:"+id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *StockItemRepo) GetByIdentityForUpdate(ctx context.Context, locationID, identityKey string) (*entity.StockItem, error) {
	idx := identityIndex(locationID, identityKey)
	if r.tx != nil {
		if err := r.tx.lock(ctx, "identity:"+idx); err != nil {
			return nil, err
		}
		for _, p := range r.tx.items {
			if p.item.LocationID == locationID && p.item.IdentityKey == identityKey {
				return cloneItem(&p.item), nil
			}
		}
	}
	r.s.mu.RLock()
	id, ok := r.s.byIdentity[idx]
	r.s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetForUpdate(ctx, id)
}

func (r *StockItemRepo) Create(_ context.Context, item *entity.StockItem) error {
	if r.tx == nil {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		idx := identityIndex(item.LocationID, item.IdentityKey)
		if _, ok := r.s.items[item.ID]; ok {
			return fmt.Errorf("item %s: %w", item.ID, domain.ErrDuplicate)
		}
		if _, ok := r.s.byIdentity[idx]; ok {
			return fmt.Errorf("identidad %q: %w", item.IdentityKey, domain.ErrDuplicate)
		}
		r.s.items[item.ID] = cloneItem(item)
		r.s.byIdentity[idx] = item.ID
		return nil
	}
	if _, ok := r.tx.items[item.ID]; ok {
		return fmt.Errorf("item %s: %w", item.ID, domain.ErrDuplicate)
	}
	r.tx.items[item.ID] = &pendingItem{item: item.Clone(), created: true}
	r.tx.itemOrder = append(r.tx.itemOrder, item.ID)
	return nil
}

func (r *StockItemRepo) Update(_ context.Context, item *entity.StockItem, expectedVersion int64) error {
	if r.tx == nil {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		cur, ok := r.s.items[item.ID]
		if !ok || cur.Version != expectedVersion {
			return domain.NewError(domain.ErrConcurrency, "el stock fue modificado por otra operación; reintente")
		}
		item.Version = expectedVersion + 1
		r.s.items[item.ID] = cloneItem(item)
		return nil
	}

	if p, ok := r.tx.items[item.ID]; ok {
		if p.item.Version != expectedVersion {
			return domain.NewError(domain.ErrConcurrency, "el stock fue modificado por otra operación; reintente")
		}
		if p.created {
			// Un item creado en esta tx se confirma directo con su estado final.
			p.item = item.Clone()
			return nil
		}
		item.Version = expectedVersion + 1
		p.item = item.Clone()
		return nil
	}

	r.s.mu.RLock()
	cur, ok := r.s.items[item.ID]
	r.s.mu.RUnlock()
	if !ok || cur.Version != expectedVersion {
		return domain.NewError(domain.ErrConcurrency, "el stock fue modificado por otra operación; reintente")
	}
	item.Version = expectedVersion + 1
	r.tx.items[item.ID] = &pendingItem{item: item.Clone(), expected: expectedVersion}
	r.tx.itemOrder = append(r.tx.itemOrder, item.ID)
	return nil
}

func (r *StockItemRepo) ListByLocation(_ context.Context, locationID string, limit, offset int) ([]*entity.StockItem, error) {
	list := r.snapshot(func(it *entity.StockItem) bool {
		return locationID == "" || it.LocationID == locationID
	})
	if offset >= len(list) {
		return []*entity.StockItem{}, nil
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *StockItemRepo) ListLowStock(_ context.Context, locationID string) ([]*entity.StockItem, error) {
	return r.snapshot(func(it *entity.StockItem) bool {
		return (locationID == "" || it.LocationID == locationID) && inventory.EvaluateAlert(it).LowStock
	}), nil
}

// snapshot copia los items confirmados que cumplen keep, ordenados por nombre.
func (r *StockItemRepo) snapshot(keep func(*entity.StockItem) bool) []*entity.StockItem {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.StockItem, 0, len(r.s.items))
	for _, it := range r.s.items {
		if keep(it) {
			out = append(out, cloneItem(it))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
