package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
	"github.com/jhoicas/medequipos-api/internal/domain/repository"
)

// pendingItem cambio de un item acumulado en la transacción.
type pendingItem struct {
	item     entity.StockItem
	expected int64 // versión confirmada sobre la que se calculó el cambio
	created  bool
}

// tx acumula escrituras hasta el Commit. Nada es visible fuera de ella antes.
type tx struct {
	s             *Store
	held          []string
	heldSet       map[string]struct{}
	items         map[string]*pendingItem
	itemOrder     []string
	presentations []*entity.Presentation
	clearDefault  map[string]bool
	movements     []*entity.StockMovement
}

// TxRunner ejecuta funciones transaccionales sobre el Store.
type TxRunner struct {
	s *Store
}

// NewTxRunner crea el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repositorios atados a una transacción. Si fn devuelve error los cambios
// se descartan; si no, se confirman todos juntos. Los bloqueos se liberan al terminar.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	presRepo repository.PresentationRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	t := &tx{
		s:            r.s,
		heldSet:      make(map[string]struct{}),
		items:        make(map[string]*pendingItem),
		clearDefault: make(map[string]bool),
	}
	defer t.releaseAll()

	if err := fn(&StockItemRepo{s: r.s, tx: t}, &PresentationRepo{s: r.s, tx: t}, &MovementRepo{s: r.s, tx: t}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.commit()
}

func (t *tx) lock(ctx context.Context, key string) error {
	if _, ok := t.heldSet[key]; ok {
		return nil
	}
	if err := t.s.acquire(ctx, key); err != nil {
		return err
	}
	t.heldSet[key] = struct{}{}
	t.held = append(t.held, key)
	return nil
}

func (t *tx) releaseAll() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.s.release(t.held[i])
	}
	t.held = nil
}

// commit verifica las versiones y aplica todos los cambios bajo el candado del Store.
func (t *tx) commit() error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range t.itemOrder {
		p := t.items[id]
		cur, exists := s.items[id]
		if p.created {
			if exists {
				return fmt.Errorf("item %s: %w", id, domain.ErrDuplicate)
			}
			if _, taken := s.byIdentity[identityIndex(p.item.LocationID, p.item.IdentityKey)]; taken {
				return fmt.Errorf("identidad %q: %w", p.item.IdentityKey, domain.ErrDuplicate)
			}
			continue
		}
		if !exists || cur.Version != p.expected {
			return domain.NewError(domain.ErrConcurrency, "el stock fue modificado por otra operación; reintente")
		}
	}
	for _, m := range t.movements {
		if _, ok := s.items[m.StockItemID]; !ok {
			if _, pending := t.items[m.StockItemID]; !pending {
				return fmt.Errorf("movimiento %s: item %s: %w", m.ID, m.StockItemID, domain.ErrNotFound)
			}
		}
	}

	for _, id := range t.itemOrder {
		p := t.items[id]
		s.items[id] = cloneItem(&p.item)
		if p.created {
			s.byIdentity[identityIndex(p.item.LocationID, p.item.IdentityKey)] = id
		}
	}
	for stockItemID := range t.clearDefault {
		for _, p := range s.presentations {
			if p.StockItemID == stockItemID {
				p.IsDefault = false
			}
		}
	}
	for _, p := range t.presentations {
		s.presentations[p.ID] = clonePresentation(p)
	}
	for _, m := range t.movements {
		s.movements = append(s.movements, cloneMovement(m))
	}
	return nil
}
