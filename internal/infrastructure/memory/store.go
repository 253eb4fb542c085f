package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
)

// Store almacén en memoria con bloqueo por item. Implementa los mismos puertos que Postgres:
// las lecturas fuera de transacción ven solo estados confirmados y cada transacción aplica
// sus cambios de una vez en el Commit, con verificación de versión.
type Store struct {
	mu            sync.RWMutex
	items         map[string]*entity.StockItem
	byIdentity    map[string]string // carpeta|clave -> item ID
	presentations map[string]*entity.Presentation
	movements     []*entity.StockMovement
	locations     map[string]*entity.Location

	locksMu     sync.Mutex
	locks       map[string]chan struct{}
	lockTimeout time.Duration
}

// NewStore crea un almacén vacío. lockTimeout acota la espera por el bloqueo de un item
// (0 = esperar hasta que venza el contexto).
func NewStore(lockTimeout time.Duration) *Store {
	return &Store{
		items:         make(map[string]*entity.StockItem),
		byIdentity:    make(map[string]string),
		presentations: make(map[string]*entity.Presentation),
		locations:     make(map[string]*entity.Location),
		locks:         make(map[string]chan struct{}),
		lockTimeout:   lockTimeout,
	}
}

func identityIndex(locationID, key string) string { return locationID + "|" + key }

func (s *Store) lockChan(key string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[key] = l
	}
	return l
}

// acquire toma el bloqueo key respetando el contexto y lockTimeout.
func (s *Store) acquire(ctx context.Context, key string) error {
	l := s.lockChan(key)
	var timeout <-chan time.Time
	if s.lockTimeout > 0 {
		t := time.NewTimer(s.lockTimeout)
		defer t.Stop()
		timeout = t.C
	}
	select {
	case l <- struct{}{}:
		return nil
	case <-timeout:
		return domain.NewError(domain.ErrConcurrency, "tiempo de espera de bloqueo agotado; reintente")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release(key string) {
	<-s.lockChan(key)
}

func cloneItem(it *entity.StockItem) *entity.StockItem {
	if it == nil {
		return nil
	}
	c := it.Clone()
	return &c
}

func clonePresentation(p *entity.Presentation) *entity.Presentation {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func cloneMovement(m *entity.StockMovement) *entity.StockMovement {
	c := *m
	return &c
}
