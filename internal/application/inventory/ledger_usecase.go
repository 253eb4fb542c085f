package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/medequipos-api/internal/application/dto"
	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
	"github.com/jhoicas/medequipos-api/internal/domain/repository"
	"github.com/jhoicas/medequipos-api/pkg/logger"
)

// LedgerUseCase consultas del libro de movimientos y estadísticas de actividad.
type LedgerUseCase struct {
	itemRepo repository.StockItemRepository
	movRepo  repository.StockMovementRepository
	cache    StatsCache
	statsTTL time.Duration
	log      *logger.Logger
}

// NewLedgerUseCase construye el caso de uso. cache puede ser nil (sin caché).
func NewLedgerUseCase(
	itemRepo repository.StockItemRepository,
	movRepo repository.StockMovementRepository,
	cache StatsCache,
	statsTTL time.Duration,
	log *logger.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{itemRepo: itemRepo, movRepo: movRepo, cache: cache, statsTTL: statsTTL, log: log}
}

// ListMovements lista movimientos por carpeta, tipo, referencia externa y ventana de tiempo,
// del más reciente al más antiguo.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, q dto.MovementQuery) (*dto.MovementListResponse, error) {
	f, err := toMovementFilter(q)
	if err != nil {
		return nil, err
	}
	list, err := uc.movRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &dto.MovementListResponse{
		Items: toMovementList(list),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}, nil
}

// ListItemMovements lista los movimientos de un item.
func (uc *LedgerUseCase) ListItemMovements(ctx context.Context, stockItemID string, q dto.MovementQuery) (*dto.MovementListResponse, error) {
	item, err := uc.itemRepo.GetByID(ctx, stockItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NewError(domain.ErrNotFound, "producto %s no encontrado", stockItemID)
	}
	q.StockItemID = item.ID
	return uc.ListMovements(ctx, q)
}

// GetStats devuelve conteos y unidades por tipo para hoy, el mes en curso y el histórico.
// El resultado se cachea statsTTL, por lo que puede no incluir los últimos movimientos.
func (uc *LedgerUseCase) GetStats(ctx context.Context, locationID, stockItemID string) (*dto.LedgerStatsResponse, error) {
	key := fmt.Sprintf("inventario:stats:%s:%s", locationID, stockItemID)
	var cached dto.LedgerStatsResponse
	if uc.cache != nil {
		ok, err := uc.cache.Get(ctx, key, &cached)
		if err != nil {
			uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo leer la caché de estadísticas")
		} else if ok {
			return &cached, nil
		}
	}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	base := repository.MovementFilter{StockItemID: stockItemID, LocationID: locationID}

	out := &dto.LedgerStatsResponse{GeneradoEn: now}
	var err error
	if out.Hoy, err = uc.rollup(ctx, base, &dayStart); err != nil {
		return nil, err
	}
	if out.Mes, err = uc.rollup(ctx, base, &monthStart); err != nil {
		return nil, err
	}
	if out.Historico, err = uc.rollup(ctx, base, nil); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, out, uc.statsTTL); err != nil {
			uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar la caché de estadísticas")
		}
	}
	return out, nil
}

func (uc *LedgerUseCase) rollup(ctx context.Context, f repository.MovementFilter, from *time.Time) ([]dto.RollupResponse, error) {
	f.From = from
	rows, err := uc.movRepo.Rollup(ctx, f)
	if err != nil {
		return nil, err
	}
	byType := make(map[string]repository.MovementRollup, len(rows))
	for _, r := range rows {
		byType[r.Type] = r
	}
	out := make([]dto.RollupResponse, 0, 3)
	for _, t := range []string{entity.MovementTypeEntrada, entity.MovementTypeSalida, entity.MovementTypeAjuste} {
		r := byType[t]
		out = append(out, dto.RollupResponse{Tipo: t, Cantidad: r.Count, Unidades: r.Units})
	}
	return out, nil
}

func toMovementFilter(q dto.MovementQuery) (repository.MovementFilter, error) {
	page := dto.PageRequest{Limit: q.Limit, Offset: q.Offset}
	page.DefaultPage()
	f := repository.MovementFilter{
		StockItemID:       strings.TrimSpace(q.StockItemID),
		LocationID:        strings.TrimSpace(q.CarpetaID),
		Type:              strings.TrimSpace(q.Tipo),
		ExternalReference: strings.TrimSpace(q.ReferenciaExterna),
		Limit:             page.Limit,
		Offset:            page.Offset,
	}
	switch f.Type {
	case "", entity.MovementTypeEntrada, entity.MovementTypeSalida, entity.MovementTypeAjuste:
	default:
		return f, domain.NewError(domain.ErrInvalidInput, "tipo de movimiento inválido: %q", f.Type)
	}
	var err error
	if f.From, err = parseTime("desde", q.Desde, false); err != nil {
		return f, err
	}
	if f.To, err = parseTime("hasta", q.Hasta, true); err != nil {
		return f, err
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return f, domain.NewError(domain.ErrInvalidInput, "desde debe ser anterior a hasta")
	}
	return f, nil
}

// parseTime acepta RFC3339 o AAAA-MM-DD. Una fecha sin hora usada como límite superior
// incluye el día completo.
func parseTime(field, s string, upper bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "%s: fecha inválida %q (use AAAA-MM-DD o RFC3339)", field, s)
	}
	if upper {
		t = t.AddDate(0, 0, 1)
	}
	return &t, nil
}
