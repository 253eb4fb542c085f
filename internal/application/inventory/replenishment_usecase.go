package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/medequipos-api/internal/application/dto"
	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
	"github.com/jhoicas/medequipos-api/internal/domain/inventory"
	"github.com/jhoicas/medequipos-api/internal/domain/repository"
	"github.com/jhoicas/medequipos-api/pkg/logger"
)

// DefaultCriticalLimit tamaño de la lista de stock crítico cuando el cliente no envía limite.
const DefaultCriticalLimit = 10

// ReplenishmentUseCase genera la lista de productos con stock crítico de una carpeta.
type ReplenishmentUseCase struct {
	itemRepo repository.StockItemRepository
	cache    StatsCache
	cacheTTL time.Duration
	log      *logger.Logger
}

// NewReplenishmentUseCase construye el caso de uso de reposición. cache puede ser nil.
func NewReplenishmentUseCase(
	itemRepo repository.StockItemRepository,
	cache StatsCache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{itemRepo: itemRepo, cache: cache, cacheTTL: cacheTTL, log: log}
}

// GetCriticalStock devuelve hasta limite productos con stock bajo, los más urgentes primero:
// requiere reposición (sin cajas cerradas), menor cobertura, mayor déficit.
// limit 0 devuelve todos. locationID vacío considera todas las carpetas.
func (uc *ReplenishmentUseCase) GetCriticalStock(ctx context.Context, locationID string, limit int) ([]dto.CriticalStockItem, error) {
	if limit < 0 {
		return nil, domain.NewError(domain.ErrInvalidInput, "limite no puede ser negativo")
	}
	locationID = strings.TrimSpace(locationID)

	key := fmt.Sprintf("inventario:critico:%s:%d", locationID, limit)
	if uc.cache != nil {
		var cached []dto.CriticalStockItem
		ok, err := uc.cache.Get(ctx, key, &cached)
		if err != nil {
			uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo leer la caché de stock crítico")
		} else if ok {
			return cached, nil
		}
	}

	// 1. Items por debajo del punto de reorden
	items, err := uc.itemRepo.ListLowStock(ctx, locationID)
	if err != nil {
		return nil, err
	}

	// 2. Ordenar por urgencia y recortar
	ranked := inventory.RankCritical(items, limit)

	// 3. Construir DTOs con prioridad (1 = más urgente) y cajas sugeridas
	out := make([]dto.CriticalStockItem, 0, len(ranked))
	for i, it := range ranked {
		alert := inventory.EvaluateAlert(it)
		out = append(out, dto.CriticalStockItem{
			Prioridad:      i + 1,
			Producto:       toProductResponse(it),
			Stock:          inventory.Snapshot(it),
			Alertas:        toAlertResponse(alert),
			CajasSugeridas: suggestedBoxes(it, alert),
		})
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, out, uc.cacheTTL); err != nil {
			uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar la caché de stock crítico")
		}
	}
	return out, nil
}

// suggestedBoxes cajas a pedir para llegar a 1.5 veces el mínimo (redondeo hacia arriba).
func suggestedBoxes(item *entity.StockItem, alert entity.StockAlert) int {
	ideal := alert.MinUnits * 3 / 2
	if ideal < alert.MinUnits+1 {
		ideal = alert.MinUnits + 1
	}
	missing := ideal - alert.TotalUnits
	if missing <= 0 {
		return 0
	}
	return (missing + item.ConversionFactor - 1) / item.ConversionFactor
}
