package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
	"github.com/jhoicas/medequipos-api/internal/domain/inventory"
	"github.com/jhoicas/medequipos-api/pkg/logger"
)

// defaultUser se registra cuando la operación no trae usuario.
const defaultUser = "sistema"

// auditInfo datos de auditoría comunes a toda mutación.
type auditInfo struct {
	User            string
	Reference       string
	Reason          string
	ExpectedVersion *int64
}

func (a auditInfo) user() string {
	if u := strings.TrimSpace(a.User); u != "" {
		return u
	}
	return defaultUser
}

// withTimeout acota la duración de una mutación (bloqueos incluidos). d <= 0 no acota.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// checkExpectedVersion rechaza la mutación si el cliente decidió sobre una versión vieja.
func checkExpectedVersion(item *entity.StockItem, expected *int64) error {
	if expected != nil && *expected != item.Version {
		return domain.NewError(domain.ErrConcurrency,
			"el stock cambió (versión esperada %d, actual %d); vuelva a consultar", *expected, item.Version)
	}
	return nil
}

// newMovement arma el registro del libro para la transición before -> after.
func newMovement(before, after *entity.StockItem, movType string, qty int, audit auditInfo, now time.Time) *entity.StockMovement {
	return &entity.StockMovement{
		ID:                uuid.New().String(),
		StockItemID:       after.ID,
		LocationID:        after.LocationID,
		Type:              movType,
		Quantity:          qty,
		StockBefore:       inventory.TotalUnits(before),
		StockAfter:        inventory.TotalUnits(after),
		Reason:            audit.Reason,
		User:              audit.user(),
		ExternalReference: strings.TrimSpace(audit.Reference),
		CreatedAt:         now,
	}
}

// mapTimeout traduce un vencimiento del contexto o un commit sin respuesta en OUTCOME_UNKNOWN.
// El commit pudo haberse aplicado: antes de reenviar hay que buscar el movimiento en el libro.
func mapTimeout(err error, reference string) error {
	if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) &&
		!errors.Is(err, domain.ErrOutcomeUnknown) {
		return err
	}
	if ref := strings.TrimSpace(reference); ref != "" {
		return domain.NewError(domain.ErrOutcomeUnknown,
			"la operación no respondió a tiempo y pudo haberse aplicado; consulte /api/inventario/movimientos?referencia_externa=%s antes de reenviar", ref)
	}
	return domain.NewError(domain.ErrOutcomeUnknown,
		"la operación no respondió a tiempo y pudo haberse aplicado; consulte los movimientos del item antes de reenviar")
}

// logResult registra el resultado de una mutación.
func logResult(log *logger.Logger, op, stockItemID string, err error) {
	if err == nil {
		return
	}
	kind, code, msg := domain.Describe(err)
	switch kind {
	case domain.KindConcurrency, domain.KindUnknown:
		log.Warn().Str("op", op).Str("stock_item_id", stockItemID).Str("code", code).Msg(msg)
	case domain.KindInternal:
		log.Error().Err(err).Str("op", op).Str("stock_item_id", stockItemID).Msg("mutación fallida")
	default:
		log.Debug().Str("op", op).Str("stock_item_id", stockItemID).Str("code", code).Msg(msg)
	}
}

func logMovement(log *logger.Logger, op string, m *entity.StockMovement) {
	log.Info().
		Str("op", op).
		Str("movement_id", m.ID).
		Str("stock_item_id", m.StockItemID).
		Str("tipo", m.Type).
		Int("cantidad", m.Quantity).
		Int("stock_anterior", m.StockBefore).
		Int("stock_nuevo", m.StockAfter).
		Str("usuario", m.User).
		Msg("movimiento registrado")
}
