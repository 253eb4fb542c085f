package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/medequipos-api/internal/application/dto"
	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
	"github.com/jhoicas/medequipos-api/internal/domain/inventory"
	"github.com/jhoicas/medequipos-api/internal/domain/repository"
	"github.com/jhoicas/medequipos-api/pkg/logger"
)

// AdjustmentUseCase registra correcciones de conteo físico, mermas y sobrantes.
type AdjustmentUseCase struct {
	txRunner        TxRunner
	log             *logger.Logger
	mutationTimeout time.Duration
}

// NewAdjustmentUseCase construye el caso de uso.
func NewAdjustmentUseCase(txRunner TxRunner, log *logger.Logger, mutationTimeout time.Duration) *AdjustmentUseCase {
	return &AdjustmentUseCase{txRunner: txRunner, log: log, mutationTimeout: mutationTimeout}
}

// RegisterAdjustment aplica una corrección con signo en unidades base.
// Positivo suma sueltas (y cierra cajas completas); negativo consume como una venta por
// unidades pero siempre puede abrir caja. El motivo es obligatorio.
func (uc *AdjustmentUseCase) RegisterAdjustment(ctx context.Context, stockItemID string, in dto.AdjustmentRequest) (*dto.MovementResult, error) {
	delta, err := ParseSignedQuantity("cantidad", in.Cantidad)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(in.Motivo)
	if reason == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "motivo es requerido")
	}
	audit := auditInfo{User: in.Usuario, Reference: in.ReferenciaExterna, Reason: reason}

	ctx, cancel := withTimeout(ctx, uc.mutationTimeout)
	defer cancel()

	var result *dto.MovementResult
	var mov *entity.StockMovement
	err = uc.txRunner.Run(ctx, func(
		itemRepo repository.StockItemRepository,
		_ repository.PresentationRepository,
		movRepo repository.StockMovementRepository,
	) error {
		item, err := itemRepo.GetForUpdate(ctx, stockItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.NewError(domain.ErrNotFound, "producto %s no encontrado", stockItemID)
		}
		now := time.Now().UTC()
		after, c, err := inventory.ApplyAdjustment(*item, delta, now)
		if err != nil {
			return err
		}
		if err := inventory.CheckInvariant(&after); err != nil {
			return err
		}
		after.UpdatedAt = now
		if err := itemRepo.Update(ctx, &after, item.Version); err != nil {
			return err
		}
		mov = newMovement(item, &after, entity.MovementTypeAjuste, delta, audit, now)
		if err := movRepo.Append(ctx, mov); err != nil {
			return err
		}
		result = &dto.MovementResult{
			Movimiento:    toMovementResponse(mov),
			Stock:         inventory.Snapshot(&after),
			Unidades:      delta,
			CajasAbiertas: c.BoxesOpened,
		}
		return nil
	})
	if err != nil {
		err = mapTimeout(err, audit.Reference)
		logResult(uc.log, "ajuste", stockItemID, err)
		return nil, err
	}
	logMovement(uc.log, "ajuste", mov)
	return result, nil
}
