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

// SaleUseCase simula y ejecuta ventas por caja completa o por unidades.
// Simulación y ejecución usan el mismo plan (inventory.PlanSale).
type SaleUseCase struct {
	txRunner        TxRunner
	itemRepo        repository.StockItemRepository
	presRepo        repository.PresentationRepository
	log             *logger.Logger
	mutationTimeout time.Duration
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(
	txRunner TxRunner,
	itemRepo repository.StockItemRepository,
	presRepo repository.PresentationRepository,
	log *logger.Logger,
	mutationTimeout time.Duration,
) *SaleUseCase {
	return &SaleUseCase{
		txRunner:        txRunner,
		itemRepo:        itemRepo,
		presRepo:        presRepo,
		log:             log,
		mutationTimeout: mutationTimeout,
	}
}

// SimulateSale proyecta una venta sin persistir nada. Los fallos de negocio vuelven dentro
// de la simulación (exitosa=false, codigo_error); solo se devuelve error si falla la lectura.
func (uc *SaleUseCase) SimulateSale(ctx context.Context, stockItemID string, in dto.SimulateSaleRequest) (*entity.SaleSimulation, error) {
	sim := &entity.SaleSimulation{StockItemID: stockItemID, SaleType: in.TipoVenta}
	qty, err := ParseQuantity("cantidad", in.Cantidad)
	if err != nil {
		return failSimulation(sim, err), nil
	}
	sim.RequestedQty = qty

	item, err := uc.itemRepo.GetByID(ctx, stockItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return failSimulation(sim, domain.NewError(domain.ErrNotFound, "producto %s no encontrado", stockItemID)), nil
	}
	sim.Before = inventory.Snapshot(item)

	req := inventory.SaleRequest{SaleType: in.TipoVenta, Quantity: qty}
	if id := strings.TrimSpace(in.PresentacionID); id != "" {
		p, err := uc.presRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return failSimulation(sim, domain.NewError(domain.ErrNotFound, "presentación %s no encontrada", id)), nil
		}
		req.Presentation = p
	}

	plan, err := inventory.PlanSale(*item, req, time.Now().UTC())
	if err != nil {
		return failSimulation(sim, err), nil
	}
	projected := inventory.Snapshot(&plan.After)
	projected.Version = item.Version + 1
	sim.UnitsToSell = plan.Units
	sim.BoxesToOpen = plan.BoxesOpened
	sim.WholeBoxesTaken = plan.WholeBoxesTaken
	sim.Projected = &projected
	sim.Success = true
	return sim, nil
}

func failSimulation(sim *entity.SaleSimulation, err error) *entity.SaleSimulation {
	_, code, msg := domain.Describe(err)
	sim.Success = false
	sim.ErrorCode = code
	sim.ErrorMessage = msg
	sim.Projected = nil
	return sim
}

// SellWholeBoxes vende cajas cerradas con una presentación vendible completa.
func (uc *SaleUseCase) SellWholeBoxes(ctx context.Context, stockItemID string, in dto.SellBoxesRequest) (*dto.MovementResult, error) {
	qty, err := ParseQuantity("cantidad", in.Cantidad)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.PresentacionID) == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "presentacion_id es requerido")
	}
	req := inventory.SaleRequest{SaleType: entity.SaleTypeWholeBox, Quantity: qty}
	audit := auditInfo{
		User:            in.Usuario,
		Reference:       in.ReferenciaExterna,
		Reason:          "venta caja completa",
		ExpectedVersion: in.VersionEsperada,
	}
	return uc.execute(ctx, "venta_caja_completa", stockItemID, in.PresentacionID, req, audit)
}

// SellUnits vende unidades sueltas, abriendo una caja si hace falta.
func (uc *SaleUseCase) SellUnits(ctx context.Context, stockItemID string, in dto.SellUnitsRequest) (*dto.MovementResult, error) {
	qty, err := ParseQuantity("cantidad_unidades", in.CantidadUnidades)
	if err != nil {
		return nil, err
	}
	req := inventory.SaleRequest{SaleType: entity.SaleTypeUnits, Quantity: qty}
	audit := auditInfo{
		User:            in.Usuario,
		Reference:       in.ReferenciaExterna,
		Reason:          "venta por unidades",
		ExpectedVersion: in.VersionEsperada,
	}
	return uc.execute(ctx, "venta_unidades", stockItemID, "", req, audit)
}

// execute bloquea el item, recalcula el plan sobre el estado actual, guarda el nuevo estado
// con control de versión y agrega exactamente un movimiento de salida, todo en una transacción.
func (uc *SaleUseCase) execute(
	ctx context.Context,
	op, stockItemID, presentationID string,
	req inventory.SaleRequest,
	audit auditInfo,
) (*dto.MovementResult, error) {
	ctx, cancel := withTimeout(ctx, uc.mutationTimeout)
	defer cancel()

	var result *dto.MovementResult
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.StockItemRepository,
		presRepo repository.PresentationRepository,
		movRepo repository.StockMovementRepository,
	) error {
		item, err := itemRepo.GetForUpdate(ctx, stockItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.NewError(domain.ErrNotFound, "producto %s no encontrado", stockItemID)
		}
		if err := checkExpectedVersion(item, audit.ExpectedVersion); err != nil {
			return err
		}
		if presentationID != "" {
			p, err := presRepo.GetByID(ctx, presentationID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.NewError(domain.ErrNotFound, "presentación %s no encontrada", presentationID)
			}
			req.Presentation = p
		}

		now := time.Now().UTC()
		plan, err := inventory.PlanSale(*item, req, now)
		if err != nil {
			return err
		}
		after := plan.After
		after.UpdatedAt = now
		if err := itemRepo.Update(ctx, &after, item.Version); err != nil {
			return err
		}

		mov = newMovement(item, &after, entity.MovementTypeSalida, plan.Units, audit, now)
		mov.SaleType = req.SaleType
		mov.PresentationID = presentationID
		if err := movRepo.Append(ctx, mov); err != nil {
			return err
		}
		result = &dto.MovementResult{
			Movimiento:    toMovementResponse(mov),
			Stock:         inventory.Snapshot(&after),
			Unidades:      plan.Units,
			CajasAbiertas: plan.BoxesOpened,
		}
		return nil
	})
	if err != nil {
		err = mapTimeout(err, audit.Reference)
		logResult(uc.log, op, stockItemID, err)
		return nil, err
	}
	logMovement(uc.log, op, mov)
	return result, nil
}
