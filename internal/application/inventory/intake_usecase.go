package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/medequipos-api/internal/application/dto"
	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
	"github.com/jhoicas/medequipos-api/internal/domain/inventory"
	"github.com/jhoicas/medequipos-api/internal/domain/repository"
	"github.com/jhoicas/medequipos-api/pkg/logger"
)

// defaultCurrency moneda de los productos creados sin moneda explícita.
const defaultCurrency = "COP"

// IntakeUseCase registra ingresos de cajas cerradas. Si el producto no existe en la carpeta
// (misma identidad nombre+marca+modelo) se crea junto con sus presentaciones por defecto.
type IntakeUseCase struct {
	txRunner        TxRunner
	locationRepo    repository.LocationRepository
	log             *logger.Logger
	mutationTimeout time.Duration
}

// NewIntakeUseCase construye el caso de uso.
func NewIntakeUseCase(
	txRunner TxRunner,
	locationRepo repository.LocationRepository,
	log *logger.Logger,
	mutationTimeout time.Duration,
) *IntakeUseCase {
	return &IntakeUseCase{
		txRunner:        txRunner,
		locationRepo:    locationRepo,
		log:             log,
		mutationTimeout: mutationTimeout,
	}
}

// ProcessFractionedIntake suma cantidad_cajas × unidades_por_caja al stock y agrega un
// movimiento de entrada. El factor de un item existente no cambia: un ingreso con otro
// factor se rechaza con CONVERSION_FACTOR_MISMATCH.
func (uc *IntakeUseCase) ProcessFractionedIntake(ctx context.Context, in dto.IntakeRequest) (*dto.MovementResult, error) {
	boxes, err := ParseQuantity("cantidad_cajas", in.CantidadCajas)
	if err != nil {
		return nil, err
	}
	factor, err := ParseQuantity("unidades_por_caja", in.UnidadesPorCaja)
	if err != nil {
		return nil, err
	}
	stockItemID := strings.TrimSpace(in.StockItemID)
	if stockItemID == "" && in.NuevoProducto == nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "stock_item_id o nuevo_producto es requerido")
	}
	if stockItemID == "" {
		if err := uc.validateNewProduct(ctx, in.NuevoProducto); err != nil {
			return nil, err
		}
	}

	ctx, cancel := withTimeout(ctx, uc.mutationTimeout)
	defer cancel()

	audit := auditInfo{
		User:      in.Usuario,
		Reference: in.ReferenciaExterna,
		Reason:    fmt.Sprintf("ingreso: %d cajas x %d unidades", boxes, factor),
	}
	var (
		result  *dto.MovementResult
		mov     *entity.StockMovement
		created bool
	)
	err = uc.txRunner.Run(ctx, func(
		itemRepo repository.StockItemRepository,
		presRepo repository.PresentationRepository,
		movRepo repository.StockMovementRepository,
	) error {
		now := time.Now().UTC()
		var item *entity.StockItem
		var err error
		if stockItemID != "" {
			item, err = itemRepo.GetForUpdate(ctx, stockItemID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.NewError(domain.ErrNotFound, "producto %s no encontrado", stockItemID)
			}
		} else {
			np := in.NuevoProducto
			key := inventory.IdentityKey(np.Nombre, np.Marca, np.Modelo)
			item, err = itemRepo.GetByIdentityForUpdate(ctx, np.CarpetaID, key)
			if err != nil {
				return err
			}
		}

		var before, after entity.StockItem
		if item == nil {
			created = true
			newItem := buildStockItem(in.NuevoProducto, factor, in.PermiteFraccionamiento, now)
			before = newItem.Clone()
			newItem.BoxesStock = boxes
			if err := itemRepo.Create(ctx, &newItem); err != nil {
				if errors.Is(err, domain.ErrDuplicate) {
					return domain.NewError(domain.ErrConcurrency,
						"otro ingreso registró el mismo producto al mismo tiempo; reintente")
				}
				return err
			}
			for _, p := range defaultPresentations(&newItem, now) {
				if err := presRepo.Create(ctx, p); err != nil {
					return err
				}
			}
			after = newItem
		} else {
			if item.ConversionFactor != factor {
				return domain.NewError(domain.ErrConversionFactorMismatch,
					"el producto %q usa %d unidades por caja; el ingreso trae %d", item.Name, item.ConversionFactor, factor)
			}
			before = item.Clone()
			after, err = inventory.ReceiveBoxes(*item, boxes)
			if err != nil {
				return err
			}
			if in.PermiteFraccionamiento != nil {
				after.AllowsFractioning = *in.PermiteFraccionamiento
			}
			after.UpdatedAt = now
			if err := itemRepo.Update(ctx, &after, item.Version); err != nil {
				return err
			}
		}

		mov = newMovement(&before, &after, entity.MovementTypeEntrada, boxes*factor, audit, now)
		if err := movRepo.Append(ctx, mov); err != nil {
			return err
		}
		result = &dto.MovementResult{
			Movimiento: toMovementResponse(mov),
			Stock:      inventory.Snapshot(&after),
			Unidades:   boxes * factor,
			ItemCreado: created,
		}
		return nil
	})
	if err != nil {
		err = mapTimeout(err, audit.Reference)
		logResult(uc.log, "ingreso", stockItemID, err)
		return nil, err
	}
	logMovement(uc.log, "ingreso", mov)
	return result, nil
}

func (uc *IntakeUseCase) validateNewProduct(ctx context.Context, np *dto.NewProductRequest) error {
	if strings.TrimSpace(np.Nombre) == "" {
		return domain.NewError(domain.ErrInvalidInput, "nuevo_producto.nombre es requerido")
	}
	if strings.TrimSpace(np.CarpetaID) == "" {
		return domain.NewError(domain.ErrInvalidInput, "nuevo_producto.carpeta_id es requerido")
	}
	if np.CantidadMinima < 0 {
		return domain.NewError(domain.ErrInvalidInput, "nuevo_producto.cantidad_minima no puede ser negativa")
	}
	if np.PrecioBase.IsNegative() {
		return domain.NewError(domain.ErrInvalidInput, "nuevo_producto.precio_base no puede ser negativo")
	}
	loc, err := uc.locationRepo.GetByID(ctx, np.CarpetaID)
	if err != nil {
		return err
	}
	if loc == nil {
		return domain.NewError(domain.ErrNotFound, "carpeta %s no encontrada", np.CarpetaID)
	}
	return nil
}

func buildStockItem(np *dto.NewProductRequest, factor int, fractioning *bool, now time.Time) entity.StockItem {
	currency := strings.ToUpper(strings.TrimSpace(np.Moneda))
	if currency == "" {
		currency = defaultCurrency
	}
	return entity.StockItem{
		ID:                uuid.New().String(),
		LocationID:        np.CarpetaID,
		Name:              strings.TrimSpace(np.Nombre),
		Brand:             strings.TrimSpace(np.Marca),
		Model:             strings.TrimSpace(np.Modelo),
		IdentityKey:       inventory.IdentityKey(np.Nombre, np.Marca, np.Modelo),
		ConversionFactor:  factor,
		MinQuantity:       np.CantidadMinima,
		AllowsFractioning: fractioning != nil && *fractioning,
		BasePrice:         np.PrecioBase,
		Currency:          currency,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
