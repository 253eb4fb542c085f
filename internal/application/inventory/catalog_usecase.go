package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/medequipos-api/internal/application/dto"
	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
	"github.com/jhoicas/medequipos-api/internal/domain/inventory"
	"github.com/jhoicas/medequipos-api/internal/domain/repository"
)

// CatalogUseCase consultas de producto y administración de presentaciones.
type CatalogUseCase struct {
	txRunner TxRunner
	itemRepo repository.StockItemRepository
	presRepo repository.PresentationRepository
	locRepo  repository.LocationRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(
	txRunner TxRunner,
	itemRepo repository.StockItemRepository,
	presRepo repository.PresentationRepository,
	locRepo repository.LocationRepository,
) *CatalogUseCase {
	return &CatalogUseCase{txRunner: txRunner, itemRepo: itemRepo, presRepo: presRepo, locRepo: locRepo}
}

// ListLocationItems lista los productos de una carpeta por nombre, con su stock y alertas.
func (uc *CatalogUseCase) ListLocationItems(ctx context.Context, locationID string, page dto.PageRequest) (*dto.LocationItemListResponse, error) {
	locationID = strings.TrimSpace(locationID)
	if locationID == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "carpeta_id es requerido")
	}
	loc, err := uc.locRepo.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.NewError(domain.ErrNotFound, "carpeta %s no encontrada", locationID)
	}

	page.DefaultPage()
	list, err := uc.itemRepo.ListByLocation(ctx, loc.ID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.LocationItemListResponse{
		Items: make([]dto.LocationItem, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, it := range list {
		out.Items = append(out.Items, dto.LocationItem{
			Producto: toProductResponse(it),
			Stock:    inventory.Snapshot(it),
			Alertas:  toAlertResponse(inventory.EvaluateAlert(it)),
		})
	}
	return out, nil
}

// GetProductSummary devuelve stock, presentaciones, caja abierta y alertas de un item.
// Lectura sin bloqueo: es consistente con un único estado confirmado del item.
func (uc *CatalogUseCase) GetProductSummary(ctx context.Context, stockItemID string) (*dto.ProductSummaryResponse, error) {
	item, err := uc.getItem(ctx, stockItemID)
	if err != nil {
		return nil, err
	}
	presentations, err := uc.presRepo.ListByStockItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductSummaryResponse{
		Producto:       toProductResponse(item),
		Stock:          inventory.Snapshot(item),
		Presentaciones: make([]dto.PresentationResponse, 0, len(presentations)),
		CajaAbierta:    toOpenBoxResponse(item),
		Alertas:        toAlertResponse(inventory.EvaluateAlert(item)),
	}
	for _, p := range presentations {
		out.Presentaciones = append(out.Presentaciones, toPresentationResponse(p))
	}
	return out, nil
}

// ListPresentations lista las presentaciones del item, la de por defecto primero.
func (uc *CatalogUseCase) ListPresentations(ctx context.Context, stockItemID string) ([]dto.PresentationResponse, error) {
	if _, err := uc.getItem(ctx, stockItemID); err != nil {
		return nil, err
	}
	list, err := uc.presRepo.ListByStockItem(ctx, stockItemID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PresentationResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPresentationResponse(p))
	}
	return out, nil
}

// CreatePresentation agrega una presentación al item. La primera presentación queda por defecto.
// Una presentación vendible como caja completa debe usar el mismo factor del item.
func (uc *CatalogUseCase) CreatePresentation(ctx context.Context, stockItemID string, in dto.CreatePresentationRequest) (*dto.PresentationResponse, error) {
	name := strings.TrimSpace(in.Nombre)
	if name == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "nombre es requerido")
	}
	factor, err := ParseQuantity("factor_conversion", in.FactorConversion)
	if err != nil {
		return nil, err
	}
	if in.PrecioVenta.IsNegative() {
		return nil, domain.NewError(domain.ErrInvalidInput, "precio_venta no puede ser negativo")
	}

	var created *entity.Presentation
	err = uc.txRunner.Run(ctx, func(
		itemRepo repository.StockItemRepository,
		presRepo repository.PresentationRepository,
		_ repository.StockMovementRepository,
	) error {
		item, err := itemRepo.GetForUpdate(ctx, stockItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.NewError(domain.ErrNotFound, "producto %s no encontrado", stockItemID)
		}
		if in.PuedeVenderCompleta && factor != item.ConversionFactor {
			return domain.NewError(domain.ErrConversionFactorMismatch,
				"una presentación de caja completa debe tener factor %d (recibido %d)", item.ConversionFactor, factor)
		}
		existing, err := presRepo.ListByStockItem(ctx, item.ID)
		if err != nil {
			return err
		}
		isDefault := in.EsDefault || len(existing) == 0
		if isDefault && len(existing) > 0 {
			if err := presRepo.ClearDefault(ctx, item.ID); err != nil {
				return err
			}
		}
		now := time.Now().UTC()
		created = &entity.Presentation{
			ID:               uuid.New().String(),
			StockItemID:      item.ID,
			Name:             name,
			ConversionFactor: factor,
			SalePrice:        in.PrecioVenta,
			SellableAsWhole:  in.PuedeVenderCompleta,
			IsDefault:        isDefault,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		return presRepo.Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}
	resp := toPresentationResponse(created)
	return &resp, nil
}

func (uc *CatalogUseCase) getItem(ctx context.Context, id string) (*entity.StockItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "stock_item_id es requerido")
	}
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NewError(domain.ErrNotFound, "producto %s no encontrado", id)
	}
	return item, nil
}

// defaultPresentations crea las presentaciones iniciales de un item nuevo:
// "Caja x F" (vendible completa, por defecto) y, si F > 1, "Unidad".
func defaultPresentations(item *entity.StockItem, now time.Time) []*entity.Presentation {
	box := &entity.Presentation{
		ID:               uuid.New().String(),
		StockItemID:      item.ID,
		Name:             fmt.Sprintf("Caja x %d", item.ConversionFactor),
		ConversionFactor: item.ConversionFactor,
		SalePrice:        item.BasePrice.Mul(decimal.NewFromInt(int64(item.ConversionFactor))),
		SellableAsWhole:  true,
		IsDefault:        true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if item.ConversionFactor == 1 {
		box.Name = "Unidad"
		return []*entity.Presentation{box}
	}
	unit := &entity.Presentation{
		ID:               uuid.New().String(),
		StockItemID:      item.ID,
		Name:             "Unidad",
		ConversionFactor: 1,
		SalePrice:        item.BasePrice,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return []*entity.Presentation{box, unit}
}
