package inventory

import (
	"time"

	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
)

// SaleRequest es la venta a planificar. Presentation es opcional.
type SaleRequest struct {
	SaleType     string
	Quantity     int
	Presentation *entity.Presentation
}

// SalePlan es el efecto de una venta sobre un item: el mismo plan lo usan el simulador y el ejecutor.
type SalePlan struct {
	SaleType        string
	RequestedQty    int
	Units           int
	WholeBoxesTaken int
	BoxesOpened     int
	Before          entity.StockItem
	After           entity.StockItem
}

// PlanSale calcula el estado resultante de una venta sin efectos secundarios.
func PlanSale(item entity.StockItem, req SaleRequest, now time.Time) (SalePlan, error) {
	plan := SalePlan{SaleType: req.SaleType, RequestedQty: req.Quantity, Before: item.Clone()}
	if req.Quantity <= 0 {
		return plan, domain.InvalidQuantity("la cantidad debe ser mayor a cero")
	}
	if req.Presentation != nil && req.Presentation.StockItemID != item.ID {
		return plan, domain.NewError(domain.ErrNotFound, "presentación %s no pertenece al producto", req.Presentation.ID)
	}

	switch req.SaleType {
	case entity.SaleTypeWholeBox:
		if req.Presentation != nil && !req.Presentation.SellableAsWhole {
			return plan, domain.NewError(domain.ErrPresentationNotSellableAsBox,
				"la presentación %q no se puede vender como caja completa", req.Presentation.Name)
		}
		after, err := ConsumeBoxes(item, req.Quantity)
		if err != nil {
			return plan, err
		}
		plan.Units = ToUnits(req.Quantity, item.ConversionFactor)
		plan.WholeBoxesTaken = req.Quantity
		plan.After = after

	case entity.SaleTypeUnits:
		units := req.Quantity
		if req.Presentation != nil {
			units = req.Quantity * req.Presentation.ConversionFactor
		}
		after, c, err := ConsumeUnits(item, units, false, now)
		if err != nil {
			return plan, err
		}
		plan.Units = units
		plan.WholeBoxesTaken = c.WholeBoxes
		plan.BoxesOpened = c.BoxesOpened
		plan.After = after

	default:
		return plan, domain.NewError(domain.ErrInvalidInput, "tipo de venta inválido: %q", req.SaleType)
	}

	if err := CheckInvariant(&plan.After); err != nil {
		return plan, err
	}
	return plan, nil
}

// ConsumeBoxes descuenta n cajas cerradas. No toca la caja abierta.
func ConsumeBoxes(item entity.StockItem, n int) (entity.StockItem, error) {
	if n <= 0 {
		return item, domain.InvalidQuantity("la cantidad de cajas debe ser mayor a cero")
	}
	if item.BoxesStock < n {
		return item, domain.InsufficientBoxes(item.BoxesStock, n)
	}
	out := item.Clone()
	out.BoxesStock -= n
	return out, nil
}
