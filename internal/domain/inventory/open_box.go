package inventory

import (
	"time"

	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
)

// UnitConsumption detalla de dónde salieron las unidades de una venta por unidades.
type UnitConsumption struct {
	FromOpenBox int
	FromLoose   int
	WholeBoxes  int // cajas cerradas consumidas enteras
	BoxesOpened int // 0 o 1
}

// ConsumeUnits aplica la transición de la caja abierta para una salida de qty unidades.
//
// Orden: caja abierta, luego sueltas. Si no alcanza y el item no permite fraccionamiento
// (ni forceOpen), falla con FractioningNotAllowed aunque haya cajas cerradas; con factor 1
// no hay nada que fraccionar. Si se puede, el faltante se cubre con cajas cerradas: los
// múltiplos exactos del factor se toman enteros y, si queda resto, se abre una caja más.
// item no se modifica; se devuelve la copia resultante.
func ConsumeUnits(item entity.StockItem, qty int, forceOpen bool, now time.Time) (entity.StockItem, UnitConsumption, error) {
	var c UnitConsumption
	if qty <= 0 {
		return item, c, domain.InvalidQuantity("la cantidad debe ser mayor a cero")
	}
	available := TotalUnits(&item)
	if qty > available {
		return item, c, domain.InsufficientUnits(available, qty)
	}

	out := item.Clone()
	pool := out.EffectiveLooseUnits()
	if qty <= pool {
		c.FromOpenBox = min(qty, out.OpenBoxRemaining())
		c.FromLoose = qty - c.FromOpenBox
		if out.OpenBox != nil {
			out.OpenBox.RemainingUnits -= c.FromOpenBox
			if out.OpenBox.RemainingUnits == 0 {
				out.OpenBox = nil
			}
		}
		out.LooseUnits -= c.FromLoose
		return out, c, nil
	}

	if !out.AllowsFractioning && !forceOpen && out.ConversionFactor > 1 {
		return item, c, domain.NewError(domain.ErrFractioningNotAllowed,
			"el producto no permite fraccionamiento: solo hay %d unidades sueltas", pool)
	}

	whole, rem, err := Split(qty-pool, out.ConversionFactor)
	if err != nil {
		return item, c, err
	}

	c.FromOpenBox = out.OpenBoxRemaining()
	c.FromLoose = out.LooseUnits
	c.WholeBoxes = whole
	out.LooseUnits = 0
	out.OpenBox = nil
	out.BoxesStock -= whole
	if rem > 0 {
		// Se abre una caja y su capacidad se suma al remanente ya consumido.
		c.BoxesOpened = 1
		out.BoxesStock--
		out.OpenBox = &entity.OpenBox{
			OriginalFactor: out.ConversionFactor,
			RemainingUnits: out.ConversionFactor - rem,
			OpenedAt:       now,
		}
	}
	return out, c, nil
}
