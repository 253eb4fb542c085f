package inventory

import (
	"time"

	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
)

// ReceiveBoxes suma cajas cerradas de un ingreso.
func ReceiveBoxes(item entity.StockItem, boxes int) (entity.StockItem, error) {
	if boxes < 1 {
		return item, domain.InvalidQuantity("cantidad_cajas debe ser >= 1")
	}
	out := item.Clone()
	out.BoxesStock += boxes
	return out, nil
}

// ApplyAdjustment aplica una corrección con signo en unidades base.
// Un ajuste negativo puede abrir caja aunque el item no permita fraccionamiento (merma física);
// la consumición solo se informa para ajustes negativos.
func ApplyAdjustment(item entity.StockItem, delta int, now time.Time) (entity.StockItem, UnitConsumption, error) {
	switch {
	case delta == 0:
		return item, UnitConsumption{}, domain.InvalidQuantity("el ajuste no puede ser cero")
	case delta < 0:
		return ConsumeUnits(item, -delta, true, now)
	}
	out := item.Clone()
	out.LooseUnits += delta
	return Normalize(out), UnitConsumption{}, nil
}

// Normalize convierte en cajas cerradas cada caja completa acumulada en sueltas + caja abierta.
// El remanente que queda se mantiene primero en la caja abierta.
func Normalize(item entity.StockItem) entity.StockItem {
	out := item.Clone()
	pool := out.EffectiveLooseUnits()
	out.BoxesStock += pool / out.ConversionFactor
	pool %= out.ConversionFactor
	if out.OpenBox != nil {
		out.OpenBox.RemainingUnits = min(out.OpenBox.RemainingUnits, pool)
		pool -= out.OpenBox.RemainingUnits
		if out.OpenBox.RemainingUnits == 0 {
			out.OpenBox = nil
		}
	}
	out.LooseUnits = pool
	return out
}
