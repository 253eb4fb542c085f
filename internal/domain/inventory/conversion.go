package inventory

import (
	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
)

// Split descompone una cantidad de unidades base en cajas completas y resto.
// factor 1 equivale a un producto solo por unidades.
func Split(units, factor int) (boxes, remainder int, err error) {
	if factor < 1 {
		return 0, 0, domain.InvalidQuantity("factor de conversión inválido: %d", factor)
	}
	if units < 0 {
		return 0, 0, domain.InvalidQuantity("cantidad negativa: %d", units)
	}
	return units / factor, units % factor, nil
}

// ToUnits convierte cajas a unidades base.
func ToUnits(boxes, factor int) int {
	return boxes * factor
}

// TotalUnits = cajas × factor + unidades sueltas + remanente de la caja abierta.
func TotalUnits(item *entity.StockItem) int {
	return ToUnits(item.BoxesStock, item.ConversionFactor) + item.EffectiveLooseUnits()
}

// Snapshot toma la foto del stock de un item.
func Snapshot(item *entity.StockItem) entity.StockSnapshot {
	return entity.StockSnapshot{
		BoxesStock:       item.BoxesStock,
		LooseUnits:       item.LooseUnits,
		OpenBoxRemaining: item.OpenBoxRemaining(),
		HasOpenBox:       item.OpenBox != nil,
		ConversionFactor: item.ConversionFactor,
		TotalUnits:       TotalUnits(item),
		Version:          item.Version,
	}
}

// CheckInvariant verifica 0 <= sueltas + caja abierta < factor y contadores no negativos.
func CheckInvariant(item *entity.StockItem) error {
	switch {
	case item.ConversionFactor < 1:
		return domain.NewError(domain.ErrInternal, "item %s: factor de conversión %d", item.ID, item.ConversionFactor)
	case item.BoxesStock < 0 || item.LooseUnits < 0:
		return domain.NewError(domain.ErrInternal, "item %s: stock negativo", item.ID)
	case item.OpenBox != nil && item.OpenBox.RemainingUnits <= 0:
		return domain.NewError(domain.ErrInternal, "item %s: caja abierta vacía", item.ID)
	case item.EffectiveLooseUnits() >= item.ConversionFactor:
		return domain.NewError(domain.ErrInternal, "item %s: %d unidades sueltas con factor %d",
			item.ID, item.EffectiveLooseUnits(), item.ConversionFactor)
	}
	return nil
}
