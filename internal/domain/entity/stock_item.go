package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem representa el stock de un producto en una carpeta (una fila por producto+ubicación).
// El stock se lleva en cajas completas más unidades sueltas; la caja abierta vive en la misma fila
// para compartir bloqueo y versión.
type StockItem struct {
	ID                string
	LocationID        string
	Name              string
	Brand             string
	Model             string
	IdentityKey       string // nombre+marca+modelo normalizado, único por carpeta
	ConversionFactor  int    // unidades base por caja (>= 1)
	BoxesStock        int    // cajas cerradas
	LooseUnits        int    // unidades fuera de cualquier caja
	MinQuantity       int    // punto de reorden, en cajas
	AllowsFractioning bool
	BasePrice         decimal.Decimal
	Currency          string
	OpenBox           *OpenBox // nil = no hay caja abierta
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OpenBox es la única caja parcialmente consumida de un StockItem.
type OpenBox struct {
	OriginalFactor int
	RemainingUnits int
	OpenedAt       time.Time
}

// OpenBoxRemaining devuelve las unidades que quedan en la caja abierta (0 si no hay).
func (s *StockItem) OpenBoxRemaining() int {
	if s.OpenBox == nil {
		return 0
	}
	return s.OpenBox.RemainingUnits
}

// EffectiveLooseUnits suma unidades sueltas y el remanente de la caja abierta.
func (s *StockItem) EffectiveLooseUnits() int {
	return s.LooseUnits + s.OpenBoxRemaining()
}

// Clone devuelve una copia profunda (la caja abierta no se comparte).
func (s StockItem) Clone() StockItem {
	if s.OpenBox != nil {
		ob := *s.OpenBox
		s.OpenBox = &ob
	}
	return s
}
