package entity

import "time"

// Tipos de movimiento del libro de stock.
const (
	MovementTypeEntrada = "entrada"
	MovementTypeSalida  = "salida"
	MovementTypeAjuste  = "ajuste"
)

// StockMovement es un registro inmutable del libro de movimientos.
// Quantity está en unidades base: magnitud para entrada/salida, con signo para ajuste.
type StockMovement struct {
	ID                string
	StockItemID       string
	LocationID        string
	Type              string
	Quantity          int
	SaleType          string // solo en salidas: caja_completa | unidades
	PresentationID    string
	StockBefore       int // total de unidades antes del movimiento
	StockAfter        int
	Reason            string
	User              string
	ExternalReference string
	CreatedAt         time.Time
}

// Delta devuelve el cambio con signo que el movimiento aplicó al total de unidades.
func (m *StockMovement) Delta() int {
	switch m.Type {
	case MovementTypeSalida:
		return -m.Quantity
	default:
		return m.Quantity
	}
}
