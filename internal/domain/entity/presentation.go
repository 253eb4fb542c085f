package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Presentation es una forma de venta de un StockItem (caja, unidad, pack).
// Es una vista de precio/granularidad sobre el mismo stock, no un stock independiente.
type Presentation struct {
	ID               string
	StockItemID      string
	Name             string
	ConversionFactor int // unidades base que representa una unidad de esta presentación
	SalePrice        decimal.Decimal
	SellableAsWhole  bool
	IsDefault        bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
