package entity

// StockAlert es el estado derivado de alertas de un item. Nunca es autoritativo.
type StockAlert struct {
	StockItemID       string
	TotalUnits        int
	MinUnits          int
	LowStock          bool // total <= mínimo en unidades
	RequiresReplenish bool // stock bajo y sin cajas cerradas
}
