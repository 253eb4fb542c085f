package entity

// Tipos de venta.
const (
	SaleTypeWholeBox = "caja_completa"
	SaleTypeUnits    = "unidades"
)

// StockSnapshot es la foto del stock de un item (real o proyectada).
type StockSnapshot struct {
	BoxesStock       int   `json:"cajas_stock"`
	LooseUnits       int   `json:"unidades_sueltas"`
	OpenBoxRemaining int   `json:"caja_abierta_restantes"`
	HasOpenBox       bool  `json:"tiene_caja_abierta"`
	ConversionFactor int   `json:"factor_conversion"`
	TotalUnits       int   `json:"total_unidades_disponibles"`
	Version          int64 `json:"version"`
}

// SaleSimulation es el resultado (nunca persistido) de simular una venta.
type SaleSimulation struct {
	StockItemID     string         `json:"stock_item_id"`
	SaleType        string         `json:"tipo_venta"`
	RequestedQty    int            `json:"cantidad_solicitada"`
	UnitsToSell     int            `json:"unidades_que_se_venderian"`
	BoxesToOpen     int            `json:"cajas_a_abrir"`
	WholeBoxesTaken int            `json:"cajas_completas_consumidas"`
	Before          StockSnapshot  `json:"stock_actual"`
	Projected       *StockSnapshot `json:"stock_resultante,omitempty"`
	Success         bool           `json:"exitosa"`
	ErrorCode       string         `json:"codigo_error,omitempty"`
	ErrorMessage    string         `json:"mensaje_error,omitempty"`
}
