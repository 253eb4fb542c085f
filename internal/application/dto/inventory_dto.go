package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/medequipos-api/internal/domain/entity"
)

// SimulateSaleRequest entrada de simularVenta.
type SimulateSaleRequest struct {
	TipoVenta      string   `json:"tipo_venta"`
	Cantidad       Quantity `json:"cantidad"`
	PresentacionID string   `json:"presentacion_id,omitempty"`
}

// SellBoxesRequest entrada de venderCajaCompleta.
type SellBoxesRequest struct {
	PresentacionID    string   `json:"presentacion_id"`
	Cantidad          Quantity `json:"cantidad"`
	Usuario           string   `json:"usuario,omitempty"`
	ReferenciaExterna string   `json:"referencia_externa,omitempty"`
	VersionEsperada   *int64   `json:"version_esperada,omitempty"`
}

// SellUnitsRequest entrada de venderUnidadesIndividuales.
type SellUnitsRequest struct {
	CantidadUnidades  Quantity `json:"cantidad_unidades"`
	Usuario           string   `json:"usuario,omitempty"`
	ReferenciaExterna string   `json:"referencia_externa,omitempty"`
	VersionEsperada   *int64   `json:"version_esperada,omitempty"`
}

// NewProductRequest identidad de un producto que aún no tiene stock en la carpeta.
type NewProductRequest struct {
	Nombre         string          `json:"nombre"`
	Marca          string          `json:"marca"`
	Modelo         string          `json:"modelo"`
	CarpetaID      string          `json:"carpeta_id"`
	CantidadMinima int             `json:"cantidad_minima"`
	PrecioBase     decimal.Decimal `json:"precio_base"`
	Moneda         string          `json:"moneda"`
}

// IntakeRequest entrada de procesarIngresoFraccionado: StockItemID o NuevoProducto.
type IntakeRequest struct {
	StockItemID            string             `json:"stock_item_id,omitempty"`
	NuevoProducto          *NewProductRequest `json:"nuevo_producto,omitempty"`
	CantidadCajas          Quantity           `json:"cantidad_cajas"`
	UnidadesPorCaja        Quantity           `json:"unidades_por_caja"`
	PermiteFraccionamiento *bool              `json:"permite_fraccionamiento,omitempty"`
	Usuario                string             `json:"usuario,omitempty"`
	ReferenciaExterna      string             `json:"referencia_externa,omitempty"`
}

// AdjustmentRequest corrección con signo en unidades base.
type AdjustmentRequest struct {
	Cantidad          Quantity `json:"cantidad"`
	Motivo            string   `json:"motivo"`
	Usuario           string   `json:"usuario,omitempty"`
	ReferenciaExterna string   `json:"referencia_externa,omitempty"`
}

// CreatePresentationRequest alta administrativa de una presentación.
type CreatePresentationRequest struct {
	Nombre              string          `json:"nombre"`
	FactorConversion    Quantity        `json:"factor_conversion"`
	PrecioVenta         decimal.Decimal `json:"precio_venta"`
	PuedeVenderCompleta bool            `json:"puede_vender_completa"`
	EsDefault           bool            `json:"es_default"`
}

// MovementQuery filtros del libro de movimientos (fechas RFC3339 o AAAA-MM-DD).
type MovementQuery struct {
	StockItemID       string
	CarpetaID         string
	Tipo              string
	ReferenciaExterna string
	Desde             string
	Hasta             string
	Limit             int
	Offset            int
}

// ProductResponse identidad y parámetros de un StockItem.
type ProductResponse struct {
	ID                     string          `json:"id"`
	CarpetaID              string          `json:"carpeta_id"`
	Nombre                 string          `json:"nombre"`
	Marca                  string          `json:"marca"`
	Modelo                 string          `json:"modelo"`
	FactorConversion       int             `json:"factor_conversion"`
	CantidadMinima         int             `json:"cantidad_minima"`
	PermiteFraccionamiento bool            `json:"permite_fraccionamiento"`
	PrecioBase             decimal.Decimal `json:"precio_base"`
	Moneda                 string          `json:"moneda"`
	Version                int64           `json:"version"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// OpenBoxResponse caja abierta de un item.
type OpenBoxResponse struct {
	FactorOriginal    int       `json:"factor_original"`
	UnidadesRestantes int       `json:"unidades_restantes"`
	AbiertaEn         time.Time `json:"abierta_en"`
}

// AlertResponse alertas derivadas de stock.
type AlertResponse struct {
	StockBajo          bool `json:"stock_bajo"`
	RequiereReposicion bool `json:"requiere_reposicion"`
	TotalUnidades      int  `json:"total_unidades"`
	MinimoUnidades     int  `json:"minimo_unidades"`
}

// PresentationResponse presentación del catálogo.
type PresentationResponse struct {
	ID                  string          `json:"id"`
	StockItemID         string          `json:"stock_item_id"`
	Nombre              string          `json:"nombre"`
	FactorConversion    int             `json:"factor_conversion"`
	PrecioVenta         decimal.Decimal `json:"precio_venta"`
	PuedeVenderCompleta bool            `json:"puede_vender_completa"`
	EsDefault           bool            `json:"es_default"`
}

// ProductSummaryResponse salida de obtenerResumenProducto.
type ProductSummaryResponse struct {
	Producto       ProductResponse        `json:"producto"`
	Stock          entity.StockSnapshot   `json:"stock"`
	Presentaciones []PresentationResponse `json:"presentaciones"`
	CajaAbierta    *OpenBoxResponse       `json:"caja_abierta"`
	Alertas        AlertResponse          `json:"alertas"`
}

// LocationItem producto de una carpeta con su stock y alertas.
type LocationItem struct {
	Producto ProductResponse      `json:"producto"`
	Stock    entity.StockSnapshot `json:"stock"`
	Alertas  AlertResponse        `json:"alertas"`
}

// LocationItemListResponse listado paginado de los productos de una carpeta.
type LocationItemListResponse struct {
	Items []LocationItem `json:"items"`
	Page  PageResponse   `json:"page"`
}

// CriticalStockItem elemento de obtenerProductosStockCritico.
// Prioridad 1 = más urgente; CajasSugeridas lleva el stock a 1.5 veces el mínimo.
type CriticalStockItem struct {
	Prioridad      int                  `json:"prioridad"`
	Producto       ProductResponse      `json:"producto"`
	Stock          entity.StockSnapshot `json:"stock"`
	Alertas        AlertResponse        `json:"alertas"`
	CajasSugeridas int                  `json:"cajas_sugeridas"`
}

// MovementResponse registro del libro.
type MovementResponse struct {
	ID                string    `json:"id"`
	StockItemID       string    `json:"stock_item_id"`
	CarpetaID         string    `json:"carpeta_id"`
	Tipo              string    `json:"tipo"`
	Cantidad          int       `json:"cantidad"`
	TipoVenta         string    `json:"tipo_venta,omitempty"`
	PresentacionID    string    `json:"presentacion_id,omitempty"`
	StockAnterior     int       `json:"stock_anterior"`
	StockNuevo        int       `json:"stock_nuevo"`
	Motivo            string    `json:"motivo"`
	Usuario           string    `json:"usuario"`
	ReferenciaExterna string    `json:"referencia_externa,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// MovementResult salida de ventas, ingresos y ajustes.
type MovementResult struct {
	Movimiento    MovementResponse     `json:"movimiento"`
	Stock         entity.StockSnapshot `json:"stock"`
	Unidades      int                  `json:"unidades"`
	CajasAbiertas int                  `json:"cajas_abiertas"`
	ItemCreado    bool                 `json:"item_creado,omitempty"`
}

// MovementListResponse listado paginado del libro.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// RollupResponse conteo y suma de unidades por tipo.
type RollupResponse struct {
	Tipo     string `json:"tipo"`
	Cantidad int    `json:"cantidad_movimientos"`
	Unidades int    `json:"unidades"`
}

// LedgerStatsResponse estadísticas de actividad (pueden tener segundos de atraso).
type LedgerStatsResponse struct {
	Hoy        []RollupResponse `json:"hoy"`
	Mes        []RollupResponse `json:"mes"`
	Historico  []RollupResponse `json:"historico"`
	GeneradoEn time.Time        `json:"generado_en"`
}
