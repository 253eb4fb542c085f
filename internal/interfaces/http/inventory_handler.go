package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/medequipos-api/internal/application/dto"
	"github.com/jhoicas/medequipos-api/internal/application/inventory"
	"github.com/jhoicas/medequipos-api/pkg/logger"
)

// InventoryHandler expone el inventario fraccionado y el libro de movimientos.
type InventoryHandler struct {
	svc inventory.Service
	log *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(svc inventory.Service, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{svc: svc, log: log}
}

// GetSummary godoc
// @Summary      Resumen de un producto
// @Description  Stock en cajas y unidades, caja abierta, presentaciones y alertas.
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del StockItem"
// @Success      200  {object}  dto.ProductSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/items/{id}/resumen [get]
func (h *InventoryHandler) GetSummary(c *fiber.Ctx) error {
	out, err := h.svc.GetProductSummary(c.UserContext(), c.Params("id"))
	if err != nil {
		return failErr(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// ListPresentations godoc
// @Summary      Presentaciones de un producto (la de por defecto primero)
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del StockItem"
// @Success      200  {array}   dto.PresentationResponse
// @Router       /api/inventario/items/{id}/presentaciones [get]
func (h *InventoryHandler) ListPresentations(c *fiber.Ctx) error {
	out, err := h.svc.ListPresentations(c.UserContext(), c.Params("id"))
	if err != nil {
		return failErr(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// CreatePresentation godoc
// @Summary      Crear presentación
// @Tags         inventario
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                          true  "ID del StockItem"
// @Param        body  body  dto.CreatePresentationRequest   true  "nombre, factor_conversion, precio_venta"
// @Success      201   {object}  dto.PresentationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventario/items/{id}/presentaciones [post]
func (h *InventoryHandler) CreatePresentation(c *fiber.Ctx) error {
	var in dto.CreatePresentationRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.svc.CreatePresentation(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return failErr(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// SimulateSale godoc
// @Summary      Simular venta (no modifica stock)
// @Description  Las fallas de negocio se devuelven en el cuerpo con exitosa=false.
// @Tags         inventario
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del StockItem"
// @Param        body  body  dto.SimulateSaleRequest   true  "tipo_venta (caja_completa|unidades), cantidad"
// @Success      200   {object}  entity.SaleSimulation
// @Router       /api/inventario/items/{id}/simular-venta [post]
func (h *InventoryHandler) SimulateSale(c *fiber.Ctx) error {
	var in dto.SimulateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.svc.SimulateSale(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return failErr(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// SellBoxes godoc
// @Summary      Vender cajas completas
// @Tags         inventario
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del StockItem"
// @Param        body  body  dto.SellBoxesRequest  true  "presentacion_id, cantidad"
// @Success      201   {object}  dto.MovementResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      504   {object}  dto.ErrorResponse
// @Router       /api/inventario/items/{id}/venta-cajas [post]
func (h *InventoryHandler) SellBoxes(c *fiber.Ctx) error {
	var in dto.SellBoxesRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	in.Usuario = actor(c, in.Usuario)
	out, err := h.svc.SellWholeBoxes(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return failErr(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// SellUnits godoc
// @Summary      Vender unidades individuales
// @Description  Consume caja abierta, luego sueltas y abre una caja si hace falta.
// @Tags         inventario
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del StockItem"
// @Param        body  body  dto.SellUnitsRequest  true  "cantidad_unidades"
// @Success      201   {object}  dto.MovementResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      504   {object}  dto.ErrorResponse
// @Router       /api/inventario/items/{id}/venta-unidades [post]
func (h *InventoryHandler) SellUnits(c *fiber.Ctx) error {
	var in dto.SellUnitsRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	in.Usuario = actor(c, in.Usuario)
	out, err := h.svc.SellUnits(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return failErr(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// Intake godoc
// @Summary      Ingreso fraccionado de mercancía
// @Description  Con stock_item_id suma cajas a un producto existente; con nuevo_producto lo crea
//
//	o lo encuentra por nombre, marca y modelo en la carpeta.
//
// @Tags         inventario
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IntakeRequest  true  "cantidad_cajas, unidades_por_caja"
// @Success      201   {object}  dto.MovementResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      504   {object}  dto.ErrorResponse
// @Router       /api/inventario/ingresos [post]
func (h *InventoryHandler) Intake(c *fiber.Ctx) error {
	var in dto.IntakeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	in.Usuario = actor(c, in.Usuario)
	out, err := h.svc.ProcessFractionedIntake(c.UserContext(), in)
	if err != nil {
		return failErr(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// RegisterAdjustment godoc
// @Summary      Ajuste de inventario (conteo físico, merma)
// @Tags         inventario
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del StockItem"
// @Param        body  body  dto.AdjustmentRequest  true  "cantidad con signo en unidades, motivo"
// @Success      201   {object}  dto.MovementResult
// @Failure      504   {object}  dto.ErrorResponse
// @Router       /api/inventario/items/{id}/ajustes [post]
func (h *InventoryHandler) RegisterAdjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	in.Usuario = actor(c, in.Usuario)
	out, err := h.svc.RegisterAdjustment(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return failErr(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// GetCriticalStock godoc
// @Summary      Productos con stock crítico, ordenados por urgencia
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        limite      query  int     false  "Máximo de resultados; 0 devuelve todos" default(10)
// @Param        carpeta_id  query  string  false  "Filtrar por carpeta"
// @Success      200  {array}   dto.CriticalStockItem
// @Router       /api/inventario/stock-critico [get]
func (h *InventoryHandler) GetCriticalStock(c *fiber.Ctx) error {
	out, err := h.svc.GetCriticalStock(c.UserContext(), c.Query("carpeta_id"), c.QueryInt("limite", inventory.DefaultCriticalLimit))
	if err != nil {
		return failErr(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

func movementQuery(c *fiber.Ctx) dto.MovementQuery {
	return dto.MovementQuery{
		StockItemID:       c.Query("stock_item_id"),
		CarpetaID:         c.Query("carpeta_id"),
		Tipo:              c.Query("tipo"),
		ReferenciaExterna: c.Query("referencia_externa"),
		Desde:             c.Query("desde"),
		Hasta:             c.Query("hasta"),
		Limit:             c.QueryInt("limit", 0),
		Offset:            c.QueryInt("offset", 0),
	}
}

// ListMovements godoc
// @Summary      Libro de movimientos
// @Description  Más recientes primero. Fechas RFC3339 o AAAA-MM-DD; hasta con solo fecha incluye el día completo.
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        carpeta_id          query  string  false  "Carpeta"
// @Param        stock_item_id       query  string  false  "Producto"
// @Param        tipo                query  string  false  "entrada|salida|ajuste"
// @Param        referencia_externa  query  string  false  "Referencia del documento origen"
// @Param        desde               query  string  false  "Desde (inclusive)"
// @Param        hasta               query  string  false  "Hasta"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventario/movimientos [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	out, err := h.svc.ListMovements(c.UserContext(), movementQuery(c))
	if err != nil {
		return failErr(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// ListLocationItems godoc
// @Summary      Productos de una carpeta
// @Description  Stock y alertas de cada producto, ordenados por nombre.
// @Tags         carpetas
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la carpeta"
// @Param        limit   query  int     false  "Tamaño de página" default(20)
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.LocationItemListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/carpetas/{id}/items [get]
func (h *InventoryHandler) ListLocationItems(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	out, err := h.svc.ListLocationItems(c.UserContext(), c.Params("id"), page)
	if err != nil {
		return failErr(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// ListItemMovements godoc
// @Summary      Movimientos de un producto
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del StockItem"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/items/{id}/movimientos [get]
func (h *InventoryHandler) ListItemMovements(c *fiber.Ctx) error {
	out, err := h.svc.ListItemMovements(c.UserContext(), c.Params("id"), movementQuery(c))
	if err != nil {
		return failErr(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// GetStats godoc
// @Summary      Estadísticas del libro (hoy, mes, histórico)
// @Description  Servidas desde caché; pueden tener algunos segundos de atraso.
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        carpeta_id     query  string  false  "Carpeta"
// @Param        stock_item_id  query  string  false  "Producto"
// @Success      200  {object}  dto.LedgerStatsResponse
// @Router       /api/inventario/estadisticas [get]
func (h *InventoryHandler) GetStats(c *fiber.Ctx) error {
	out, err := h.svc.GetStats(c.UserContext(), c.Query("carpeta_id"), c.Query("stock_item_id"))
	if err != nil {
		return failErr(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}
