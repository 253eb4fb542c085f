package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/medequipos-api/internal/application/dto"
	"github.com/jhoicas/medequipos-api/internal/application/inventory"
	"github.com/jhoicas/medequipos-api/internal/application/usecase"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
	"github.com/jhoicas/medequipos-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/medequipos-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/medequipos-api/pkg/jwt"
	"github.com/jhoicas/medequipos-api/pkg/logger"
)

type envelope struct {
	Success bool               `json:"success"`
	Data    json.RawMessage    `json:"data"`
	Error   *dto.ErrorResponse `json:"error"`
}

type apiFixture struct {
	t          *testing.T
	deps       apphttp.RouterDeps
	locationID string
}

func newAPI(t *testing.T, limiter *apphttp.RateLimiter) *apiFixture {
	t.Helper()
	store := memory.NewStore(2 * time.Second)
	locations := memory.NewLocationRepository(store)
	now := time.Now().UTC()
	require.NoError(t, locations.Create(context.Background(),
		&entity.Location{ID: "carpeta-1", Name: "Bodega principal", CreatedAt: now, UpdatedAt: now}))

	svc := inventory.NewService(inventory.Deps{
		TxRunner:        memory.NewTxRunner(store),
		Items:           memory.NewStockItemRepository(store),
		Presentations:   memory.NewPresentationRepository(store),
		Movements:       memory.NewMovementRepository(store),
		Locations:       locations,
		Cache:           memory.NewStatsCache(),
		MutationTimeout: 5 * time.Second,
		StatsTTL:        time.Minute,
	})
	return &apiFixture{
		t: t,
		deps: apphttp.RouterDeps{
			Inventory:   svc,
			LocationUC:  usecase.NewLocationUseCase(locations),
			RateLimiter: limiter,
			Log:         logger.Nop(),
			ServiceName: "medequipos-test",
			JWTSecret:   testJWTSecret,
		},
		locationID: "carpeta-1",
	}
}

func (f *apiFixture) do(method, path, role string, body any) (int, envelope) {
	f.t.Helper()
	app := apphttp.NewApp("test", logger.Nop())
	apphttp.Router(app, f.deps)
	return f.doOn(app, method, path, role, body)
}

func (f *apiFixture) doOn(app *fiber.App, method, path, role string, body any) (int, envelope) {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", bearer(f.t, "usuario-"+role, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(f.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(f.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func (f *apiFixture) intake(boxes, factor int) string {
	f.t.Helper()
	status, env := f.do(http.MethodPost, "/api/inventario/ingresos", pkgjwt.RoleBodeguero, map[string]any{
		"nuevo_producto":          map[string]any{"nombre": "Guantes nitrilo", "marca": "Medix", "carpeta_id": f.locationID, "cantidad_minima": 2},
		"cantidad_cajas":          boxes,
		"unidades_por_caja":       factor,
		"permite_fraccionamiento": true,
	})
	require.Equal(f.t, http.StatusCreated, status, "%+v", env.Error)
	return decode[dto.MovementResult](f.t, env).Movimiento.StockItemID
}

func TestAPI_VentaUnidadesAbreCaja(t *testing.T) {
	f := newAPI(t, nil)
	id := f.intake(5, 10)

	status, env := f.do(http.MethodPost, "/api/inventario/items/"+id+"/venta-unidades", pkgjwt.RoleVendedor,
		map[string]any{"cantidad_unidades": "3", "referencia_externa": "FAC-1"})
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, env.Success)
	res := decode[dto.MovementResult](t, env)
	assert.Equal(t, 4, res.Stock.BoxesStock)
	assert.Equal(t, 7, res.Stock.OpenBoxRemaining)
	assert.Equal(t, 1, res.CajasAbiertas)
	assert.Equal(t, "usuario-vendedor", res.Movimiento.Usuario)

	status, env = f.do(http.MethodGet, "/api/inventario/items/"+id+"/resumen", pkgjwt.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, status)
	sum := decode[dto.ProductSummaryResponse](t, env)
	require.NotNil(t, sum.CajaAbierta)
	assert.Equal(t, 7, sum.CajaAbierta.UnidadesRestantes)
	assert.Len(t, sum.Presentaciones, 2)

	status, env = f.do(http.MethodGet, "/api/inventario/movimientos?referencia_externa=FAC-1", pkgjwt.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[dto.MovementListResponse](t, env)
	require.Len(t, list.Items, 1)
	assert.Equal(t, entity.MovementTypeSalida, list.Items[0].Tipo)
	assert.Equal(t, 3, list.Items[0].Cantidad)
}

func TestAPI_MapeoDeErrores(t *testing.T) {
	f := newAPI(t, nil)
	id := f.intake(4, 10)

	tests := []struct {
		name   string
		method string
		path   string
		role   string
		body   any
		status int
		code   string
	}{
		{"cantidad no numérica", http.MethodPost, "/api/inventario/items/" + id + "/venta-unidades", pkgjwt.RoleVendedor,
			map[string]any{"cantidad_unidades": "abc"}, http.StatusBadRequest, "INVALID_QUANTITY"},
		{"cantidad fraccionaria", http.MethodPost, "/api/inventario/items/" + id + "/venta-unidades", pkgjwt.RoleVendedor,
			map[string]any{"cantidad_unidades": 2.5}, http.StatusBadRequest, "INVALID_QUANTITY"},
		{"stock insuficiente", http.MethodPost, "/api/inventario/items/" + id + "/venta-unidades", pkgjwt.RoleVendedor,
			map[string]any{"cantidad_unidades": 41}, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"item inexistente", http.MethodGet, "/api/inventario/items/no-existe/resumen", pkgjwt.RoleVendedor,
			nil, http.StatusNotFound, "NOT_FOUND"},
		{"factor distinto", http.MethodPost, "/api/inventario/ingresos", pkgjwt.RoleBodeguero,
			map[string]any{"stock_item_id": id, "cantidad_cajas": 1, "unidades_por_caja": 12}, http.StatusBadRequest, "CONVERSION_FACTOR_MISMATCH"},
		{"versión vieja", http.MethodPost, "/api/inventario/items/" + id + "/venta-unidades", pkgjwt.RoleVendedor,
			map[string]any{"cantidad_unidades": 1, "version_esperada": 99}, http.StatusConflict, "CONCURRENCY_ERROR"},
		{"rol sin permiso", http.MethodPost, "/api/inventario/ingresos", pkgjwt.RoleVendedor,
			map[string]any{"stock_item_id": id, "cantidad_cajas": 1, "unidades_por_caja": 10}, http.StatusForbidden, "FORBIDDEN"},
		{"sin token", http.MethodGet, "/api/inventario/stock-critico", "",
			nil, http.StatusUnauthorized, "MISSING_TOKEN"},
		{"límite negativo", http.MethodGet, "/api/inventario/stock-critico?limite=-1", pkgjwt.RoleAdmin,
			nil, http.StatusBadRequest, "VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := f.do(tt.method, tt.path, tt.role, tt.body)
			assert.Equal(t, tt.status, status)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.NotEmpty(t, env.Error.Message)
		})
	}

	// Ninguna de las fallas tocó el stock.
	_, env := f.do(http.MethodGet, "/api/inventario/items/"+id+"/resumen", pkgjwt.RoleAdmin, nil)
	sum := decode[dto.ProductSummaryResponse](t, env)
	assert.Equal(t, 40, sum.Stock.TotalUnits)
}

func TestAPI_SimulacionFallidaEs200(t *testing.T) {
	f := newAPI(t, nil)
	id := f.intake(1, 10)

	status, env := f.do(http.MethodPost, "/api/inventario/items/"+id+"/simular-venta", pkgjwt.RoleVendedor,
		map[string]any{"tipo_venta": "caja_completa", "cantidad": 3})
	require.Equal(t, http.StatusOK, status)
	sim := decode[entity.SaleSimulation](t, env)
	assert.False(t, sim.Success)
	assert.Equal(t, "INSUFFICIENT_STOCK", sim.ErrorCode)
	assert.Nil(t, sim.Projected)
}

func TestAPI_CarpetasYStockCritico(t *testing.T) {
	f := newAPI(t, nil)

	status, env := f.do(http.MethodPost, "/api/carpetas", pkgjwt.RoleAdmin, map[string]any{"nombre": "Quirófano 2"})
	require.Equal(t, http.StatusCreated, status)
	loc := decode[dto.LocationResponse](t, env)
	assert.NotEmpty(t, loc.ID)

	status, env = f.do(http.MethodPost, "/api/carpetas", pkgjwt.RoleAdmin, map[string]any{"nombre": "  "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", env.Error.Code)

	status, env = f.do(http.MethodGet, "/api/carpetas?limit=10", pkgjwt.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[dto.LocationListResponse](t, env).Items, 2)

	// 1 caja de 10 con mínimo 2 cajas: stock bajo.
	id := f.intake(1, 10)
	status, env = f.do(http.MethodGet, "/api/inventario/stock-critico?limite=5", pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status)
	critical := decode[[]dto.CriticalStockItem](t, env)
	require.Len(t, critical, 1)
	assert.Equal(t, id, critical[0].Producto.ID)
	assert.Equal(t, 1, critical[0].Prioridad)
	assert.True(t, critical[0].Alertas.StockBajo)

	status, env = f.do(http.MethodGet, "/api/carpetas/"+f.locationID+"/items?limit=5", pkgjwt.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, status)
	items := decode[dto.LocationItemListResponse](t, env)
	require.Len(t, items.Items, 1)
	assert.Equal(t, id, items.Items[0].Producto.ID)
	assert.Equal(t, 5, items.Page.Limit)

	status, env = f.do(http.MethodGet, "/api/carpetas/"+loc.ID+"/items", pkgjwt.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[dto.LocationItemListResponse](t, env).Items)

	status, env = f.do(http.MethodGet, "/api/carpetas/no-existe/items", pkgjwt.RoleVendedor, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestAPI_LimiteDeTasa(t *testing.T) {
	limiter := apphttp.NewRateLimiter(apphttp.RateLimiterConfig{RequestsPerSecond: 0.001, Burst: 2})
	f := newAPI(t, limiter)
	app := apphttp.NewApp("test", logger.Nop())
	apphttp.Router(app, f.deps)

	status, env := f.doOn(app, http.MethodPost, "/api/inventario/ingresos", pkgjwt.RoleBodeguero, map[string]any{
		"nuevo_producto":    map[string]any{"nombre": "Gasas", "carpeta_id": f.locationID},
		"cantidad_cajas":    3,
		"unidades_por_caja": 10,
	})
	require.Equal(t, http.StatusCreated, status)
	id := decode[dto.MovementResult](t, env).Movimiento.StockItemID

	sell := map[string]any{"cantidad_unidades": 10}
	status, _ = f.doOn(app, http.MethodPost, "/api/inventario/items/"+id+"/venta-unidades", pkgjwt.RoleBodeguero, sell)
	assert.Equal(t, http.StatusCreated, status)
	status, env = f.doOn(app, http.MethodPost, "/api/inventario/items/"+id+"/venta-unidades", pkgjwt.RoleBodeguero, sell)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", env.Error.Code)

	// Las lecturas no consumen tokens.
	status, _ = f.doOn(app, http.MethodGet, "/api/inventario/items/"+id+"/resumen", pkgjwt.RoleBodeguero, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_SinJWTUsaUsuarioDelCuerpo(t *testing.T) {
	f := newAPI(t, nil)
	f.deps.JWTSecret = ""

	status, env := f.do(http.MethodPost, "/api/inventario/ingresos", "", map[string]any{
		"nuevo_producto":    map[string]any{"nombre": "Catéter", "carpeta_id": f.locationID},
		"cantidad_cajas":    1,
		"unidades_por_caja": 1,
		"usuario":           "recepcion",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "recepcion", decode[dto.MovementResult](t, env).Movimiento.Usuario)
}

func TestHealth(t *testing.T) {
	f := newAPI(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	app := apphttp.NewApp("test", logger.Nop())
	apphttp.Router(app, f.deps)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
