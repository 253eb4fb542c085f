package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/medequipos-api/internal/application/inventory"
	"github.com/jhoicas/medequipos-api/internal/application/usecase"
	"github.com/jhoicas/medequipos-api/pkg/jwt"
	"github.com/jhoicas/medequipos-api/pkg/logger"
)

// Pinger dependencia verificable en /health (Postgres, Redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Inventory   inventory.Service
	LocationUC  *usecase.LocationUseCase
	RateLimiter *RateLimiter // nil = sin límite
	Health      map[string]Pinger
	Log         *logger.Logger
	ServiceName string
	// JWTSecret vacío desactiva la autenticación (solo desarrollo).
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	app.Get("/health", healthHandler(deps))

	api := app.Group("/api")
	protected := api
	requireRole := func(...string) fiber.Handler { return func(c *fiber.Ctx) error { return c.Next() } }
	if deps.JWTSecret != "" {
		protected = api.Group("/", AuthMiddleware(deps.JWTSecret))
		requireRole = RequireRole
	}
	limited := func(c *fiber.Ctx) error { return c.Next() }
	if deps.RateLimiter != nil {
		limited = deps.RateLimiter.Handler()
	}
	warehouse := requireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	sales := requireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleVendedor)

	h := NewInventoryHandler(deps.Inventory, log)

	// Carpetas
	locations := protected.Group("/carpetas")
	locationHandler := NewLocationHandler(deps.LocationUC, log)
	locations.Post("/", warehouse, locationHandler.Create)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Get("/:id/items", h.ListLocationItems)

	// Inventario fraccionado
	inv := protected.Group("/inventario")
	inv.Get("/stock-critico", h.GetCriticalStock)
	inv.Get("/movimientos", h.ListMovements)
	inv.Get("/estadisticas", h.GetStats)
	inv.Post("/ingresos", warehouse, limited, h.Intake)

	items := inv.Group("/items/:id")
	items.Get("/resumen", h.GetSummary)
	items.Get("/presentaciones", h.ListPresentations)
	items.Post("/presentaciones", warehouse, h.CreatePresentation)
	items.Get("/movimientos", h.ListItemMovements)
	items.Post("/simular-venta", h.SimulateSale)
	items.Post("/venta-cajas", sales, limited, h.SellBoxes)
	items.Post("/venta-unidades", sales, limited, h.SellUnits)
	items.Post("/ajustes", warehouse, limited, h.RegisterAdjustment)
}

func healthHandler(deps RouterDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string, len(deps.Health))
		status, summary := fiber.StatusOK, "ok"
		for name, p := range deps.Health {
			checks[name] = "ok"
			if err := p.Ping(ctx); err != nil {
				checks[name] = "error"
				status, summary = fiber.StatusServiceUnavailable, "degraded"
			}
		}
		return c.Status(status).JSON(fiber.Map{
			"status":  summary,
			"service": deps.ServiceName,
			"checks":  checks,
		})
	}
}
