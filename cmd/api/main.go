package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	_ "github.com/jhoicas/medequipos-api/docs"
	"github.com/jhoicas/medequipos-api/internal/application/inventory"
	"github.com/jhoicas/medequipos-api/internal/application/usecase"
	"github.com/jhoicas/medequipos-api/internal/infrastructure/cache"
	"github.com/jhoicas/medequipos-api/internal/infrastructure/memory"
	"github.com/jhoicas/medequipos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/medequipos-api/internal/interfaces/http"
	"github.com/jhoicas/medequipos-api/pkg/config"
	"github.com/jhoicas/medequipos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.Inventory.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	health := map[string]httpRouter.Pinger{}

	deps := inventory.Deps{
		Log:             log.Component("inventario"),
		MutationTimeout: cfg.Inventory.MutationTimeout,
		StatsTTL:        cfg.Inventory.StatsTTL,
	}

	switch cfg.Inventory.StorageDriver {
	case config.StorageDriverMemory:
		log.Warn().Msg("almacenamiento en memoria: el inventario se pierde al reiniciar")
		store := memory.NewStore(cfg.Inventory.LockTimeout)
		deps.TxRunner = memory.NewTxRunner(store)
		deps.Items = memory.NewStockItemRepository(store)
		deps.Presentations = memory.NewPresentationRepository(store)
		deps.Movements = memory.NewMovementRepository(store)
		deps.Locations = memory.NewLocationRepository(store)
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.Inventory.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		health["postgres"] = pool
		deps.TxRunner = postgres.NewTxRunner(pool, cfg.Inventory.LockTimeout)
		deps.Items = postgres.NewStockItemRepository(pool)
		deps.Presentations = postgres.NewPresentationRepository(pool)
		deps.Movements = postgres.NewStockMovementRepository(pool)
		deps.Locations = postgres.NewLocationRepository(pool)
	}

	// Estadísticas y stock crítico: Redis si está configurado, si no caché local.
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		redisCache := cache.NewRedisStatsCache(rdb)
		deps.Cache = redisCache
		health["redis"] = redisCache
	} else {
		deps.Cache = memory.NewStatsCache()
	}

	svc := inventory.NewService(deps)
	locationUC := usecase.NewLocationUseCase(deps.Locations)

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: la API no exige autenticación")
	}

	app := httpRouter.NewApp(cfg.App.Name, log)
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "MedEquipos Inventario API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Inventory:  svc,
		LocationUC: locationUC,
		RateLimiter: httpRouter.NewRateLimiter(httpRouter.RateLimiterConfig{
			RequestsPerSecond: cfg.HTTP.RateLimitRPS,
			Burst:             cfg.HTTP.RateLimitBurst,
		}),
		Health:      health,
		Log:         log.Component("http"),
		ServiceName: cfg.App.Name,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
