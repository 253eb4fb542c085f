// importar_stock carga ingresos de mercancía desde un CSV exportado del sistema anterior.
// Cada fila pasa por el mismo proceso de ingreso fraccionado que la API.
//
// Uso: go run ./cmd/importar_stock -archivo ingresos.csv -carpeta <uuid> [-encoding latin1] [-sep ";"]
// Columnas: nombre, marca, modelo, cajas, unidades_por_caja, permite_fraccionamiento,
// cantidad_minima, precio_base, moneda, referencia.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/jhoicas/medequipos-api/internal/application/inventory"
	"github.com/jhoicas/medequipos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/medequipos-api/pkg/config"
	"github.com/jhoicas/medequipos-api/pkg/logger"
)

func main() {
	path := flag.String("archivo", "", "ruta del CSV")
	locationID := flag.String("carpeta", "", "ID de la carpeta destino")
	encoding := flag.String("encoding", encodingAuto, "auto | utf-8 | latin1")
	sep := flag.String("sep", ";", "separador de columnas")
	user := flag.String("usuario", "importacion", "usuario registrado en los movimientos")
	dryRun := flag.Bool("dry-run", false, "valida el archivo sin registrar ingresos")
	flag.Parse()

	if *path == "" || *locationID == "" {
		flag.Usage()
		os.Exit(2)
	}
	if utf8.RuneCountInString(*sep) != 1 {
		fmt.Fprintln(os.Stderr, "sep debe ser un solo carácter")
		os.Exit(2)
	}
	separator, _ := utf8.DecodeRuneInString(*sep)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "importar_stock"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	svc := inventory.NewService(inventory.Deps{
		TxRunner:        postgres.NewTxRunner(pool, cfg.Inventory.LockTimeout),
		Items:           postgres.NewStockItemRepository(pool),
		Presentations:   postgres.NewPresentationRepository(pool),
		Movements:       postgres.NewStockMovementRepository(pool),
		Locations:       postgres.NewLocationRepository(pool),
		Log:             log,
		MutationTimeout: cfg.Inventory.MutationTimeout,
	})

	f, err := os.Open(*path)
	if err != nil {
		log.Fatal().Err(err).Str("archivo", *path).Msg("abrir CSV")
	}
	defer f.Close()

	summary, err := importCSV(ctx, svc, f, importOptions{
		LocationID: *locationID,
		Encoding:   *encoding,
		Separator:  separator,
		User:       *user,
		DryRun:     *dryRun,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("importación")
	}

	for _, e := range summary.Errors {
		log.Warn().Int("linea", e.Line).Str("code", e.Code).Msg(e.Msg)
	}
	log.Info().
		Int("filas", summary.Rows).
		Int("importadas", summary.Imported).
		Int("productos_nuevos", summary.CreatedItems).
		Int("unidades", summary.Units).
		Int("errores", len(summary.Errors)).
		Bool("dry_run", *dryRun).
		Msg("importación terminada")
	if len(summary.Errors) > 0 {
		os.Exit(1)
	}
}
