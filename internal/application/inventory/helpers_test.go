package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/medequipos-api/internal/application/dto"
	"github.com/jhoicas/medequipos-api/internal/application/inventory"
	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
	"github.com/jhoicas/medequipos-api/internal/domain/repository"
	"github.com/jhoicas/medequipos-api/internal/infrastructure/memory"
	"github.com/jhoicas/medequipos-api/pkg/logger"
)

// fixture servicio sobre el almacén en memoria con una carpeta creada.
type fixture struct {
	svc        *inventory.FractionalService
	store      *memory.Store
	items      *memory.StockItemRepo
	movements  *memory.MovementRepo
	locationID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithRunner(t, nil)
}

// newFixtureWithRunner permite envolver el TxRunner en memoria (fallas de commit).
func newFixtureWithRunner(t *testing.T, wrap func(inventory.TxRunner) inventory.TxRunner) *fixture {
	t.Helper()
	store := memory.NewStore(2 * time.Second)
	locations := memory.NewLocationRepository(store)
	loc := &entity.Location{ID: "carpeta-1", Name: "Bodega principal", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, locations.Create(context.Background(), loc))

	f := &fixture{
		store:      store,
		items:      memory.NewStockItemRepository(store),
		movements:  memory.NewMovementRepository(store),
		locationID: loc.ID,
	}
	var runner inventory.TxRunner = memory.NewTxRunner(store)
	if wrap != nil {
		runner = wrap(runner)
	}
	f.svc = inventory.NewService(inventory.Deps{
		TxRunner:        runner,
		Items:           f.items,
		Presentations:   memory.NewPresentationRepository(store),
		Movements:       f.movements,
		Locations:       locations,
		Cache:           memory.NewStatsCache(),
		Log:             logger.Nop(),
		MutationTimeout: 5 * time.Second,
		StatsTTL:        time.Minute,
	})
	return f
}

// intakeNew crea un producto nuevo con boxes cajas de factor unidades.
func (f *fixture) intakeNew(t *testing.T, name string, boxes, factor, minBoxes int, fractioning bool) *dto.MovementResult {
	t.Helper()
	res, err := f.svc.ProcessFractionedIntake(context.Background(), dto.IntakeRequest{
		NuevoProducto: &dto.NewProductRequest{
			Nombre:         name,
			Marca:          "Medix",
			Modelo:         "M1",
			CarpetaID:      f.locationID,
			CantidadMinima: minBoxes,
		},
		CantidadCajas:          dto.QuantityOf(boxes),
		UnidadesPorCaja:        dto.QuantityOf(factor),
		PermiteFraccionamiento: &fractioning,
		Usuario:                "bodega",
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) item(t *testing.T, id string) *entity.StockItem {
	t.Helper()
	it, err := f.items.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, it)
	return it
}

func (f *fixture) movementCount(t *testing.T, stockItemID string) int {
	t.Helper()
	list, err := f.movements.List(context.Background(), repositoryFilter(stockItemID))
	require.NoError(t, err)
	return len(list)
}

func (f *fixture) defaultPresentationID(t *testing.T, stockItemID string) string {
	t.Helper()
	list, err := f.svc.ListPresentations(context.Background(), stockItemID)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	return list[0].ID
}

func codeOf(err error) string {
	_, code, _ := domain.Describe(err)
	return code
}

func isCode(err error, sentinel error) bool {
	return err != nil && errors.Is(err, sentinel)
}

func repositoryFilter(stockItemID string) repository.MovementFilter {
	return repository.MovementFilter{StockItemID: stockItemID}
}
