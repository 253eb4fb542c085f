package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/medequipos-api/internal/application/dto"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
	"github.com/jhoicas/medequipos-api/internal/domain/repository"
	"github.com/jhoicas/medequipos-api/pkg/logger"
)

// Service operaciones del inventario fraccionado expuestas a la capa HTTP y a otros clientes.
type Service interface {
	GetProductSummary(ctx context.Context, stockItemID string) (*dto.ProductSummaryResponse, error)
	ListPresentations(ctx context.Context, stockItemID string) ([]dto.PresentationResponse, error)
	SimulateSale(ctx context.Context, stockItemID string, in dto.SimulateSaleRequest) (*entity.SaleSimulation, error)
	SellWholeBoxes(ctx context.Context, stockItemID string, in dto.SellBoxesRequest) (*dto.MovementResult, error)
	SellUnits(ctx context.Context, stockItemID string, in dto.SellUnitsRequest) (*dto.MovementResult, error)
	ProcessFractionedIntake(ctx context.Context, in dto.IntakeRequest) (*dto.MovementResult, error)
	GetCriticalStock(ctx context.Context, locationID string, limit int) ([]dto.CriticalStockItem, error)

	ListLocationItems(ctx context.Context, locationID string, page dto.PageRequest) (*dto.LocationItemListResponse, error)
	CreatePresentation(ctx context.Context, stockItemID string, in dto.CreatePresentationRequest) (*dto.PresentationResponse, error)
	RegisterAdjustment(ctx context.Context, stockItemID string, in dto.AdjustmentRequest) (*dto.MovementResult, error)
	ListMovements(ctx context.Context, q dto.MovementQuery) (*dto.MovementListResponse, error)
	ListItemMovements(ctx context.Context, stockItemID string, q dto.MovementQuery) (*dto.MovementListResponse, error)
	GetStats(ctx context.Context, locationID, stockItemID string) (*dto.LedgerStatsResponse, error)
}

// Deps dependencias del servicio. Cache es opcional.
type Deps struct {
	TxRunner      TxRunner
	Items         repository.StockItemRepository
	Presentations repository.PresentationRepository
	Movements     repository.StockMovementRepository
	Locations     repository.LocationRepository
	Cache         StatsCache
	Log           *logger.Logger

	MutationTimeout time.Duration // tope de cada mutación, bloqueos incluidos
	StatsTTL        time.Duration // atraso máximo de estadísticas y stock crítico
}

// FractionalService compone los casos de uso del inventario fraccionado.
type FractionalService struct {
	*CatalogUseCase
	*SaleUseCase
	*IntakeUseCase
	*AdjustmentUseCase
	*LedgerUseCase
	*ReplenishmentUseCase
}

var _ Service = (*FractionalService)(nil)

// NewService construye el servicio a partir de los puertos de persistencia.
func NewService(d Deps) *FractionalService {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	return &FractionalService{
		CatalogUseCase:       NewCatalogUseCase(d.TxRunner, d.Items, d.Presentations, d.Locations),
		SaleUseCase:          NewSaleUseCase(d.TxRunner, d.Items, d.Presentations, log, d.MutationTimeout),
		IntakeUseCase:        NewIntakeUseCase(d.TxRunner, d.Locations, log, d.MutationTimeout),
		AdjustmentUseCase:    NewAdjustmentUseCase(d.TxRunner, log, d.MutationTimeout),
		LedgerUseCase:        NewLedgerUseCase(d.Items, d.Movements, d.Cache, d.StatsTTL, log),
		ReplenishmentUseCase: NewReplenishmentUseCase(d.Items, d.Cache, d.StatsTTL, log),
	}
}
