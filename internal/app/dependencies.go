package app

import (
	"fmt"

	"github.com/g3tech/donation-engine/internal/config"
	"github.com/g3tech/donation-engine/internal/event_bus"
	"github.com/g3tech/donation-engine/internal/observability"
	"github.com/g3tech/donation-engine/pkg/allocation"
	"github.com/g3tech/donation-engine/pkg/catalog"
	"github.com/g3tech/donation-engine/pkg/list"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	DB       *pgxpool.Pool
	EventBus *event_bus.EventBus
	Metrics  *observability.Metrics

	Engine *allocation.Engine

	ListRepo    list.Repository
	ListService *list.ServiceImpl
	ListHandler *list.Handler

	CatalogService *catalog.ServiceImpl
	CatalogHandler *catalog.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{DB: db}

	leftoverBase, err := cfg.Allocation.LeftoverPercent()
	if err != nil {
		return nil, err
	}
	totalValue, donationPercent, err := cfg.Allocation.Defaults.Values()
	if err != nil {
		return nil, fmt.Errorf("invalid list defaults: %w", err)
	}

	deps.EventBus = event_bus.NewEventBus()
	deps.Metrics = observability.NewMetrics()
	deps.Metrics.Subscribe(deps.EventBus)

	deps.Engine = allocation.NewEngine(allocation.WithLeftoverPercentBase(leftoverBase))

	deps.ListRepo = list.NewRepository(db)
	deps.ListService = list.NewService(deps.ListRepo, deps.Engine, deps.EventBus, list.Defaults{
		TotalValue:      totalValue,
		DonationPercent: donationPercent,
	})
	deps.ListHandler = list.NewHandler(deps.ListService)

	deps.CatalogService = catalog.NewService(catalog.NewRepository(db))
	deps.CatalogHandler = catalog.NewHandler(deps.CatalogService)

	return deps, nil
}
