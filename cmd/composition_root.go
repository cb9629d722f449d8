package cmd

import (
	"log/slog"
	"time"

	httpadapter "foodcourt/internal/adapters/in/http"
	"foodcourt/internal/adapters/out/postgres"
	redisadapter "foodcourt/internal/adapters/out/redis"
	"foodcourt/internal/core/application/presence"
	"foodcourt/internal/core/application/usecases/commands"
	"foodcourt/internal/core/application/usecases/queries"
	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/core/domain/services"
	"foodcourt/internal/ingestion"
	"foodcourt/internal/jobs"
	"foodcourt/internal/pkg/ephemeral"
	"foodcourt/internal/realtime"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// CompositionRoot wires every component of the app. Shared infrastructure
// (hub, store, locks, metrics registry) is built once in the constructor;
// handlers are built on demand.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory

	store     ephemeral.Store
	tracker   *presence.Tracker
	hub       *realtime.Hub
	locks     *commands.OrderLocks
	registry  *prometheus.Registry
	feePolicy services.FeePolicy
	logger    *slog.Logger
}

// NewCompositionRoot builds the shared infrastructure from config.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) *CompositionRoot {
	store := createEphemeralStore(config)

	baseFee, err := kernel.NewMoney(config.BaseFeeCents)
	if err != nil {
		baseFee, _ = kernel.NewMoney(500)
	}
	perKm, err := kernel.NewMoney(config.PerKmRateCents)
	if err != nil {
		perKm, _ = kernel.NewMoney(200)
	}

	return &CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		store:      store,
		tracker:    presence.NewTracker(store, time.Duration(config.PresenceTTLSeconds)*time.Second),
		hub:        realtime.NewHub(logger, config.OutboxCapacity),
		locks:      commands.NewOrderLocks(),
		registry:   prometheus.NewRegistry(),
		feePolicy:  services.NewFeePolicy(baseFee, perKm),
		logger:     logger,
	}
}

func createEphemeralStore(config Config) ephemeral.Store {
	if config.EphemeralBackend == "redis" {
		return redisadapter.NewStore(redisadapter.NewClient(config.RedisAddr))
	}
	return ephemeral.NewMemoryStore()
}

// Hub returns the shared realtime hub.
func (c *CompositionRoot) Hub() *realtime.Hub { return c.hub }

// Store returns the shared ephemeral store.
func (c *CompositionRoot) Store() ephemeral.Store { return c.store }

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) dispatchUoWFactory() commands.DispatchUoWFactory {
	return FuncDispatchUoWFactory(func() commands.DispatchUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.feePolicy, c.hub)
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	return commands.NewTransitionOrderCommandHandler(c.dispatchUoWFactory(), c.locks, c.tracker, c.hub)
}

func (c *CompositionRoot) CreateAcceptOrderCommandHandler() commands.AcceptOrderCommandHandler {
	return commands.NewAcceptOrderCommandHandler(c.dispatchUoWFactory(), c.locks, c.hub)
}

func (c *CompositionRoot) CreateReleaseAssignmentCommandHandler() commands.ReleaseAssignmentCommandHandler {
	return commands.NewReleaseAssignmentCommandHandler(c.dispatchUoWFactory(), c.locks, c.tracker, c.hub)
}

func (c *CompositionRoot) CreateMarkOrderPaidCommandHandler() commands.MarkOrderPaidCommandHandler {
	return commands.NewMarkOrderPaidCommandHandler(c.orderUoWFactory(), c.locks)
}

func (c *CompositionRoot) CreateRecordLocationCommandHandler() commands.RecordLocationCommandHandler {
	return commands.NewRecordLocationCommandHandler(c.tracker, c.dispatchUoWFactory(), c.hub)
}

func (c *CompositionRoot) CreateGetAvailableOrdersQueryHandler() queries.GetAvailableOrdersQueryHandler {
	return queries.NewGetAvailableOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateTrackOrderQueryHandler() queries.TrackOrderQueryHandler {
	return queries.NewTrackOrderQueryHandler(c.gormDB, c.tracker)
}

// CreateIngestionService wires the webhook pipeline with every supported
// platform normalizer.
func (c *CompositionRoot) CreateIngestionService() *ingestion.Service {
	ingestHandler := commands.NewIngestExternalOrderCommandHandler(c.orderUoWFactory(), c.hub)
	return ingestion.NewService(
		ingestion.NewRegistry(
			ingestion.NewIfoodNormalizer(),
			ingestion.NewRappiNormalizer(),
			ingestion.NewUberEatsNormalizer(),
		),
		ingestion.NewSignatureVerifier(map[order.Platform]string{
			order.PlatformIfood:    c.config.WebhookSecretIfood,
			order.PlatformRappi:    c.config.WebhookSecretRappi,
			order.PlatformUberEats: c.config.WebhookSecretUberEats,
		}),
		&ingestHandler,
		ingestion.NewMetrics(c.registry),
		c.logger)
}

// CreateHTTPServer assembles the full inbound HTTP surface.
func (c *CompositionRoot) CreateHTTPServer() *httpadapter.Server {
	return httpadapter.NewServer(
		httpadapter.Handlers{
			Ingestion:       c.CreateIngestionService(),
			CreateOrder:     c.CreateCreateOrderCommandHandler(),
			Transition:      c.CreateTransitionOrderCommandHandler(),
			Accept:          c.CreateAcceptOrderCommandHandler(),
			Release:         c.CreateReleaseAssignmentCommandHandler(),
			MarkPaid:        c.CreateMarkOrderPaidCommandHandler(),
			RecordLocation:  c.CreateRecordLocationCommandHandler(),
			AvailableOrders: c.CreateGetAvailableOrdersQueryHandler(),
			TrackOrder:      c.CreateTrackOrderQueryHandler(),
			Presence:        c.tracker,
		},
		c.hub, c.registry, c.logger)
}

// CreateJobManager assembles the background jobs.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.store, c.hub, time.Duration(c.config.MaxIdleSeconds)*time.Second, c.logger)
}

// Shutdown closes long-lived resources in reverse dependency order.
func (c *CompositionRoot) Shutdown() {
	c.hub.CloseAll()
	if err := c.store.Close(); err != nil {
		c.logger.Error("closing ephemeral store", "error", err)
	}
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncDispatchUoWFactory func() commands.DispatchUoW

func (f FuncDispatchUoWFactory) Create() commands.DispatchUoW {
	return f()
}
