package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	httpadapter "parking/internal/adapters/in/http"
	"parking/internal/adapters/out/kafka"
	"parking/internal/adapters/out/memory"
	"parking/internal/adapters/out/postgres"
	"parking/internal/core/application/txcoord"
	"parking/internal/core/application/usecases/commands"
	"parking/internal/core/application/usecases/queries"
	"parking/internal/core/domain/model/kernel"
	"parking/internal/core/domain/services"
	"parking/internal/core/ports"
	"parking/internal/jobs"
	"parking/internal/pkg/telemetry"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// CompositionRoot owns the long-lived dependencies of the service and builds
// handlers from them.
type CompositionRoot struct {
	config      Config
	logger      *slog.Logger
	registry    *prometheus.Registry
	uowFactory  ports.UnitOfWorkFactory
	coordinator *txcoord.Coordinator
	publisher   ports.EventPublisher
	clock       kernel.Clock
	tariffs     services.TariffCalculator

	tracerProvider *sdktrace.TracerProvider

	closers []func() error
}

// NewCompositionRoot opens the configured store and event publisher.
func NewCompositionRoot(ctx context.Context, config Config, logger *slog.Logger) (*CompositionRoot, error) {
	if logger == nil {
		logger = slog.Default()
	}

	root := &CompositionRoot{
		config:   config,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		clock:    kernel.SystemClock{},
		tariffs:  services.NewTariffCalculator(nil),
	}
	root.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	uowFactory, err := root.openStore(ctx)
	if err != nil {
		return nil, err
	}
	root.uowFactory = uowFactory

	tracerProvider, shutdownTracing, err := telemetry.New(config.TelemetryConfig(logger))
	if err != nil {
		_ = root.Close()
		return nil, fmt.Errorf("set up tracing: %w", err)
	}
	root.tracerProvider = tracerProvider
	root.closers = append(root.closers, func() error {
		return shutdownTracing(context.WithoutCancel(ctx))
	})

	root.coordinator = txcoord.NewCoordinator(uowFactory, txcoord.Config{
		Logger:      logger,
		Tracer:      tracerProvider.Tracer("parking/txcoord"),
		Registerer:  root.registry,
		HistorySize: config.TxHistorySize,
		Defaults:    config.TxOptions(),
	})

	if config.KafkaHost != "" {
		publisher, err := kafka.NewSessionEventPublisher(config.KafkaHost, config.KafkaSessionChangedTopic)
		if err != nil {
			_ = root.Close()
			return nil, fmt.Errorf("create event publisher: %w", err)
		}
		root.publisher = publisher
		root.closers = append(root.closers, publisher.Close)
	} else {
		logger.InfoContext(ctx, "KAFKA_HOST not set, session events are not published")
	}

	return root, nil
}

func (c *CompositionRoot) openStore(ctx context.Context) (ports.UnitOfWorkFactory, error) {
	switch c.config.StoreDriver {
	case StoreDriverMemory:
		c.logger.WarnContext(ctx, "Using in-memory store, data is lost on restart")
		return memory.NewUnitOfWorkFactory(memory.NewStore()), nil
	case StoreDriverPostgres, "":
		db, err := gorm.Open(gorm_postgres.Open(c.config.DSN()), &gorm.Config{
			Logger: gorm_logger.Default.LogMode(gorm_logger.Warn),
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql handle: %w", err)
		}
		c.closers = append(c.closers, sqlDB.Close)

		if err := postgres.Migrate(db.WithContext(ctx)); err != nil {
			_ = c.Close()
			return nil, err
		}
		return postgres.NewGormUnitOfWorkFactory(db), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.config.StoreDriver)
	}
}

func (c *CompositionRoot) Coordinator() *txcoord.Coordinator {
	return c.coordinator
}

func (c *CompositionRoot) TracerProvider() *sdktrace.TracerProvider {
	return c.tracerProvider
}

func (c *CompositionRoot) CreateRegisterSpotCommandHandler() commands.RegisterSpotCommandHandler {
	return commands.NewRegisterSpotCommandHandler(c.coordinator)
}

func (c *CompositionRoot) CreateParkCommandHandler() commands.ParkCommandHandler {
	return commands.NewParkCommandHandler(c.coordinator, c.clock, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateExitCommandHandler() commands.ExitCommandHandler {
	return commands.NewExitCommandHandler(c.coordinator, c.clock, c.tariffs, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateTransferCommandHandler() commands.TransferCommandHandler {
	return commands.NewTransferCommandHandler(c.coordinator, c.clock, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateBulkUpdateSpotStatusCommandHandler() commands.BulkUpdateSpotStatusCommandHandler {
	return commands.NewBulkUpdateSpotStatusCommandHandler(c.coordinator, c.config.BulkBatchSize, c.logger)
}

func (c *CompositionRoot) CreateGetSpotQueryHandler() queries.GetSpotQueryHandler {
	return queries.NewGetSpotQueryHandler(c.coordinator)
}

func (c *CompositionRoot) CreateCheckAvailabilityQueryHandler() queries.CheckAvailabilityQueryHandler {
	return queries.NewCheckAvailabilityQueryHandler(c.coordinator, services.NewAvailabilityChecker())
}

// CreateHTTPHandler builds the echo router with every API route mounted.
func (c *CompositionRoot) CreateHTTPHandler() *echo.Echo {
	server := httpadapter.NewServer(c.coordinator, httpadapter.Handlers{
		RegisterSpot:      c.CreateRegisterSpotCommandHandler(),
		Park:              c.CreateParkCommandHandler(),
		Exit:              c.CreateExitCommandHandler(),
		Transfer:          c.CreateTransferCommandHandler(),
		BulkUpdate:        c.CreateBulkUpdateSpotStatusCommandHandler(),
		GetSpot:           c.CreateGetSpotQueryHandler(),
		CheckAvailability: c.CreateCheckAvailabilityQueryHandler(),
	})
	return httpadapter.NewRouter(server, c.registry, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.coordinator, c.config.HistoryMaxAge, c.logger)
}

// Close flushes traces and releases the store connection and the event publisher.
func (c *CompositionRoot) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
