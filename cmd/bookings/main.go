package main

import (
	"context"

	"roomdesk/internal/bookings/events"
	"roomdesk/internal/bookings/handler"
	"roomdesk/internal/bookings/repository"
	"roomdesk/internal/bookings/service"
	"roomdesk/internal/bookings/validator"
	"roomdesk/internal/directory"
	"roomdesk/internal/resources"
	"roomdesk/pkg/app"
	"roomdesk/pkg/config"
	"roomdesk/pkg/kafka"
	kafka_config "roomdesk/pkg/kafka/config"
	kafka_middleware "roomdesk/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")

	catalog, err := resources.Parse(cfg.BranchRooms)
	if err != nil {
		cfg.Log.Fatal("Invalid branch room catalog", "error", err)
	}

	publisher, metrics, closePublisher := initPublisher(cfg)
	defer closePublisher()

	bookingService := initBookingService(cfg, catalog, publisher)
	sessionService := service.NewSessionService(bookingService, catalog, cfg)
	contactService := initDirectory(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewHealthHandler(cfg.Client, metrics, cfg.Log.Component("health")),
		handler.NewBookingHandler(bookingService, catalog, cfg.Log.Component("bookings")),
		handler.NewSessionHandler(sessionService, cfg.Log.Component("sessions")),
		directory.NewHandler(contactService, cfg.Log.Component("directory")),
	)
	serverApp.OnShutdown(sessionService)
	serverApp.Run()
}

func initBookingService(cfg *config.Config, catalog *resources.Catalog, publisher events.Publisher) service.BookingService {
	if cfg.StorageBackend == config.BackendMongo || cfg.LockBackend == config.BackendMongo {
		cfg.SetMongo()
	}
	if cfg.LockBackend == config.BackendRedis {
		cfg.SetRedis()
	}

	var bookingRepo repository.BookingRepository
	switch cfg.StorageBackend {
	case config.BackendMemory:
		bookingRepo = repository.NewMemoryBookingRepository()
	default:
		bookingRepo = repository.NewMongoBookingRepository(cfg)
	}

	var lockRepo repository.BookingLockRepository
	switch cfg.LockBackend {
	case config.BackendRedis:
		lockRepo = repository.NewRedisBookingLockRepository(cfg)
	case config.BackendMemory:
		lockRepo = repository.NewMemoryBookingLockRepository()
	default:
		lockRepo = repository.NewMongoBookingLockRepository(cfg)
	}

	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		validator.NewBookingValidator(cfg.Log, catalog),
		publisher,
		catalog,
		cfg,
	)

	cfg.Log.Info("Booking service initialized",
		"storage_backend", cfg.StorageBackend,
		"lock_backend", cfg.LockBackend,
		"database", cfg.MongoDatabaseName,
	)
	return bookingService
}

// initPublisher returns a Kafka backed publisher when events are enabled and a
// no-op one otherwise. The returned func flushes and closes the producer.
func initPublisher(cfg *config.Config) (events.Publisher, *kafka_middleware.Metrics, func()) {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Booking events disabled")
		return events.NewNoopPublisher(), nil, func() {}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	producer.Use(kafka_middleware.MetricsProducerMiddleware(metrics))
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	cfg.Log.Info("Booking events enabled", "topic", producer.Topic())
	return events.NewKafkaPublisher(producer, ServiceName), metrics, func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}
}

func initDirectory(cfg *config.Config) *directory.Service {
	cfg.SetDirectory()

	repo := directory.NewContactRepository(cfg.Client.Directory)
	if err := repo.Migrate(context.Background()); err != nil {
		cfg.Log.Fatal("Failed to migrate contact directory", "error", err)
	}

	cfg.Log.Info("Contact directory initialized")
	return directory.NewService(repo, cfg.Log.Component("directory"))
}
