package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"campusnest/internal/app/commands"
	bookingapp "campusnest/internal/app/handlers/booking"
	"campusnest/internal/app/middleware"
	appoutbox "campusnest/internal/app/outbox"
	"campusnest/internal/app/policies"
	"campusnest/internal/app/queries"
	"campusnest/internal/app/uow"
	"campusnest/internal/domain/catalog"
	"campusnest/internal/infra/broker/kafka"
	"campusnest/internal/infra/config"
	mongodb "campusnest/internal/infra/db/mongo"
	ginserver "campusnest/internal/infra/http/gin"
	"campusnest/internal/infra/identity"
	"campusnest/internal/infra/notify"
	"campusnest/internal/infra/obs"
	infraoutbox "campusnest/internal/infra/outbox"
	"campusnest/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
		cfg.StorageMode = "memory"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := getenv("CATALOG_FIXTURES", "")
	if fixturesPath != "" {
		if err := app.loadCatalogFixtures(ctx, fixturesPath, logger); err != nil {
			logger.Warn("catalog fixtures load failed", "error", err, "path", fixturesPath)
		}
	}

	if app.worker != nil {
		go app.worker.Run(ctx)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
		app.close(logger)
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	catalog  catalog.Repository
	identity *identity.Directory
	worker   *infraoutbox.Worker
	ready    func() error
	producer *kafka.Producer
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	var app application
	app.identity = identity.NewDirectory()
	app.ready = func() error { return nil }

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		p, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicPrefix, nil)
		if err != nil {
			return application{}, fmt.Errorf("kafka producer: %w", err)
		}
		producer = p
		app.producer = p
	}

	var (
		uowFactory uow.UoWFactory
		box        appoutbox.Outbox
		locks      policies.UnitLocker = memory.NewUnitLockRegistry()
		idStore                        = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		app.ready = func() error { return client.Ping(context.Background()) }

		reservationRepo := mongodb.NewReservationRepository(client.DB)
		catalogRepo := mongodb.NewCatalogRepository(client.DB)
		app.catalog = catalogRepo
		uowFactory = mongodb.Factory{
			DB:              client.DB,
			ReservationRepo: reservationRepo,
			CatalogRepo:     catalogRepo,
		}

		store := infraoutbox.NewStore(client.DB)
		box = store
		if producer != nil {
			app.worker = &infraoutbox.Worker{
				Store:    store,
				Producer: producer,
				Logger:   logger,
				ID:       uuid.NewString(),
				Poll:     cfg.OutboxPollInterval,
				Backoff:  cfg.RetryBackoff,
			}
		} else {
			logger.Warn("no kafka brokers configured, outbox records will wait for a worker")
		}
	default:
		reservationRepo := memory.NewReservationRepository()
		catalogRepo := memory.NewCatalogRepository()
		app.catalog = catalogRepo
		uowFactory = memory.Factory{
			ReservationRepo: reservationRepo,
			CatalogRepo:     catalogRepo,
		}

		var dispatcher policies.NotificationDispatcher = &notify.LogDispatcher{Logger: logger}
		if producer != nil {
			dispatcher = &notify.BrokerDispatcher{Publisher: producer, Logger: logger}
		}
		box = memory.NewOutbox(dispatcher)
	}

	commandBus := commands.NewInMemoryBus()
	createHandler := &bookingapp.CreateReservationHandler{
		Identity: app.identity,
		Locks:    locks,
		Outbox:   box,
		Encoder:  appoutbox.JSONEventEncoder{},
		Logger:   logger,
	}
	commands.RegisterHandler(commandBus, bookingapp.CreateReservationCommand{}.Key(), createHandler)
	approveHandler := &bookingapp.ApproveReservationHandler{
		Locks:   locks,
		Outbox:  box,
		Encoder: appoutbox.JSONEventEncoder{},
		Logger:  logger,
	}
	commands.RegisterHandler(commandBus, bookingapp.ApproveReservationCommand{}.Key(), approveHandler)
	rejectHandler := &bookingapp.RejectReservationHandler{
		Outbox:  box,
		Encoder: appoutbox.JSONEventEncoder{},
		Logger:  logger,
	}
	commands.RegisterHandler(commandBus, bookingapp.RejectReservationCommand{}.Key(), rejectHandler)
	cancelHandler := &bookingapp.CancelReservationHandler{
		Locks:   locks,
		Outbox:  box,
		Encoder: appoutbox.JSONEventEncoder{},
		Logger:  logger,
	}
	commands.RegisterHandler(commandBus, bookingapp.CancelReservationCommand{}.Key(), cancelHandler)

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.GetReservationQuery{}.Key(), &bookingapp.GetReservationHandler{
		UoWFactory: uowFactory,
		Logger:     logger,
	})
	queries.RegisterHandler(queryBus, bookingapp.ListRequesterReservationsQuery{}.Key(), &bookingapp.ListRequesterReservationsHandler{
		UoWFactory: uowFactory,
		Logger:     logger,
	})
	queries.RegisterHandler(queryBus, bookingapp.ListPropertyReservationsQuery{}.Key(), &bookingapp.ListPropertyReservationsHandler{
		UoWFactory: uowFactory,
		Logger:     logger,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.OutboxFlush(box),
		middleware.UnitLock(),
		middleware.Transaction(uowFactory),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	app.handlers = ginserver.Handlers{
		Booking: ginserver.BookingHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Logger:   logger,
		},
		AuthMiddleware: ginserver.AuthMiddleware{
			Directory: app.identity,
			Logger:    logger,
		}.Handle,
	}
	return app, nil
}

func (a application) close(logger *slog.Logger) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Error("kafka producer close failed", "error", err)
		}
	}
}

type catalogFixtures struct {
	Users []struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	} `json:"users"`
	Properties []struct {
		ID      string `json:"id"`
		OwnerID string `json:"owner_id"`
		Title   string `json:"title"`
		Address string `json:"address"`
	} `json:"properties"`
	Units []struct {
		ID         string `json:"id"`
		PropertyID string `json:"property_id"`
		OwnerID    string `json:"owner_id"`
		Name       string `json:"name"`
		Available  bool   `json:"available"`
	} `json:"units"`
}

func (a application) loadCatalogFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("catalog fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures catalogFixtures
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	for _, u := range fixtures.Users {
		a.identity.Register(u.Token, identity.Principal{UserID: u.UserID, Role: identity.Role(u.Role)})
	}
	for _, p := range fixtures.Properties {
		prop := &catalog.Property{ID: p.ID, OwnerID: p.OwnerID, Title: p.Title, Address: p.Address}
		if err := a.catalog.SaveProperty(ctx, prop); err != nil {
			return fmt.Errorf("save property %s: %w", p.ID, err)
		}
	}
	for _, u := range fixtures.Units {
		unit := &catalog.Unit{ID: u.ID, PropertyID: u.PropertyID, OwnerID: u.OwnerID, Name: u.Name, Available: u.Available}
		if err := a.catalog.Save(ctx, unit); err != nil {
			return fmt.Errorf("save unit %s: %w", u.ID, err)
		}
	}
	logger.Info("catalog fixtures loaded",
		"users", len(fixtures.Users),
		"properties", len(fixtures.Properties),
		"units", len(fixtures.Units),
	)
	return nil
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
