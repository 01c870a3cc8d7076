package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"helpdesk/internal/config"
	"helpdesk/internal/database"
	"helpdesk/internal/handlers"
	"helpdesk/internal/middleware"
	"helpdesk/internal/repositories"
	"helpdesk/internal/services"
	"helpdesk/pkg/logger"
	"helpdesk/pkg/rabbitmq"
)

// apiPrefix is the path the frontend expects every route under.
const apiPrefix = "/api/v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("")
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logger.New(cfg.Env)

	app, cleanup, err := NewApp(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize app")
	}
	defer cleanup()

	log.Info().Str("port", cfg.Port).Str("storage", cfg.StorageDriver).Msg("starting server")

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}

// NewApp wires stores, services and routes for cfg. The returned cleanup
// releases the database and broker connections.
func NewApp(cfg config.Config, log zerolog.Logger) (*fiber.App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- Storage ---
	var (
		accountRepo repositories.AccountRepository
		ticketRepo  repositories.TicketRepository
	)
	switch cfg.StorageDriver {
	case config.StorageSQLite, config.StoragePostgres:
		db, err := database.Open(cfg.StorageDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { sqlDB.Close() })
		}
		accountRepo = repositories.NewGORMAccountRepository(db)
		ticketRepo = repositories.NewGORMTicketRepository(db)
	default:
		accountRepo = repositories.NewJSONAccountRepository(cfg.AccountsFile())
		ticketRepo = repositories.NewJSONTicketRepository(cfg.TicketsFile())
	}

	// --- Events ---
	var publisher services.EventPublisher
	eventsStatus := "disabled"
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, log)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := mqClient.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close RabbitMQ client")
			}
		})
		publisher = mqClient
		eventsStatus = "connected"

		notifier := services.NewEventNotifier(accountRepo, log)
		err = mqClient.ConsumeTicketEvents(func(msg amqp.Delivery) error {
			_, err := notifier.Handle(msg.Body)
			return err
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to start ticket event consumer")
		}
	}

	// --- Services ---
	tokens := services.NewTokenService(cfg.JWTSecret)
	accountService := services.NewAccountService(accountRepo, tokens, cfg.BcryptCost, log)
	ticketService := services.NewTicketService(ticketRepo, publisher, log)
	gate := middleware.NewGate(tokens, accountRepo, log)

	// --- Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      "helpdesk",
		ErrorHandler: handlers.ErrorHandler(log),
		BodyLimit:    10 * 1024 * 1024, // profile pictures are sent inline
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"time":    time.Now().Format(time.RFC3339),
			"storage": cfg.StorageDriver,
			"events":  eventsStatus,
		})
	})

	api := app.Group(apiPrefix)
	handlers.NewAccountHandler(accountService, log).RegisterRoutes(api, gate.AuthRequired(), gate.AdminRequired())
	handlers.NewTicketHandler(ticketService).RegisterRoutes(api, gate.AuthRequired())

	return app, cleanup, nil
}
