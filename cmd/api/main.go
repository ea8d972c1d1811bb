package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/issue-board/internal/api/http"
	"github.com/spec-kit/issue-board/internal/api/http/handlers"
	"github.com/spec-kit/issue-board/internal/config"
	"github.com/spec-kit/issue-board/internal/events"
	"github.com/spec-kit/issue-board/internal/observability"
	"github.com/spec-kit/issue-board/internal/persistence"
	"github.com/spec-kit/issue-board/internal/repository"
	"github.com/spec-kit/issue-board/internal/seed"
	"github.com/spec-kit/issue-board/internal/service"
	"github.com/spec-kit/issue-board/internal/worker"
)

func main() {
	envFiles := flag.StringSlice("env-file", nil, "env files to load before reading the environment")
	noSeed := flag.Bool("no-seed", false, "start with an empty board")
	flag.Parse()

	cfg, err := config.Load(*envFiles...)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	baseLogger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer baseLogger.Sync() //nolint:errcheck
	logger := observability.ServiceLogger(baseLogger, cfg.App)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fixture, err := seed.Load(cfg.Board.SeedFile)
	if err != nil {
		logger.Fatal("failed to load seed", zap.Error(err))
	}

	users := repository.NewUserDirectory(fixture.Users)
	store, err := repository.NewTicketStore(users, repository.StoreConfig{
		Projects:       cfg.Board.Projects,
		DefaultProject: cfg.Board.DefaultProject,
		CurrentUserID:  cfg.Board.CurrentUserID,
	})
	if err != nil {
		logger.Fatal("failed to build ticket store", zap.Error(err))
	}
	defer store.Close()

	if cfg.Board.SeedEnabled && !*noSeed {
		if err := store.Seed(fixture.Tickets); err != nil {
			logger.Fatal("failed to seed tickets", zap.Error(err))
		}
		logger.Info("board seeded", zap.Int("tickets", store.Len()), zap.Int("users", len(fixture.Users)))
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var publisher events.Publisher
	if redis.Enabled() {
		publisher = events.NewRedisPublisher(redis.Client, cfg.Redis.Channel)
	}

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, publisher, logger.Named("notifications"), cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:      store,
		Users:      users,
		History:    repository.NewTicketHistoryRepository(),
		Dispatcher: dispatcher,
		Logger:     logger.Named("tickets"),
	})
	selection := service.NewSelection(store)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store, redis),
		Board:     handlers.NewBoardHandler(ticketService, metrics),
		Tickets:   handlers.NewTicketsHandler(ticketService),
		Selection: handlers.NewSelectionHandler(ticketService, selection),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
