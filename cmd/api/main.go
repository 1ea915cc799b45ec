package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/azlan18/iDEA/internal/api/http"
	"github.com/azlan18/iDEA/internal/api/http/handlers"
	"github.com/azlan18/iDEA/internal/auth"
	"github.com/azlan18/iDEA/internal/config"
	"github.com/azlan18/iDEA/internal/domain"
	"github.com/azlan18/iDEA/internal/events"
	"github.com/azlan18/iDEA/internal/observability"
	"github.com/azlan18/iDEA/internal/persistence"
	"github.com/azlan18/iDEA/internal/registry"
	"github.com/azlan18/iDEA/internal/repository"
	"github.com/azlan18/iDEA/internal/roster"
	"github.com/azlan18/iDEA/internal/service"
	"github.com/azlan18/iDEA/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticketRepo, closeStore, err := openTicketStore(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("failed to open ticket store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	agents, err := loadAgents(*cfg)
	if err != nil {
		logger.Fatal("failed to load roster", zap.Error(err))
	}
	agentRegistry := registry.New(agents)
	logger.Info("roster loaded", zap.Int("agents", len(agents)))

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	var (
		publisher   service.EventPublisher
		redisPinger handlers.Pinger
	)
	if redis != nil {
		publisher = redis.Client
		redisPinger = redis
	}
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, publisher, cfg.Redis.EventsChannel))

	assignments := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:     ticketRepo,
		Registry:       agentRegistry,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
		DrainScanLimit: cfg.Engine.DrainScanLimit,
	})
	restored, err := assignments.Reconcile(ctx)
	if err != nil {
		logger.Fatal("failed to reconcile agent slots", zap.Error(err))
	}
	logger.Info("agent slots reconciled", zap.Int("occupied", restored))

	monitor := worker.NewQueueMonitor(assignments, metrics, logger, cfg.Engine.QueueMonitorInterval())
	go monitor.Run(ctx)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		Agents:       agentRegistry,
		TokenManager: tokens,
		Logger:       logger,
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, ticketRepo, redisPinger, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Priority:       handlers.NewPriorityHandler(),
		Tickets:        handlers.NewTicketsHandler(assignments),
		Agents:         handlers.NewAgentsHandler(assignments),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, agentRegistry),
		IngressKey:     cfg.Auth.IngressAPIKey,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

// openTicketStore returns the configured ticket repository and a closer for its resources.
func openTicketStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.TicketRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return repository.NewPostgresTicketRepository(pg.PoolHandle()), pg.Close, nil
	case config.StoreDriverSQLite:
		db, err := persistence.OpenSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return nil, nil, err
		}
		repo, err := repository.NewSQLiteTicketRepository(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, func() { _ = db.Close() }, nil
	case config.StoreDriverMemory:
		logger.Warn("using in-memory ticket store; tickets are lost on restart")
		return repository.NewMemoryTicketRepository(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

func loadAgents(cfg config.Config) ([]domain.Agent, error) {
	agents, err := roster.Load(cfg.Roster.Path)
	if err != nil {
		return nil, err
	}
	if cfg.Auth.DefaultAgentPassword == "" {
		return agents, nil
	}
	hash, err := auth.HashPassword(cfg.Auth.DefaultAgentPassword, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash default agent password: %w", err)
	}
	return roster.WithDefaultPassword(agents, hash), nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
