package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/helpdesk-tools/ticket-dashboard/internal/api/http"
	"github.com/helpdesk-tools/ticket-dashboard/internal/api/http/handlers"
	"github.com/helpdesk-tools/ticket-dashboard/internal/api/view"
	"github.com/helpdesk-tools/ticket-dashboard/internal/backend"
	"github.com/helpdesk-tools/ticket-dashboard/internal/config"
	"github.com/helpdesk-tools/ticket-dashboard/internal/events"
	"github.com/helpdesk-tools/ticket-dashboard/internal/observability"
	"github.com/helpdesk-tools/ticket-dashboard/internal/persistence"
	"github.com/helpdesk-tools/ticket-dashboard/internal/service"
	"github.com/helpdesk-tools/ticket-dashboard/internal/session"
	"github.com/helpdesk-tools/ticket-dashboard/internal/worker"
)

func main() {
	envFiles := pflag.StringSlice("env-file", nil, "dotenv files to load before reading the environment (default .env)")
	addr := pflag.String("addr", "", "listen address, overrides APP_HOST and APP_PORT")
	pflag.Parse()

	cfg, err := config.Load(*envFiles...)
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

	storage, closeStorage, err := openSessionStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open session storage", zap.String("driver", cfg.Session.Driver), zap.Error(err))
	}
	defer closeStorage()

	sessions := session.NewStore(storage, session.Keys{Token: cfg.Session.TokenKey, Role: cfg.Session.RoleKey}, logger)
	if err := sessions.Initialize(ctx); err != nil {
		logger.Fatal("failed to load session", zap.Error(err))
	}

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout(), backend.WithTokenSource(sessions.Token))

	dispatcher := events.NewInMemoryDispatcher()
	activity := service.NewActivityService(dispatcher, logger, 0)
	worker.StartActivityWorker(activity)

	tickets := service.NewTicketCollection(client, dispatcher, logger, service.TicketCollectionOptions{
		RevertOnFailure: cfg.Tickets.RevertOnFailure,
		DedupeByID:      cfg.Tickets.DedupeByID,
	})
	userForm := service.NewUserForm(client, dispatcher, logger)
	authService := service.NewAuthService(service.AuthDependencies{
		Backend:       client,
		Sessions:      sessions,
		ResetOnLogout: []service.Resetter{tickets, userForm},
		Events:        dispatcher,
		Logger:        logger,
	})

	views, err := view.NewRenderer(cfg.App.Name)
	if err != nil {
		logger.Fatal("failed to compile templates", zap.Error(err))
	}
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		Immutable:             true,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, views, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, client, sessions, metrics),
		Session:   handlers.NewSessionHandler(authService, views, logger),
		Dashboard: handlers.NewDashboardHandler(activity, views),
		Tickets:   handlers.NewTicketsHandler(tickets, views, logger),
		Users:     handlers.NewUsersHandler(userForm, views),
		Sessions:  sessions,
	})

	listenAddr := cfg.App.Addr()
	if *addr != "" {
		listenAddr = *addr
	}
	go func() {
		logger.Info("dashboard listening",
			zap.String("addr", listenAddr),
			zap.String("backend", cfg.Backend.BaseURL),
			zap.Bool("session_restored", sessions.IsAuthenticated()))
		if err := app.Listen(listenAddr); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// openSessionStorage builds the configured session storage driver.
func openSessionStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.Storage, func(), error) {
	switch cfg.Session.Driver {
	case config.SessionDriverMemory:
		return session.NewMemoryStorage(nil), func() {}, nil
	case config.SessionDriverFile:
		return session.NewFileStorage(cfg.Session.FilePath), func() {}, nil
	case config.SessionDriverRedis:
		redis := persistence.NewRedis(cfg.Redis, logger)
		return session.NewRedisStorage(redis.Client, cfg.Session.KeyPrefix), redis.Close, nil
	case config.SessionDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		if pg.PoolHandle() == nil {
			return nil, nil, errors.New("SESSION_DRIVER=postgres requires POSTGRES_DSN")
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return session.NewPostgresStorage(pg.PoolHandle()), pg.Close, nil
	}
	return nil, nil, errors.New("unknown session driver " + cfg.Session.Driver)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
