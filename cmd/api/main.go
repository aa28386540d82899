package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httptransport "github.com/auditkit/revision-service/internal/api/http"
	"github.com/auditkit/revision-service/internal/api/http/handlers"
	"github.com/auditkit/revision-service/internal/auth"
	"github.com/auditkit/revision-service/internal/cache"
	"github.com/auditkit/revision-service/internal/config"
	"github.com/auditkit/revision-service/internal/enterprise"
	"github.com/auditkit/revision-service/internal/events"
	"github.com/auditkit/revision-service/internal/observability"
	"github.com/auditkit/revision-service/internal/persistence"
	"github.com/auditkit/revision-service/internal/plugins"
	"github.com/auditkit/revision-service/internal/repository"
	"github.com/auditkit/revision-service/internal/repository/memory"
	"github.com/auditkit/revision-service/internal/service"
	"github.com/auditkit/revision-service/internal/worker"
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

	metrics, err := observability.NewMetrics()
	if err != nil {
		logger.Fatal("failed to init metrics", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := map[string]handlers.Pinger{}

	var repos repository.Repositories
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		repos = repository.NewPostgresRepositories(pg.PoolHandle())
		deps["postgres"] = pg
	default:
		db, err := memory.New()
		if err != nil {
			logger.Fatal("failed to init memory store", zap.Error(err))
		}
		repos = db.Repositories()
	}

	var tableCache *cache.TableCache
	if cfg.Redis.Enabled {
		redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redis.Close()
		tableCache = cache.NewTableCache(redis.Client, cfg.Audit.TableCacheTTL())
		deps["redis"] = redis
	}

	registry := plugins.NewRegistry()
	if enterprise.Install(cfg.Enterprise, registry) {
		logger.Info("enterprise form fields installed")
	}

	dispatcher := events.NewInMemoryDispatcher()

	entityService := service.NewEntityService(service.EntityDependencies{
		Repos:      repos,
		Registry:   registry,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	revisionService := service.NewRevisionService(service.RevisionDependencies{
		Repos:      repos,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	auditService := service.NewAuditService(service.AuditDependencies{
		Repos:      repos,
		Cache:      tableCache,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	pluginService := service.NewPluginService(registry, dispatcher, logger)
	auditLog := service.NewAuditLogService(dispatcher, logger)

	worker.StartAuditWorker(auditLog, auditService)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Entities:          handlers.NewEntitiesHandler(entityService, revisionService),
		Audit:             handlers.NewAuditHandler(auditService),
		Plugins:           handlers.NewPluginsHandler(pluginService),
		AuthMiddleware:    auth.NewAuthMiddleware(tokens),
		EnterpriseEnabled: cfg.Enterprise.Enabled,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
