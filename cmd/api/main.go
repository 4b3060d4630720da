package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/it-support/internal/api/http"
	"github.com/spec-kit/it-support/internal/api/http/handlers"
	"github.com/spec-kit/it-support/internal/config"
	"github.com/spec-kit/it-support/internal/events"
	"github.com/spec-kit/it-support/internal/knowledge"
	"github.com/spec-kit/it-support/internal/observability"
	"github.com/spec-kit/it-support/internal/persistence"
	"github.com/spec-kit/it-support/internal/pipeline"
	"github.com/spec-kit/it-support/internal/repository"
	"github.com/spec-kit/it-support/internal/service"
	"github.com/spec-kit/it-support/internal/worker"
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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	knowledgeRepo := repository.NewKnowledgeRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	searcher := knowledge.NewLexicalSearcher(nil, logger)
	knowledgeService := service.NewKnowledgeService(knowledgeRepo, searcher, logger)
	if err := knowledgeService.Bootstrap(ctx, cfg.Knowledge.SeedPath); err != nil {
		logger.Fatal("failed to bootstrap knowledge base", zap.Error(err))
	}

	lifecycle := service.NewLifecycleService(service.LifecycleDependencies{
		TicketRepo: ticketRepo,
		AuditRepo:  auditRepo,
	})
	workflowService := service.NewWorkflowService(service.WorkflowDependencies{
		Lifecycle:      lifecycle,
		Classifier:     pipeline.NewClassifier(searcher, cfg.Pipeline.ClassifierConfidenceThreshold, logger),
		DecisionEngine: pipeline.NewDecisionEngine(cfg.Pipeline.AutoResolveThreshold, cfg.Pipeline.LowConfidenceThreshold, logger),
		Resolver:       pipeline.NewResolver(logger),
		Escalator:      pipeline.NewEscalator(logger),
		KnowledgeRepo:  knowledgeRepo,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
		MinDescLength:  cfg.Pipeline.MinDescriptionLength,
	})
	analyticsService := service.NewAnalyticsService(ticketRepo, auditRepo, redis, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Workflow:  handlers.NewWorkflowHandler(workflowService),
		Tickets:   handlers.NewTicketsHandler(lifecycle),
		Knowledge: handlers.NewKnowledgeHandler(knowledgeService),
		Analytics: handlers.NewAnalyticsHandler(analyticsService),
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
