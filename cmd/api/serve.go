package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/servicedesk/internal/api/http"
	"github.com/spec-kit/servicedesk/internal/api/http/handlers"
	"github.com/spec-kit/servicedesk/internal/auth"
	"github.com/spec-kit/servicedesk/internal/cache"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/notify"
	"github.com/spec-kit/servicedesk/internal/observability"
	"github.com/spec-kit/servicedesk/internal/persistence"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/sanitize"
	"github.com/spec-kit/servicedesk/internal/service"
	"github.com/spec-kit/servicedesk/internal/worker"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	cfg, logger := rt.cfg, rt.logger

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, rt.pg.PoolHandle(), logger); err != nil {
			return err
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	pool := rt.pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	sanitizer := sanitize.New()
	settings := cfg.Services

	reference := service.NewReferenceService(service.ReferenceDependencies{
		StatusRepo:   repository.NewStatusRepository(pool),
		PriorityRepo: repository.NewPriorityRepository(pool),
		MachineRepo:  repository.NewMachineRepository(pool),
		CustomerRepo: repository.NewCustomerRepository(pool),
		AgentRepo:    repository.NewAgentRepository(pool),
		UserRepo:     userRepo,
		ProductRepo:  repository.NewProductRepository(pool),
		StockRepo:    repository.NewStockRepository(pool),
		Cache:        cache.New(redis.Handle(), settings.CacheTTL, logger),
		Sanitizer:    sanitizer,
		Logger:       logger,
	})

	notifications := worker.NewNotificationWorker(events.NewInMemoryDispatcher(logger),
		worker.DefaultQueueSize, worker.DefaultEnqueueTimeout, logger)
	service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: notifications,
		Notifier:   notify.New(cfg.SMTP, logger),
		Parties:    reference,
		Settings:   settings,
		Metrics:    metrics,
		Logger:     logger,
	}).RegisterHandlers()
	notifications.Start()

	transactor := repository.NewTransactor(pool)
	workEntryRepo := repository.NewWorkEntryRepository(pool)
	audit := service.NewAuditLogger(repository.NewAuditRepository(pool), logger)
	stock := service.NewStockAdjuster(settings, metrics, logger)

	tickets := service.NewTicketService(service.TicketDependencies{
		Transactor:    transactor,
		TicketRepo:    repository.NewServiceTicketRepository(pool),
		WorkEntryRepo: workEntryRepo,
		Reference:     reference,
		Stock:         stock,
		Dispatcher:    notifications,
		Audit:         audit,
		Sanitizer:     sanitizer,
		Logger:        logger,
	})
	work := service.NewWorkEntryService(service.WorkEntryDependencies{
		Transactor:    transactor,
		WorkEntryRepo: workEntryRepo,
		Stock:         stock,
		Audit:         audit,
		Sanitizer:     sanitizer,
		Settings:      settings,
		Logger:        logger,
	})
	authService := service.NewAuthService(cfg.Auth, userRepo)

	probes := map[string]handlers.Pinger{"postgres": rt.pg}
	if redis.Handle() != nil {
		probes["redis"] = redis
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, probes),
		Auth:           handlers.NewAuthHandler(authService),
		ServiceTickets: handlers.NewServiceTicketsHandler(tickets, work, settings.SiteURL),
		WorkEntries:    handlers.NewWorkEntriesHandler(work),
		Reference:      handlers.NewReferenceHandler(reference),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), userRepo),
		Metrics:        metrics.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Error("fiber listen", zap.Error(err))
			cancel()
		}
	}()

	waitForShutdown(ctx, logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
	drainCtx, drainCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer drainCancel()
	if err := notifications.Close(drainCtx); err != nil {
		logger.Warn("notification queue not drained", zap.Error(err))
	}
	return nil
}

func waitForShutdown(ctx context.Context, logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutting down", zap.Error(ctx.Err()))
	}
}
