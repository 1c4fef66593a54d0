package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/washandgo/engagement-api/internal/auth"
	"github.com/washandgo/engagement-api/internal/config"
	"github.com/washandgo/engagement-api/internal/database"
	"github.com/washandgo/engagement-api/internal/http/handler"
	"github.com/washandgo/engagement-api/internal/http/middleware"
	"github.com/washandgo/engagement-api/internal/http/router"
	"github.com/washandgo/engagement-api/internal/jobs"
	"github.com/washandgo/engagement-api/internal/logger"
	"github.com/washandgo/engagement-api/internal/remote"
	"github.com/washandgo/engagement-api/internal/repository"
	"github.com/washandgo/engagement-api/internal/service"
)

// @title Wash&Go Engagement API
// @version 1.0
// @description Pricing and document lifecycle engine for vehicle wash services, quotes and invoices

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Development runs migrate the schema in-process; production relies
	// on cmd/migrate.
	if cfg.App.Environment == "development" || cfg.App.Environment == "local" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to auto-migrate schema: %w", err)
		}
	}

	// Remote backend is optional; the client is nil when disabled and the
	// app runs on the local store only.
	remoteClient := remote.NewClient(&cfg.Remote, log)

	// Initialize repositories
	engagementRepo := repository.NewEngagementRepository(db)
	clientRepo := repository.NewClientRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	// Initialize services
	engagementService := service.NewEngagementService(db, engagementRepo, clientRepo, companyRepo, catalogRepo, cfg.Vat, log)
	clientService := service.NewClientService(clientRepo, log)
	companyService := service.NewCompanyService(companyRepo, log)
	catalogService := service.NewCatalogService(catalogRepo, log)
	reconcileService := service.NewReconcileService(remoteClient, engagementRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	engagementHandler := handler.NewEngagementHandler(engagementService, log)
	clientHandler := handler.NewClientHandler(clientService, log)
	companyHandler := handler.NewCompanyHandler(companyService, log)
	catalogHandler := handler.NewCatalogHandler(catalogService, log)
	syncHandler := handler.NewSyncHandler(reconcileService, log)

	devLogin := cfg.App.Environment == "development" || cfg.App.Environment == "local"
	authHandler := handler.NewAuthHandler(authMiddleware.Validator(), devLogin, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		engagementHandler,
		clientHandler,
		companyHandler,
		catalogHandler,
		syncHandler,
		authHandler,
	)

	// Initialize and start scheduler for the reconciliation job
	var scheduler *jobs.Scheduler
	if cfg.Sync.Enabled && remoteClient.IsEnabled() {
		scheduler = jobs.NewScheduler(log)

		reconcileJob := jobs.NewReconcileJob(reconcileService, log, jobs.DefaultReconcileTimeout)
		if err := scheduler.AddJob(jobs.ReconcileJobName, cfg.Sync.Schedule, reconcileJob.Run); err != nil {
			log.Error("Failed to register reconciliation job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with reconciliation job",
				zap.String("cron_expr", cfg.Sync.Schedule),
			)
			if cfg.Sync.RunOnStart {
				go reconcileJob.Run()
			}
		}
	} else {
		log.Info("Periodic reconciliation disabled",
			zap.Bool("sync_enabled", cfg.Sync.Enabled),
			zap.Bool("remote_client_available", remoteClient.IsEnabled()),
		)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
