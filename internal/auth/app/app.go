package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/Eatzy/auth-service/internal/auth/http"
	"github.com/Eatzy/auth-service/internal/auth/legacy"
	"github.com/Eatzy/auth-service/internal/auth/service"
	"github.com/Eatzy/auth-service/internal/auth/store"
	"github.com/Eatzy/auth-service/internal/auth/store/drivers/sqlite"
	"github.com/Eatzy/auth-service/pkg/cryptox"
	"github.com/Eatzy/auth-service/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth bridge service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db           store.Store
	legacyClient *legacy.Client

	reconcileService    *service.ReconcileService
	sessionService      *service.SessionService
	verifyService       *service.VerifyService
	configService       *service.ConfigService
	originPolicy        *service.OriginPolicy
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.LegacyBaseURL == "" {
		return nil, fmt.Errorf("LEGACY_BASE_URL is required")
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	// Background workers start before the listener so the first request
	// already sees a warm config cache.
	app.configService.Start()
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop background workers before the store they read from goes away.
	app.housekeepingService.Stop()
	app.configService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.legacyClient = legacy.NewClient(app.cfg.LegacyBaseURL, app.cfg.LegacySecret, app.cfg.LegacyTimeout)

	app.reconcileService = &service.ReconcileService{
		Store:    app.db,
		Legacy:   app.legacyClient,
		Migrator: service.CredentialMigrator{},
	}
	app.sessionService = &service.SessionService{
		Store: app.db,
		TTL:   app.cfg.SessionTTL,
	}
	app.verifyService = &service.VerifyService{Store: app.db}

	app.configService = service.NewConfigService(
		app.db,
		app.logger,
		app.cfg.ConfigTTL,
		app.cfg.ConfigRefreshInterval,
	)
	app.originPolicy = &service.OriginPolicy{Config: app.configService}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.cfg.AdminSecret, app.db, app.logger)

	router.ReconcileService = app.reconcileService
	router.SessionService = app.sessionService
	router.VerifyService = app.verifyService
	router.ConfigService = app.configService
	router.OriginPolicy = app.originPolicy
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
