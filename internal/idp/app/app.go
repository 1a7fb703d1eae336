// Package app wires the development identity provider together: sqlite
// store, ephemeral signing key, token service and the HTTP server.
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

	httpapi "github.com/aussiebroadwan/sessiongate/internal/idp/http"
	"github.com/aussiebroadwan/sessiongate/internal/idp/service"
	"github.com/aussiebroadwan/sessiongate/internal/idp/store"
	"github.com/aussiebroadwan/sessiongate/internal/idp/store/drivers/sqlite"
	"github.com/aussiebroadwan/sessiongate/pkg/cryptox"
	"github.com/aussiebroadwan/sessiongate/pkg/jwtx"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

const (
	BuildVersion = "v0.1.0"
)

// Application encapsulates the identity provider with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.EdDSASigner

	tokenService *service.TokenService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "idp-dev",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	// The signing key is ephemeral: every restart invalidates outstanding
	// access tokens, which is the behaviour a dev provider should have.
	signer, err := jwtx.NewEphemeralSigner("dev-1")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize signing key: %w", err)
	}
	app.signer = signer

	app.initServices()

	if err := app.seed(); err != nil {
		return nil, fmt.Errorf("failed to seed demo user: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("identity provider starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down identity provider...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("identity provider stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
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

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Store:         app.db,
		Signer:        app.signer,
		Verifier:      app.signer.Verifier(app.cfg.Issuer),
		Issuer:        app.cfg.Issuer,
		AccessTTL:     app.cfg.AccessTTL,
		RefreshTTL:    app.cfg.RefreshTTL,
		RotateRefresh: app.cfg.RotateRefresh,
	}
}

func (app *Application) seed() error {
	if app.cfg.SeedUsername == "" {
		return nil
	}
	return app.tokenService.SeedUser(
		context.Background(),
		app.cfg.SeedUsername,
		app.cfg.SeedPassword,
		app.cfg.SeedPreferredName,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.logger)
	router.TokenService = app.tokenService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
