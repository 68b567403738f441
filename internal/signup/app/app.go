package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/hubsignup/internal/signup/http"
	"github.com/aussiebroadwan/hubsignup/internal/signup/identity"
	"github.com/aussiebroadwan/hubsignup/internal/signup/metrics"
	"github.com/aussiebroadwan/hubsignup/internal/signup/notify"
	"github.com/aussiebroadwan/hubsignup/internal/signup/service"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store/drivers/postgres"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store/drivers/sqlite"
	"github.com/aussiebroadwan/hubsignup/pkg/cryptox"
	"github.com/aussiebroadwan/hubsignup/pkg/jwtx"
	"github.com/aussiebroadwan/hubsignup/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the signup service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	// Identity provider and the pieces only the local provider has.
	provider  identity.Provider
	local     *identity.Local
	verifier  jwtx.Verifier
	keys      *jwtx.KeySet
	notifier  *notify.FireAndForget
	closeNATS func() error

	hubs          *service.HubContextResolver
	invites       *service.InviteCodeRegistry
	roles         *service.RoleAuthority
	subscriptions *service.SubscriptionAutoAssigner
	signup        *service.SignupOrchestrator
	bootstrap     *service.Bootstrap
	housekeeping  *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "signup-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		registry: prometheus.NewRegistry(),
	}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)

	cryptox.SetPepperPath(cfg.PepperFile)

	ctx := context.Background()
	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initNotifier(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initIdentity(); err != nil {
		app.closeNotifier()
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()
	return app, nil
}

// NewWithStore builds an Application around an already migrated store. The
// caller keeps ownership of st.
func NewWithStore(cfg Config, st store.Store, logger *slog.Logger) (*Application, error) {
	app := &Application{
		cfg:      cfg,
		logger:   logger,
		db:       st,
		registry: prometheus.NewRegistry(),
	}
	app.metrics = metrics.New(app.registry)
	cryptox.SetPepperPath(cfg.PepperFile)

	if err := app.initNotifier(); err != nil {
		return nil, err
	}
	if err := app.initIdentity(); err != nil {
		app.closeNotifier()
		return nil, err
	}
	app.initServices()
	app.initHTTP()
	return app, nil
}

// Handler exposes the routed HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	if app.cfg.HousekeepingInterval > 0 {
		app.housekeeping.Start()
	}

	app.logger.Info("signup service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"store", app.cfg.StoreDriver,
		"identity", app.cfg.IdentityProvider,
		"notifier", app.cfg.Notifier,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	app.logger.Info("shutting down signup service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.cfg.HousekeepingInterval > 0 {
		app.housekeeping.Stop()
	}

	// In-flight notifications finish before their transport goes away.
	app.closeNotifier()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("signup service stopped")
	return nil
}

// initDatabase opens the configured store and applies migrations.
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.StoreDriver {
	case "postgres":
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		dsn := fmt.Sprintf(
			"file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite&_txlock=immediate",
			app.cfg.DatabaseFile,
		)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.StoreDriver)
	return nil
}

// initServices wires the signup components together.
func (app *Application) initServices() {
	app.hubs = &service.HubContextResolver{Store: app.db}
	app.invites = &service.InviteCodeRegistry{
		Store:      app.db,
		Hubs:       app.hubs,
		Notifier:   app.notifier,
		Metrics:    app.metrics,
		AppURL:     app.cfg.AppURL,
		DefaultTTL: app.cfg.InviteTTL,
	}
	app.roles = &service.RoleAuthority{Store: app.db, Metrics: app.metrics}
	app.subscriptions = &service.SubscriptionAutoAssigner{Store: app.db, Metrics: app.metrics}
	app.signup = &service.SignupOrchestrator{
		Store:         app.db,
		Identity:      app.provider,
		Invites:       app.invites,
		Hubs:          app.hubs,
		Roles:         app.roles,
		Subscriptions: app.subscriptions,
		Metrics:       app.metrics,
	}
	app.bootstrap = &service.Bootstrap{
		Store:    app.db,
		Identity: app.provider,
		Token:    app.cfg.BootstrapToken,
	}
	app.housekeeping = service.NewHousekeepingService(
		app.db,
		app.provider,
		app.metrics,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.SagaStaleAfter,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.verifier, BuildVersion, app.db, app.logger)

	router.Gatherer = app.registry
	router.Signup = app.signup
	router.Invites = app.invites
	router.Roles = app.roles
	router.Bootstrap = app.bootstrap
	if app.local != nil {
		router.Keys = app.keys
		router.Passwords = app.local
		router.EmailConfirm = app.local
	} else {
		router.Passwords = app.provider
	}
	router.ApplyRoutes()

	app.router = router
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
