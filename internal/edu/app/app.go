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

	httpapi "github.com/edupredict/edupredict/internal/edu/http"
	"github.com/edupredict/edupredict/internal/edu/service"
	"github.com/edupredict/edupredict/internal/edu/store"
	"github.com/edupredict/edupredict/internal/edu/store/drivers/sqlite"
	"github.com/edupredict/edupredict/pkg/idx"
	"github.com/edupredict/edupredict/pkg/jwtx"
	"github.com/edupredict/edupredict/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the EduPredict service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db    store.Store
	cache *redis.Client // nil when no redis is configured
	keys  *jwtx.EdDSAKeyPair

	// Services
	authService         *service.AuthService
	userService         *service.UserService
	mfaService          *service.MFAService
	studentService      *service.StudentService
	courseService       *service.CourseService
	gradeService        *service.GradeService
	attendanceService   *service.AttendanceService
	notificationService *service.NotificationService
	analyticsService    *service.AnalyticsService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "edupredict",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	// Signing keys are ephemeral: restarting the service invalidates
	// outstanding access tokens, which refresh tokens absorb transparently.
	keys, err := jwtx.GenerateEdDSAKeyPair(idx.New().String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing keys: %w", err)
	}
	app.keys = keys

	if cfg.RedisAddr != "" {
		app.cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		app.logger.Info("dashboard cache enabled", "addr", cfg.RedisAddr)
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("edupredict starting", "port", app.cfg.Port, "version", BuildVersion)

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
	app.logger.Info("shutting down edupredict...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("edupredict stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
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
	app.authService = &service.AuthService{
		Signer:     app.keys,
		Store:      app.db,
		Issuer:     app.cfg.Issuer,
		Audience:   app.cfg.Audience,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}

	app.userService = &service.UserService{Store: app.db}
	app.mfaService = &service.MFAService{
		Store:  app.db,
		Issuer: app.cfg.Issuer,
	}
	app.studentService = &service.StudentService{Store: app.db}
	app.courseService = &service.CourseService{Store: app.db}
	app.gradeService = &service.GradeService{Store: app.db}
	app.attendanceService = &service.AttendanceService{Store: app.db}
	app.notificationService = &service.NotificationService{Store: app.db}
	app.analyticsService = &service.AnalyticsService{
		Store:         app.db,
		Cache:         app.cache,
		RiskThreshold: app.cfg.RiskThreshold,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	verifier := jwtx.NewEdDSAVerifier(
		app.cfg.Issuer,
		[]string{app.cfg.Audience},
		app.keys,
	)

	router := httpapi.NewRouter(
		verifier,
		BuildVersion,
		app.db,
		app.cache,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.UserService = app.userService
	router.MFAService = app.mfaService
	router.StudentService = app.studentService
	router.CourseService = app.courseService
	router.GradeService = app.gradeService
	router.AttendanceService = app.attendanceService
	router.NotificationService = app.notificationService
	router.AnalyticsService = app.analyticsService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
