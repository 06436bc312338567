// Package server wires configuration, the database pool, the auth service and
// the HTTP and gRPC endpoints, and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

const (
	shutdownTimeout   = 5 * time.Second
	requestTimeout    = 30 * time.Second
	healthProbeEvery  = 10 * time.Second
	connMaxLifetime   = 30 * time.Minute
	readHeaderTimeout = 5 * time.Second
	logLevelEnv       = "LOG_LEVEL"
)

var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}

	newRepoManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	userService *services.UserService
	metrics     *httpapi.Metrics
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, logLevel(os.Getenv(logLevelEnv)))

	db, err := OpenDatabase(c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()

	us := services.NewUserService(db, rm,
		auth.NewBcryptHasher(c.BcryptCost),
		auth.NewTokenIssuer([]byte(c.SecretKey), c.TokenValidityDuration, logger),
		logger)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		userService: us,
		metrics:     httpapi.NewMetrics(),
	}, nil
}

// OpenDatabase opens the pgx pool sized from the config. No connection is
// made until first use.
func OpenDatabase(c *config.Config) (*sql.DB, error) {
	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(c.DatabaseMaxConns)
	db.SetMaxIdleConns(c.DatabaseMaxConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	return db, nil
}

func logLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	api := httpapi.New(app.userService, app.logger, app.metrics, httpapi.Options{
		ProtectList:       app.config.ProtectList,
		TrustProxyHeaders: app.config.TrustProxyHeaders,
		RequestTimeout:    requestTimeout,
	})

	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           api.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "HTTP shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger, app.userService, healthProbeEvery)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run migrates the schema, serves until ctx is cancelled or a signal arrives,
// and closes the pool on the way out.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "closing database", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return nil
}

// ExportActivity uploads a snapshot of the login activity to object storage.
func (app *App) ExportActivity(ctx context.Context) (string, int, error) {
	defer app.db.Close()
	return services.NewActivityExporter(app.userService, app.config).Export(ctx)
}
