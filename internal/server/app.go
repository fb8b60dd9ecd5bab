// Package server assembles the ledger server: it opens the PostgreSQL pool,
// applies migrations, wires repositories, services and the HTTP API, and
// runs them until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dmitrijs2005/spendy/internal/logging"
	"github.com/dmitrijs2005/spendy/internal/server/auth"
	"github.com/dmitrijs2005/spendy/internal/server/config"
	"github.com/dmitrijs2005/spendy/internal/server/httpapi"
	"github.com/dmitrijs2005/spendy/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/spendy/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Seams for tests.
var (
	openDB               = repomanager.Open
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
)

var logOutput io.Writer = os.Stdout

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	closeDB     func()
	repomanager repomanager.RepositoryManager
	server      *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(logOutput, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, closeDB, err := openDB(ctx, c.DatabaseDSN, c.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := newRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		closeDB()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	var metrics *httpapi.Metrics
	if c.MetricsEnabled {
		metrics = httpapi.NewMetrics(prometheus.NewRegistry())
	}

	handler := httpapi.NewHandler(
		services.NewCategoryService(db, m, logger),
		services.NewEntryService(db, m, logger),
		services.NewAggregateService(db, m, logger),
		auth.NewJWTResolver([]byte(c.SecretKey), db, m),
		logger,
		metrics,
	)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		closeDB:     closeDB,
		repomanager: m,
		server:      httpapi.NewServer(c.EndpointAddrHTTP, handler.Routes(), c.ShutdownTimeout, logger),
	}, nil
}

// Run serves the HTTP API until ctx is cancelled or SIGINT, SIGTERM or
// SIGQUIT arrives, then shuts down and releases the database pool.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.Close()

	app.logger.Info(ctx, "Starting app...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.server.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info(gctx, "Shutting down...", "cause", context.Cause(gctx))
		return nil
	})

	if err := g.Wait(); err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err)
		return err
	}
	return nil
}

// IssueToken registers owner if it is new and returns a bearer token for it
// valid for the configured access token lifetime.
func (app *App) IssueToken(ctx context.Context, owner string) (string, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return "", fmt.Errorf("owner must not be empty")
	}

	if err := app.repomanager.Owners(app.db).Register(ctx, owner); err != nil {
		return "", fmt.Errorf("error registering owner: %w", err)
	}

	token, err := auth.GenerateToken(owner, []byte(app.config.SecretKey), app.config.AccessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}

	app.logger.Info(ctx, "token issued", "owner", owner, "validity", app.config.AccessTokenValidityDuration)
	return token, nil
}

// Close releases the database pool. It is safe to call more than once.
func (app *App) Close() {
	if app.closeDB != nil {
		app.closeDB()
		app.closeDB = nil
	}
}
