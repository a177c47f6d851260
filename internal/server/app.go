// Package server wires configuration, storage, services and transports into
// a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/pdfdesk/internal/logging"
	"github.com/dmitrijs2005/pdfdesk/internal/server/config"
	gs "github.com/dmitrijs2005/pdfdesk/internal/server/grpc"
	"github.com/dmitrijs2005/pdfdesk/internal/server/httpapi"
	"github.com/dmitrijs2005/pdfdesk/internal/server/metrics"
	"github.com/dmitrijs2005/pdfdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pdfdesk/internal/server/services"
	"github.com/dmitrijs2005/pdfdesk/internal/server/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *http.Server
	grpcServer *gs.GRPCServer
}

// NewApp opens the database, applies migrations and builds both servers.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := storage.NewS3Storage(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "pdfdesk"),
	)

	router := httpapi.NewRouter(httpapi.Options{
		Users:          services.NewUserService(db, rm, c, logger),
		Documents:      services.NewDocumentService(db, rm, store, c, logger),
		Metrics:        metrics.NewCollector(reg),
		Gatherer:       reg,
		Logger:         logger,
		SecretKey:      []byte(c.SecretKey),
		MaxUploadBytes: c.MaxUploadBytes,
		AuthRateLimit:  c.AuthRateLimit,
	})

	return &App{
		config: c,
		logger: logger,
		db:     db,
		httpServer: &http.Server{
			Addr:              c.EndpointAddrHTTP,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		grpcServer: gs.NewGRPCServer(c.EndpointAddrGRPC, logger, db),
	}, nil
}

// Run serves until SIGINT, SIGTERM or SIGQUIT, or until either server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info(ctx, "Starting HTTP server", "address", app.httpServer.Addr)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		app.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		if err := app.grpcServer.Run(ctx); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}
