// Package app initializes and holds long-lived application services, acting
// as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/newsroomlab/pressharvest/internal/config"
	"github.com/newsroomlab/pressharvest/internal/fetch"
	"github.com/newsroomlab/pressharvest/internal/ingest"
	"github.com/newsroomlab/pressharvest/internal/logging"
	"github.com/newsroomlab/pressharvest/internal/metrics"
	"github.com/newsroomlab/pressharvest/internal/report"
	"github.com/newsroomlab/pressharvest/internal/search"
	"github.com/newsroomlab/pressharvest/internal/store"
	"github.com/newsroomlab/pressharvest/internal/wp"
)

// App holds the shared, long-lived services for the harvester. It is built
// once at startup and handed to the commands that need it.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	store  *store.Store
	runner *ingest.Runner

	metricsSrv *http.Server
}

// New initializes every service from cfg, failing fast when any critical one
// cannot be built. It connects to Postgres and ensures the schema exists.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	st, err := store.New(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	return build(ctx, cfg, logger, st)
}

// NewWithStore wires an App around an already-constructed store. Used by
// tests to substitute a mocked database.
func NewWithStore(ctx context.Context, cfg config.Config, logger *zap.Logger, st *store.Store) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return build(ctx, cfg, logger, st)
}

func build(ctx context.Context, cfg config.Config, logger *zap.Logger, st *store.Store) (*App, error) {
	logger.Info("initializing services", zap.String("site", cfg.Site.BaseURL))

	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, err
	}

	fetcher := fetch.NewClient(fetch.Config{
		UserAgent:  cfg.HTTP.UserAgent,
		Timeout:    cfg.Timeout(),
		MaxRetries: cfg.HTTP.MaxRetries,
		BaseDelay:  cfg.BackoffInitial(),
		MaxDelay:   cfg.BackoffMax(),
	}, logger)

	api := wp.NewClient(cfg.Site, fetcher, logger)
	resolver := ingest.NewResolver(api, logger)
	ingestor := ingest.NewIngestor(api, resolver, ingest.NewStoreTxRunner(st), logger)
	runner := ingest.NewRunner(
		api,
		ingestor,
		st.Queries(),
		search.NewExtractor(logger),
		cfg.PageDelay(),
		logger,
	)

	a := &App{
		cfg:    cfg,
		logger: logger,
		store:  st,
		runner: runner,
	}

	if cfg.Metrics.Listen != "" {
		a.metricsSrv = startMetricsServer(cfg.Metrics.Listen, logger)
	}

	logger.Info("services initialized")
	return a, nil
}

func startMetricsServer(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("metrics server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Runner returns the ingestion runner driving harvest and search.
func (a *App) Runner() *ingest.Runner {
	return a.runner
}

// Reports returns a report generator over the stored data.
func (a *App) Reports() *report.Generator {
	return report.NewGenerator(a.store.Queries())
}

// Close shuts down every service the App owns. It is called by a Cobra hook
// after the command finishes.
func (a *App) Close() {
	a.logger.Info("shutting down services")

	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metricsSrv.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics server shutdown failed", zap.Error(err))
		}
	}

	a.store.Close()
	_ = a.logger.Sync()
}
