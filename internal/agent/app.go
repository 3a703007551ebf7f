// Package agent assembles the sync agent from its parts and runs it until
// the process is told to stop.
package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/modic-health/sync-agent/internal/adapter"
	"github.com/modic-health/sync-agent/internal/assets"
	"github.com/modic-health/sync-agent/internal/config"
	"github.com/modic-health/sync-agent/internal/connectivity"
	"github.com/modic-health/sync-agent/internal/crypto"
	"github.com/modic-health/sync-agent/internal/logger"
	"github.com/modic-health/sync-agent/internal/metrics"
	"github.com/modic-health/sync-agent/internal/service"
	"github.com/modic-health/sync-agent/internal/store"
	"github.com/modic-health/sync-agent/internal/workers"
)

const metricsShutdownTimeout = 5 * time.Second

// App owns every long-lived component of the agent.
type App struct {
	cfg      *config.StructuredConfig
	db       *store.DB
	observer connectivity.Observer
	services *service.Services
	workers  *workers.Workers
	logger   *logger.Logger
}

// NewApp builds the full agent: local storage with migrations applied, the
// credential codec keyed to this device, the remote client, the connectivity
// poller, the use-case services and the background workers.
func NewApp(cfg *config.StructuredConfig, log *logger.Logger) (*App, error) {
	ctx := log.WithContext(context.Background())

	db, err := store.NewConnectSQLite(ctx, cfg.Storage.DB, log)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	saltPath := filepath.Join(filepath.Dir(cfg.Storage.DB.DSN), "device.salt")
	salt, err := crypto.LoadOrCreateSalt(saltPath)
	if err != nil {
		return nil, fmt.Errorf("load device salt: %w", err)
	}
	codec := crypto.NewCodec(cfg.Agent.DeviceSecret, salt)

	remote, err := adapter.NewHTTPRemoteClient(cfg.Remote, log)
	if err != nil {
		return nil, fmt.Errorf("create remote client: %w", err)
	}

	observer := connectivity.NewPoller(remote, 0, cfg.Agent.Metered, log)
	storages := store.NewStorages(db, log)

	// No drain has run yet, so any InFlight row belongs to a previous
	// process that died mid-attempt.
	recovered, err := storages.Operations.RecoverInFlight(ctx)
	if err != nil {
		return nil, fmt.Errorf("recover interrupted operations: %w", err)
	}
	if recovered > 0 {
		log.Info().
			Str("func", "NewApp").
			Int64("recovered", recovered).
			Msg("requeued operations interrupted by shutdown")
	}
	services := service.NewServices(storages, remote, codec, observer, cfg.Sync, log)
	manager := assets.NewManager(remote, storages.State, observer, cfg.Assets, cfg.Storage, cfg.Sync, log)

	return &App{
		cfg:      cfg,
		db:       db,
		observer: observer,
		services: services,
		workers: workers.NewWorkers(
			workers.NewSyncWorker(services.Orchestrator, services.Merger, storages.Operations, observer, cfg.Sync, log),
			workers.NewAssetWorker(manager, cfg.Assets, log),
		),
		logger: log,
	}, nil
}

// Services exposes the wired use-cases for embedding callers.
func (a *App) Services() *service.Services {
	return a.services
}

// Run starts the connectivity poller, the workers and the metrics listener,
// then blocks until ctx is cancelled and everything has shut down.
func (a *App) Run(ctx context.Context) error {
	ctx = a.logger.WithContext(ctx)

	a.observer.Start(ctx)
	defer a.observer.Stop()

	a.workers.Start(ctx)
	defer a.workers.Stop()

	// Keeps the prometheus gauge current; values are also read here so the
	// channel never blocks the orchestrator.
	counts := a.services.Orchestrator.ObserveUnsyncedCount(ctx)
	go func() {
		for range counts {
		}
	}()

	metricsSrv := a.startMetrics(ctx)

	<-ctx.Done()

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return a.db.Close()
}

func (a *App) startMetrics(ctx context.Context) *http.Server {
	if a.cfg.Metrics.Address == "" {
		return nil
	}

	metrics.Register()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: a.cfg.Metrics.Address, Handler: mux}

	log := logger.FromContext(ctx)
	go func() {
		log.Info().
			Str("func", "App.startMetrics").
			Str("address", srv.Addr).
			Msg("metrics listener started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().
				Str("func", "App.startMetrics").
				Err(err).
				Msg("metrics listener")
		}
	}()
	return srv
}
