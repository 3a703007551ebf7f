package workers

import (
	"context"
	"sync"
	"time"

	"github.com/modic-health/sync-agent/internal/config"
	"github.com/modic-health/sync-agent/internal/connectivity"
	"github.com/modic-health/sync-agent/internal/logger"
	"github.com/modic-health/sync-agent/internal/service"
	"github.com/modic-health/sync-agent/internal/store"
)

const defaultSyncInterval = 5 * time.Minute

type syncWorker struct {
	orchestrator service.Orchestrator
	merger       service.Merger
	operations   store.OperationStore
	observer     connectivity.Observer
	cfg          config.Sync
	logger       *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncWorker builds the periodic drain loop. Each cycle drains the queue,
// merges remote changes, and purges synced operations past the audit window.
// An offline to online edge triggers an extra cycle so queued work leaves the
// device as soon as connectivity returns.
func NewSyncWorker(
	orchestrator service.Orchestrator,
	merger service.Merger,
	operations store.OperationStore,
	observer connectivity.Observer,
	cfg config.Sync,
	log *logger.Logger,
) Worker {
	return &syncWorker{
		orchestrator: orchestrator,
		merger:       merger,
		operations:   operations,
		observer:     observer,
		cfg:          cfg,
		logger:       log,
	}
}

// Start implements [Worker].
func (w *syncWorker) Start(ctx context.Context) {
	w.Stop()

	interval := w.cfg.Interval
	if interval <= 0 {
		interval = defaultSyncInterval
	}

	w.mu.Lock()
	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	edges := w.observer.Subscribe()

	go func() {
		defer w.wg.Done()

		w.cycle(loopCtx)

		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-t.C:
				w.cycle(loopCtx)
			case state := <-edges:
				if state.Online {
					w.cycle(loopCtx)
				}
			}
		}
	}()
}

// Stop implements [Worker].
func (w *syncWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *syncWorker) cycle(ctx context.Context) {
	log := logger.FromContext(ctx)

	if _, err := w.orchestrator.TriggerDrain(ctx, service.ScopeFull()); err != nil {
		log.Warn().
			Str("func", "syncWorker.cycle").
			Err(err).
			Msg("drain cycle")
	}
	if _, err := w.merger.FetchAndMerge(ctx); err != nil {
		log.Warn().
			Str("func", "syncWorker.cycle").
			Err(err).
			Msg("fetch and merge")
	}

	if w.cfg.PurgeAfter <= 0 {
		return
	}
	cutoff := time.Now().UTC().Add(-w.cfg.PurgeAfter)
	if _, err := w.operations.PurgeSynced(ctx, cutoff); err != nil {
		log.Warn().
			Str("func", "syncWorker.cycle").
			Err(err).
			Msg("purge synced operations")
	}
}
