package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/modic-health/sync-agent/internal/assets"
	"github.com/modic-health/sync-agent/internal/config"
	"github.com/modic-health/sync-agent/internal/logger"
)

const defaultAssetCheckInterval = time.Hour

type assetWorker struct {
	manager assets.Manager
	cfg     config.Assets
	logger  *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAssetWorker builds the periodic model update check. Gated checks are
// normal operation, not failures; the manager decides when a probe actually
// goes out.
func NewAssetWorker(manager assets.Manager, cfg config.Assets, log *logger.Logger) Worker {
	return &assetWorker{
		manager: manager,
		cfg:     cfg,
		logger:  log,
	}
}

// Start implements [Worker].
func (w *assetWorker) Start(ctx context.Context) {
	w.Stop()

	interval := w.cfg.CheckInterval
	if interval <= 0 {
		interval = defaultAssetCheckInterval
	}

	w.mu.Lock()
	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()

		w.check(loopCtx)

		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-t.C:
				w.check(loopCtx)
			}
		}
	}()
}

// Stop implements [Worker].
func (w *assetWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *assetWorker) check(ctx context.Context) {
	err := w.manager.CheckForUpdate(ctx)
	if err == nil || errors.Is(err, assets.ErrSkipped) {
		return
	}
	logger.FromContext(ctx).Warn().
		Str("func", "assetWorker.check").
		Err(err).
		Msg("asset update check")
}
