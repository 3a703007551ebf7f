package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/modic-health/sync-agent/internal/adapter"
	"github.com/modic-health/sync-agent/internal/logger"
	"github.com/modic-health/sync-agent/models"
)

const defaultProbeInterval = 30 * time.Second

type poller struct {
	client   adapter.RemoteClient
	interval time.Duration
	metered  bool
	logger   *logger.Logger

	mu          sync.Mutex
	state       models.ConnectivityState
	subscribers []chan models.ConnectivityState
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewPoller creates an [Observer] that probes the backend health endpoint on
// a ticker. Until the first probe completes the agent is considered offline.
// The metered flag is device configuration and never changes at runtime.
func NewPoller(client adapter.RemoteClient, interval time.Duration, metered bool, log *logger.Logger) Observer {
	if interval <= 0 {
		interval = defaultProbeInterval
	}

	return &poller{
		client:   client,
		interval: interval,
		metered:  metered,
		logger:   log,
		state:    models.ConnectivityState{Online: false, Metered: metered},
	}
}

// Start implements [Observer]. It stops any previously running loop, probes
// once immediately, then re-probes every interval.
func (p *poller) Start(ctx context.Context) {
	p.Stop()

	p.mu.Lock()
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()

		p.probe(loopCtx)

		t := time.NewTicker(p.interval)
		defer t.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-t.C:
				p.probe(loopCtx)
			}
		}
	}()
}

// Stop implements [Observer].
func (p *poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

// State implements [Observer].
func (p *poller) State() models.ConnectivityState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Subscribe implements [Observer].
func (p *poller) Subscribe() <-chan models.ConnectivityState {
	ch := make(chan models.ConnectivityState, 1)

	p.mu.Lock()
	p.subscribers = append(p.subscribers, ch)
	p.mu.Unlock()

	return ch
}

func (p *poller) probe(ctx context.Context) {
	online := p.client.Ping(ctx) == nil
	p.setOnline(ctx, online)
}

func (p *poller) setOnline(ctx context.Context, online bool) {
	p.mu.Lock()
	if p.state.Online == online {
		p.mu.Unlock()
		return
	}
	p.state.Online = online
	state := p.state
	subscribers := make([]chan models.ConnectivityState, len(p.subscribers))
	copy(subscribers, p.subscribers)
	p.mu.Unlock()

	log := logger.FromContext(ctx)
	log.Info().
		Str("func", "poller.setOnline").
		Bool("online", online).
		Msg("connectivity state changed")

	for _, ch := range subscribers {
		select {
		case ch <- state:
		default:
		}
	}
}
