package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/modic-health/sync-agent/internal/config"
	"github.com/modic-health/sync-agent/internal/logger"
	"github.com/modic-health/sync-agent/internal/mock"
	"github.com/modic-health/sync-agent/internal/service"
	"github.com/modic-health/sync-agent/models"
)

type syncWorkerMocks struct {
	orchestrator *MockOrchestrator
	merger       *MockMerger
	ops          *mock.MockOperationStore
	observer     *mock.MockObserver
	edges        chan models.ConnectivityState
}

func newTestSyncWorker(t *testing.T, ctrl *gomock.Controller) (Worker, syncWorkerMocks) {
	t.Helper()

	m := syncWorkerMocks{
		orchestrator: NewMockOrchestrator(ctrl),
		merger:       NewMockMerger(ctrl),
		ops:          mock.NewMockOperationStore(ctrl),
		observer:     mock.NewMockObserver(ctrl),
		edges:        make(chan models.ConnectivityState, 1),
	}
	m.observer.EXPECT().Subscribe().
		Return((<-chan models.ConnectivityState)(m.edges)).AnyTimes()

	// A long interval keeps the ticker out of these tests; only the
	// startup cycle and connectivity edges fire.
	cfg := config.Sync{Interval: time.Hour, PurgeAfter: 24 * time.Hour}
	w := NewSyncWorker(m.orchestrator, m.merger, m.ops, m.observer, cfg, logger.Nop())
	return w, m
}

func TestSyncWorker_RunsCycleOnStart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	w, m := newTestSyncWorker(t, ctrl)

	var cycles atomic.Int32
	m.orchestrator.EXPECT().TriggerDrain(gomock.Any(), service.ScopeFull()).
		DoAndReturn(func(context.Context, service.DrainScope) (service.DrainSummary, error) {
			cycles.Add(1)
			return service.DrainSummary{}, nil
		})
	m.merger.EXPECT().FetchAndMerge(gomock.Any()).Return(0, nil)
	m.ops.EXPECT().PurgeSynced(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, olderThan time.Time) (int64, error) {
			assert.WithinDuration(t, time.Now().UTC().Add(-24*time.Hour), olderThan, time.Minute)
			return 0, nil
		})

	w.Start(context.Background())
	defer w.Stop()

	require.Eventually(t, func() bool { return cycles.Load() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestSyncWorker_DrainsOnReconnect(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	w, m := newTestSyncWorker(t, ctrl)

	var cycles atomic.Int32
	m.orchestrator.EXPECT().TriggerDrain(gomock.Any(), service.ScopeFull()).
		DoAndReturn(func(context.Context, service.DrainScope) (service.DrainSummary, error) {
			cycles.Add(1)
			return service.DrainSummary{}, nil
		}).Times(2)
	m.merger.EXPECT().FetchAndMerge(gomock.Any()).Return(0, nil).Times(2)
	m.ops.EXPECT().PurgeSynced(gomock.Any(), gomock.Any()).Return(int64(0), nil).Times(2)

	w.Start(context.Background())
	defer w.Stop()

	require.Eventually(t, func() bool { return cycles.Load() == 1 },
		time.Second, 10*time.Millisecond)

	m.edges <- models.ConnectivityState{Online: true}

	require.Eventually(t, func() bool { return cycles.Load() == 2 },
		time.Second, 10*time.Millisecond)
}

func TestSyncWorker_IgnoresOfflineEdge(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	w, m := newTestSyncWorker(t, ctrl)

	var cycles atomic.Int32
	m.orchestrator.EXPECT().TriggerDrain(gomock.Any(), service.ScopeFull()).
		DoAndReturn(func(context.Context, service.DrainScope) (service.DrainSummary, error) {
			cycles.Add(1)
			return service.DrainSummary{}, nil
		})
	m.merger.EXPECT().FetchAndMerge(gomock.Any()).Return(0, nil)
	m.ops.EXPECT().PurgeSynced(gomock.Any(), gomock.Any()).Return(int64(0), nil)

	w.Start(context.Background())

	require.Eventually(t, func() bool { return cycles.Load() == 1 },
		time.Second, 10*time.Millisecond)

	m.edges <- models.ConnectivityState{Online: false}
	time.Sleep(50 * time.Millisecond)

	w.Stop()
	assert.Equal(t, int32(1), cycles.Load())
}

func TestSyncWorker_StopIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	w, m := newTestSyncWorker(t, ctrl)

	m.orchestrator.EXPECT().TriggerDrain(gomock.Any(), gomock.Any()).
		Return(service.DrainSummary{}, nil).AnyTimes()
	m.merger.EXPECT().FetchAndMerge(gomock.Any()).Return(0, nil).AnyTimes()
	m.ops.EXPECT().PurgeSynced(gomock.Any(), gomock.Any()).Return(int64(0), nil).AnyTimes()

	w.Stop() // before any Start

	w.Start(context.Background())
	w.Stop()
	w.Stop()
}
