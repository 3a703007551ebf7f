package workers

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/modic-health/sync-agent/internal/assets"
	"github.com/modic-health/sync-agent/internal/config"
	"github.com/modic-health/sync-agent/internal/logger"
)

func TestAssetWorker_ChecksOnStart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager := NewMockManager(ctrl)
	w := NewAssetWorker(manager, config.Assets{CheckInterval: time.Hour}, logger.Nop())

	var checks atomic.Int32
	manager.EXPECT().CheckForUpdate(gomock.Any()).
		DoAndReturn(func(context.Context) error {
			checks.Add(1)
			return nil
		})

	w.Start(context.Background())
	defer w.Stop()

	require.Eventually(t, func() bool { return checks.Load() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestAssetWorker_ToleratesGatedChecks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager := NewMockManager(ctrl)
	w := NewAssetWorker(manager, config.Assets{CheckInterval: time.Hour}, logger.Nop())

	var checks atomic.Int32
	manager.EXPECT().CheckForUpdate(gomock.Any()).
		DoAndReturn(func(context.Context) error {
			checks.Add(1)
			return fmt.Errorf("%w: offline", assets.ErrSkipped)
		})

	w.Start(context.Background())
	defer w.Stop()

	require.Eventually(t, func() bool { return checks.Load() == 1 },
		time.Second, 10*time.Millisecond)
}
