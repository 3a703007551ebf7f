package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/modic-health/sync-agent/internal/adapter"
	"github.com/modic-health/sync-agent/internal/config"
	"github.com/modic-health/sync-agent/internal/logger"
	"github.com/modic-health/sync-agent/internal/mock"
	"github.com/modic-health/sync-agent/models"
)

type managerMocks struct {
	remote   *mock.MockRemoteClient
	state    *mock.MockStateStore
	observer *mock.MockObserver
}

func newTestManager(t *testing.T, ctrl *gomock.Controller, cfg config.Assets) (Manager, managerMocks, config.Storage) {
	t.Helper()

	m := managerMocks{
		remote:   mock.NewMockRemoteClient(ctrl),
		state:    mock.NewMockStateStore(ctrl),
		observer: mock.NewMockObserver(ctrl),
	}
	storage := config.Storage{
		AssetDir:  t.TempDir(),
		AssetFile: "model.tflite",
	}
	syncCfg := config.Sync{BackoffInitial: time.Minute, BackoffMax: time.Hour}

	return NewManager(m.remote, m.state, m.observer, cfg, storage, syncCfg, logger.Nop()), m, storage
}

func (m managerMocks) connectivity(online, metered bool) {
	m.observer.EXPECT().State().
		Return(models.ConnectivityState{Online: online, Metered: metered}).AnyTimes()
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func TestCheckForUpdate_SkippedWhenOffline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mgr, m, _ := newTestManager(t, ctrl, config.Assets{AutoUpdate: true})
	m.connectivity(false, false)

	err := mgr.CheckForUpdate(context.Background())
	require.ErrorIs(t, err, ErrSkipped)
}

func TestCheckForUpdate_SkippedInsideMinCheckInterval(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mgr, m, _ := newTestManager(t, ctrl, config.Assets{
		AutoUpdate:       true,
		MinCheckInterval: time.Hour,
	})
	m.connectivity(true, false)
	m.state.EXPECT().GetAssetState(gomock.Any()).Return(models.AssetVersionState{
		LastCheckedAt:     time.Now().UTC().Add(-time.Minute),
		AutoUpdateEnabled: true,
	}, nil)

	err := mgr.CheckForUpdate(context.Background())
	require.ErrorIs(t, err, ErrSkipped)
}

func TestCheckForUpdate_UpToDateTouchesOnlyTimestamp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mgr, m, _ := newTestManager(t, ctrl, config.Assets{AutoUpdate: true})
	m.connectivity(true, false)

	m.state.EXPECT().GetAssetState(gomock.Any()).Return(models.AssetVersionState{
		InstalledHash:     "abc123",
		AutoUpdateEnabled: true,
	}, nil)
	m.remote.EXPECT().GetAssetVersion(gomock.Any()).
		Return(models.AssetInfo{Hash: "abc123", Version: "v3"}, nil)
	m.state.EXPECT().SaveAssetState(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, st models.AssetVersionState) error {
			assert.Equal(t, "abc123", st.InstalledHash)
			assert.False(t, st.LastCheckedAt.IsZero())
			return nil
		})

	require.NoError(t, mgr.CheckForUpdate(context.Background()))
	assert.Equal(t, PhaseIdle, mgr.Phase())
}

func TestCheckForUpdate_DownloadsVerifiesAndInstalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mgr, m, storage := newTestManager(t, ctrl, config.Assets{AutoUpdate: true})
	m.connectivity(true, false)

	payload := []byte("new model weights")
	info := models.AssetInfo{
		Hash:      sha256Hex(payload),
		Version:   "v4",
		SizeBytes: int64(len(payload)),
	}

	m.state.EXPECT().GetAssetState(gomock.Any()).Return(models.AssetVersionState{
		InstalledHash:     "old-hash",
		AutoUpdateEnabled: true,
	}, nil)
	m.remote.EXPECT().GetAssetVersion(gomock.Any()).Return(info, nil)
	m.state.EXPECT().SaveAssetState(gomock.Any(), gomock.Any()).Return(nil) // timestamp
	m.remote.EXPECT().DownloadAsset(gomock.Any(), info, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.AssetInfo, dest string) error {
			assert.Equal(t, storage.AssetDir, filepath.Dir(dest))
			assert.Contains(t, filepath.Base(dest), "model-")
			return os.WriteFile(dest, payload, 0o644)
		})
	m.state.EXPECT().SaveAssetState(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, st models.AssetVersionState) error {
			assert.Equal(t, info.Hash, st.InstalledHash)
			return nil
		})

	require.NoError(t, mgr.CheckForUpdate(context.Background()))

	installed, err := os.ReadFile(filepath.Join(storage.AssetDir, storage.AssetFile))
	require.NoError(t, err)
	assert.Equal(t, payload, installed)

	// no temp leftovers
	leftovers, err := filepath.Glob(filepath.Join(storage.AssetDir, "model-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCheckForUpdate_CorruptedDownloadKeepsInstalledAsset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mgr, m, storage := newTestManager(t, ctrl, config.Assets{AutoUpdate: true})
	m.connectivity(true, false)

	previous := []byte("previous model")
	activePath := filepath.Join(storage.AssetDir, storage.AssetFile)
	require.NoError(t, os.WriteFile(activePath, previous, 0o644))

	m.state.EXPECT().GetAssetState(gomock.Any()).Return(models.AssetVersionState{
		InstalledHash:     sha256Hex(previous),
		AutoUpdateEnabled: true,
	}, nil)
	m.remote.EXPECT().GetAssetVersion(gomock.Any()).
		Return(models.AssetInfo{Hash: "expected-hash", Version: "v4"}, nil)
	m.state.EXPECT().SaveAssetState(gomock.Any(), gomock.Any()).Return(nil)
	m.remote.EXPECT().DownloadAsset(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.AssetInfo, dest string) error {
			return os.WriteFile(dest, []byte("truncated garbage"), 0o644)
		})

	err := mgr.CheckForUpdate(context.Background())
	require.ErrorIs(t, err, ErrIntegrity)

	installed, err := os.ReadFile(activePath)
	require.NoError(t, err)
	assert.Equal(t, previous, installed)

	leftovers, err := filepath.Glob(filepath.Join(storage.AssetDir, "model-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCheckForUpdate_AutoUpdateDisabledStopsAfterCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mgr, m, _ := newTestManager(t, ctrl, config.Assets{AutoUpdate: true})
	m.connectivity(true, false)

	m.state.EXPECT().GetAssetState(gomock.Any()).Return(models.AssetVersionState{
		InstalledHash:     "old-hash",
		AutoUpdateEnabled: false,
	}, nil)
	m.remote.EXPECT().GetAssetVersion(gomock.Any()).
		Return(models.AssetInfo{Hash: "new-hash", Version: "v4"}, nil)
	m.state.EXPECT().SaveAssetState(gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, mgr.CheckForUpdate(context.Background()))

	// the blocked update stays visible for a manual apply
	assert.Equal(t, PhaseUpdateAvailable, mgr.Phase())
	info, ok := mgr.Available()
	require.True(t, ok)
	assert.Equal(t, "new-hash", info.Hash)
	assert.Equal(t, "v4", info.Version)
}

func TestApplyUpdate_InstallsSurfacedUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mgr, m, storage := newTestManager(t, ctrl, config.Assets{AutoUpdate: true, AllowMetered: false})
	m.connectivity(true, true)

	payload := []byte("manually applied weights")
	info := models.AssetInfo{
		Hash:      sha256Hex(payload),
		Version:   "v5",
		SizeBytes: int64(len(payload)),
	}
	state := models.AssetVersionState{
		InstalledHash:     "old-hash",
		AutoUpdateEnabled: true,
	}

	m.state.EXPECT().GetAssetState(gomock.Any()).Return(state, nil)
	m.remote.EXPECT().GetAssetVersion(gomock.Any()).Return(info, nil)
	m.state.EXPECT().SaveAssetState(gomock.Any(), gomock.Any()).Return(nil) // timestamp

	// metered link defers the automatic download, but keeps it surfaced
	err := mgr.CheckForUpdate(context.Background())
	require.ErrorIs(t, err, ErrSkipped)
	_, ok := mgr.Available()
	require.True(t, ok)

	// the manual apply ignores the metered policy
	m.state.EXPECT().GetAssetState(gomock.Any()).Return(state, nil)
	m.remote.EXPECT().DownloadAsset(gomock.Any(), info, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.AssetInfo, dest string) error {
			return os.WriteFile(dest, payload, 0o644)
		})
	m.state.EXPECT().SaveAssetState(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, st models.AssetVersionState) error {
			assert.Equal(t, info.Hash, st.InstalledHash)
			return nil
		})

	require.NoError(t, mgr.ApplyUpdate(context.Background()))

	installed, err := os.ReadFile(filepath.Join(storage.AssetDir, storage.AssetFile))
	require.NoError(t, err)
	assert.Equal(t, payload, installed)

	_, ok = mgr.Available()
	assert.False(t, ok)
	assert.Equal(t, PhaseIdle, mgr.Phase())
}

func TestApplyUpdate_NoUpdatePending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mgr, _, _ := newTestManager(t, ctrl, config.Assets{AutoUpdate: true})

	err := mgr.ApplyUpdate(context.Background())
	require.ErrorIs(t, err, ErrNoUpdate)
}

func TestCheckForUpdate_MeteredConnectionDefersDownload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mgr, m, _ := newTestManager(t, ctrl, config.Assets{AutoUpdate: true, AllowMetered: false})
	m.connectivity(true, true)

	m.state.EXPECT().GetAssetState(gomock.Any()).Return(models.AssetVersionState{
		InstalledHash:     "old-hash",
		AutoUpdateEnabled: true,
	}, nil)
	m.remote.EXPECT().GetAssetVersion(gomock.Any()).
		Return(models.AssetInfo{Hash: "new-hash"}, nil)
	m.state.EXPECT().SaveAssetState(gomock.Any(), gomock.Any()).Return(nil)

	err := mgr.CheckForUpdate(context.Background())
	require.ErrorIs(t, err, ErrSkipped)
}

func TestCheckForUpdate_FailedProbeBacksOff(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mgr, m, _ := newTestManager(t, ctrl, config.Assets{AutoUpdate: true})
	m.connectivity(true, false)
	probeErr := errors.New("boom")

	m.state.EXPECT().GetAssetState(gomock.Any()).
		Return(models.AssetVersionState{AutoUpdateEnabled: true}, nil)
	m.remote.EXPECT().GetAssetVersion(gomock.Any()).
		Return(models.AssetInfo{}, probeErr)

	err := mgr.CheckForUpdate(context.Background())
	require.ErrorIs(t, err, probeErr)

	// the failure opens a backoff window, the next call is gated
	err = mgr.CheckForUpdate(context.Background())
	require.ErrorIs(t, err, ErrSkipped)
}

func TestCheckForUpdate_TransportFailureDiscardsTemp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mgr, m, storage := newTestManager(t, ctrl, config.Assets{AutoUpdate: true})
	m.connectivity(true, false)

	m.state.EXPECT().GetAssetState(gomock.Any()).Return(models.AssetVersionState{
		InstalledHash:     "old-hash",
		AutoUpdateEnabled: true,
	}, nil)
	m.remote.EXPECT().GetAssetVersion(gomock.Any()).
		Return(models.AssetInfo{Hash: "new-hash"}, nil)
	m.state.EXPECT().SaveAssetState(gomock.Any(), gomock.Any()).Return(nil)
	m.remote.EXPECT().DownloadAsset(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(adapter.ErrTransport)

	err := mgr.CheckForUpdate(context.Background())
	require.ErrorIs(t, err, adapter.ErrTransport)

	leftovers, err := filepath.Glob(filepath.Join(storage.AssetDir, "model-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}
