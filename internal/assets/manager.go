// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/modic-health/sync-agent/internal/adapter"
	"github.com/modic-health/sync-agent/internal/backoff"
	"github.com/modic-health/sync-agent/internal/config"
	"github.com/modic-health/sync-agent/internal/connectivity"
	"github.com/modic-health/sync-agent/internal/logger"
	"github.com/modic-health/sync-agent/internal/metrics"
	"github.com/modic-health/sync-agent/internal/store"
	"github.com/modic-health/sync-agent/models"
)

type manager struct {
	remote   adapter.RemoteClient
	state    store.StateStore
	observer connectivity.Observer
	policy   backoff.Policy
	cfg      config.Assets
	storage  config.Storage
	logger   *logger.Logger

	mu        sync.Mutex
	phase     Phase
	available *models.AssetInfo
	declared  int64
	tempPath  string
	failures  int
	nextCheck time.Time
	running   bool
}

// NewManager wires the asset updater. The temp download directory and the
// active asset path both live under storage.AssetDir, so the install rename
// never crosses a filesystem boundary.
func NewManager(
	remote adapter.RemoteClient,
	state store.StateStore,
	observer connectivity.Observer,
	cfg config.Assets,
	storage config.Storage,
	syncCfg config.Sync,
	log *logger.Logger,
) Manager {
	return &manager{
		remote:   remote,
		state:    state,
		observer: observer,
		policy:   backoff.Policy{Initial: syncCfg.BackoffInitial, Max: syncCfg.BackoffMax},
		cfg:      cfg,
		storage:  storage,
		logger:   log,
		phase:    PhaseIdle,
	}
}

// CheckForUpdate implements [Manager].
func (m *manager) CheckForUpdate(ctx context.Context) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.finish()

	if until, gated := m.backoffGate(); gated {
		return fmt.Errorf("%w: backing off until %s", ErrSkipped, until.Format(time.RFC3339))
	}
	if !m.observer.State().Online {
		return fmt.Errorf("%w: offline", ErrSkipped)
	}

	st, err := m.state.GetAssetState(ctx)
	if err != nil {
		return fmt.Errorf("load asset state: %w", err)
	}
	now := time.Now().UTC()
	if m.cfg.MinCheckInterval > 0 && !st.LastCheckedAt.IsZero() &&
		now.Sub(st.LastCheckedAt) < m.cfg.MinCheckInterval {
		return fmt.Errorf("%w: checked %s ago", ErrSkipped, now.Sub(st.LastCheckedAt).Round(time.Second))
	}

	m.setPhase(PhaseChecking)
	info, err := m.remote.GetAssetVersion(ctx)
	if err != nil {
		m.noteCheckFailure(now)
		return fmt.Errorf("fetch asset version: %w", err)
	}
	m.clearFailures()

	st.LastCheckedAt = now
	if err = m.state.SaveAssetState(ctx, st); err != nil {
		return fmt.Errorf("save asset state: %w", err)
	}

	if info.Hash == "" || info.Hash == st.InstalledHash {
		m.setAvailable(nil)
		return nil
	}
	m.setAvailable(&info)

	log := logger.FromContext(ctx)
	log.Info().
		Str("func", "manager.CheckForUpdate").
		Str("installed_hash", st.InstalledHash).
		Str("remote_hash", info.Hash).
		Str("version", info.Version).
		Msg("asset update available")

	// The blocked download stays surfaced via Available for a manual apply.
	if !st.AutoUpdateEnabled || !m.cfg.AutoUpdate {
		return nil
	}
	if conn := m.observer.State(); conn.Metered && !m.cfg.AllowMetered {
		return fmt.Errorf("%w: metered connection", ErrSkipped)
	}

	if err = m.update(ctx, st, info); err != nil {
		m.noteCheckFailure(now)
		return err
	}
	return nil
}

// Available implements [Manager].
func (m *manager) Available() (models.AssetInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.available == nil {
		return models.AssetInfo{}, false
	}
	return *m.available, true
}

// ApplyUpdate implements [Manager].
func (m *manager) ApplyUpdate(ctx context.Context) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.finish()

	info, ok := m.Available()
	if !ok {
		return ErrNoUpdate
	}
	if !m.observer.State().Online {
		return fmt.Errorf("%w: offline", ErrSkipped)
	}

	st, err := m.state.GetAssetState(ctx)
	if err != nil {
		return fmt.Errorf("load asset state: %w", err)
	}
	return m.update(ctx, st, info)
}

// Phase implements [Manager].
func (m *manager) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Progress implements [Manager].
func (m *manager) Progress() float64 {
	m.mu.Lock()
	declared, tempPath := m.declared, m.tempPath
	m.mu.Unlock()

	if tempPath == "" {
		return 0
	}
	if declared <= 0 {
		return -1
	}
	fi, err := os.Stat(tempPath)
	if err != nil {
		return 0
	}
	return min(float64(fi.Size())/float64(declared), 1)
}

// update downloads, verifies and installs one announced asset version.
func (m *manager) update(ctx context.Context, st models.AssetVersionState, info models.AssetInfo) error {
	log := logger.FromContext(ctx)

	if err := os.MkdirAll(m.storage.AssetDir, 0o755); err != nil {
		return fmt.Errorf("create asset dir: %w", err)
	}

	temp, err := os.CreateTemp(m.storage.AssetDir, "model-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp asset file: %w", err)
	}
	tempPath := temp.Name()
	_ = temp.Close()
	defer func() {
		// On any failure the temp file goes away and the installed
		// asset stays untouched.
		_ = os.Remove(tempPath)
		m.mu.Lock()
		m.tempPath, m.declared = "", 0
		m.mu.Unlock()
	}()

	m.mu.Lock()
	m.phase = PhaseDownloading
	m.tempPath, m.declared = tempPath, info.SizeBytes
	m.mu.Unlock()

	if err = m.remote.DownloadAsset(ctx, info, tempPath); err != nil {
		return fmt.Errorf("download asset: %w", err)
	}

	m.setPhase(PhaseVerifying)
	if err = verifySHA256(tempPath, info.Hash); err != nil {
		return err
	}

	m.setPhase(PhaseInstalling)
	activePath := filepath.Join(m.storage.AssetDir, m.storage.AssetFile)
	if err = os.Rename(tempPath, activePath); err != nil {
		return fmt.Errorf("install asset: %w", err)
	}

	st.InstalledHash = info.Hash
	if err = m.state.SaveAssetState(ctx, st); err != nil {
		return fmt.Errorf("save installed asset state: %w", err)
	}
	m.setAvailable(nil)

	metrics.IncAssetInstall()
	log.Info().
		Str("func", "manager.update").
		Str("hash", info.Hash).
		Str("version", info.Version).
		Str("path", activePath).
		Msg("asset installed")
	return nil
}

func (m *manager) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("%w: update already running", ErrSkipped)
	}
	m.running = true
	return nil
}

// backoffGate reports whether repeated check failures opened a backoff
// window that is still running. A manual apply does not consult it.
func (m *manager) backoffGate() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.nextCheck.IsZero() && time.Now().UTC().Before(m.nextCheck) {
		return m.nextCheck, true
	}
	return time.Time{}, false
}

func (m *manager) finish() {
	m.mu.Lock()
	m.running = false
	if m.available != nil {
		m.phase = PhaseUpdateAvailable
	} else {
		m.phase = PhaseIdle
	}
	m.mu.Unlock()
}

func (m *manager) setAvailable(info *models.AssetInfo) {
	m.mu.Lock()
	m.available = info
	m.mu.Unlock()
}

func (m *manager) setPhase(p Phase) {
	m.mu.Lock()
	m.phase = p
	m.mu.Unlock()
}

func (m *manager) noteCheckFailure(now time.Time) {
	metrics.IncAssetCheckFailure()

	m.mu.Lock()
	m.failures++
	m.nextCheck = now.Add(m.policy.NextDelay(m.failures - 1))
	m.mu.Unlock()
}

func (m *manager) clearFailures() {
	m.mu.Lock()
	m.failures = 0
	m.nextCheck = time.Time{}
	m.mu.Unlock()
}

func verifySHA256(path, want string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open downloaded asset: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err = io.Copy(h, f); err != nil {
		return fmt.Errorf("hash downloaded asset: %w", err)
	}

	got := hex.EncodeToString(h.Sum(nil))
	if got != want {
		return fmt.Errorf("%w: got %s, want %s", ErrIntegrity, got, want)
	}
	return nil
}
