package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/modic-health/sync-agent/internal/adapter"
	"github.com/modic-health/sync-agent/internal/logger"
	"github.com/modic-health/sync-agent/internal/mock"
	"github.com/modic-health/sync-agent/internal/store"
	"github.com/modic-health/sync-agent/models"
)

type mergerMocks struct {
	ops     *mock.MockOperationStore
	records *mock.MockRecordStore
	state   *mock.MockStateStore
	remote  *mock.MockRemoteClient
}

func newTestMerger(t *testing.T, ctrl *gomock.Controller, onChange func()) (Merger, mergerMocks) {
	t.Helper()

	m := mergerMocks{
		ops:     mock.NewMockOperationStore(ctrl),
		records: mock.NewMockRecordStore(ctrl),
		state:   mock.NewMockStateStore(ctrl),
		remote:  mock.NewMockRemoteClient(ctrl),
	}
	stores := &store.Storages{Operations: m.ops, Records: m.records, State: m.state}

	return NewMerger(stores, m.remote, onChange, logger.Nop()), m
}

func remoteRecord(recordID, cursor string, updatedAt time.Time) models.RemoteRecord {
	return models.RemoteRecord{
		AnalysisRecord: models.AnalysisRecord{
			RecordID:  recordID,
			Label:     "modic-2",
			UpdatedAt: updatedAt,
		},
		Cursor: cursor,
	}
}

func draftOp(t *testing.T, id, recordID string, updatedAt time.Time) models.PendingOperation {
	t.Helper()
	raw, err := json.Marshal(models.RecordUpsertPayload{
		Record: models.AnalysisRecord{RecordID: recordID, UpdatedAt: updatedAt},
	})
	require.NoError(t, err)
	return models.PendingOperation{
		ID:      id,
		Kind:    models.KindRecordUpsert,
		Payload: raw,
		Status:  models.StatusPending,
	}
}

func TestFetchAndMerge_AppliesRemoteRecordsAndAdvancesCursor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	merger, m := newTestMerger(t, ctrl, nil)
	ctx := context.Background()
	now := time.Now().UTC()

	m.state.EXPECT().GetCursor(ctx).Return("", nil)
	m.remote.EXPECT().FetchSince(ctx, "").Return(models.FetchResult{
		Records: []models.RemoteRecord{
			remoteRecord("rec-a", "c1", now),
			remoteRecord("rec-b", "c2", now),
		},
		NextCursor: "c2",
	}, nil)
	m.ops.EXPECT().ListByStatus(ctx, models.StatusPending).Return(nil, nil)
	m.records.EXPECT().Get(ctx, "rec-a").Return(models.AnalysisRecord{}, store.ErrRecordNotFound)
	m.records.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)
	m.records.EXPECT().Get(ctx, "rec-b").Return(models.AnalysisRecord{}, store.ErrRecordNotFound)
	m.records.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)
	m.state.EXPECT().SaveCursor(ctx, "c2").Return(nil)
	m.remote.EXPECT().FetchSince(ctx, "c2").Return(models.FetchResult{NextCursor: "c2"}, nil)

	applied, err := merger.FetchAndMerge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
}

func TestFetchAndMerge_SupersedesOlderDraft(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	changed := false
	merger, m := newTestMerger(t, ctrl, func() { changed = true })
	ctx := context.Background()
	now := time.Now().UTC()
	draft := draftOp(t, "op-1", "rec-a", now.Add(-time.Hour))

	m.state.EXPECT().GetCursor(ctx).Return("c0", nil)
	m.remote.EXPECT().FetchSince(ctx, "c0").Return(models.FetchResult{
		Records:    []models.RemoteRecord{remoteRecord("rec-a", "c1", now)},
		NextCursor: "c1",
	}, nil)
	m.ops.EXPECT().ListByStatus(ctx, models.StatusPending).
		Return([]models.PendingOperation{draft}, nil)
	m.records.EXPECT().Get(ctx, "rec-a").Return(models.AnalysisRecord{}, store.ErrRecordNotFound)
	m.records.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)
	gomock.InOrder(
		m.ops.EXPECT().MarkInFlight(ctx, "op-1").Return(nil),
		m.ops.EXPECT().MarkSynced(ctx, "op-1").Return(nil),
	)
	m.state.EXPECT().SaveCursor(ctx, "c1").Return(nil)
	m.remote.EXPECT().FetchSince(ctx, "c1").Return(models.FetchResult{NextCursor: "c1"}, nil)

	applied, err := merger.FetchAndMerge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.True(t, changed)
}

func TestFetchAndMerge_NewerDraftStaysQueued(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	merger, m := newTestMerger(t, ctrl, nil)
	ctx := context.Background()
	now := time.Now().UTC()
	draft := draftOp(t, "op-1", "rec-a", now.Add(time.Hour))
	newerLocal := models.AnalysisRecord{RecordID: "rec-a", UpdatedAt: now.Add(time.Hour)}

	m.state.EXPECT().GetCursor(ctx).Return("c0", nil)
	m.remote.EXPECT().FetchSince(ctx, "c0").Return(models.FetchResult{
		Records:    []models.RemoteRecord{remoteRecord("rec-a", "c1", now)},
		NextCursor: "c1",
	}, nil)
	m.ops.EXPECT().ListByStatus(ctx, models.StatusPending).
		Return([]models.PendingOperation{draft}, nil)
	// The newer local record keeps the cache, and the draft stays pending.
	m.records.EXPECT().Get(ctx, "rec-a").Return(newerLocal, nil)
	m.state.EXPECT().SaveCursor(ctx, "c1").Return(nil)
	m.remote.EXPECT().FetchSince(ctx, "c1").Return(models.FetchResult{NextCursor: "c1"}, nil)

	applied, err := merger.FetchAndMerge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
}

func TestFetchAndMerge_TransportFailureKeepsCursor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	merger, m := newTestMerger(t, ctrl, nil)
	ctx := context.Background()

	m.state.EXPECT().GetCursor(ctx).Return("c0", nil)
	m.remote.EXPECT().FetchSince(ctx, "c0").
		Return(models.FetchResult{}, adapter.ErrTransport)

	applied, err := merger.FetchAndMerge(ctx)
	require.ErrorIs(t, err, adapter.ErrTransport)
	assert.Zero(t, applied)
}
