package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modic-health/sync-agent/internal/adapter"
	"github.com/modic-health/sync-agent/internal/logger"
	"github.com/modic-health/sync-agent/internal/store"
	"github.com/modic-health/sync-agent/models"
)

type merger struct {
	stores   *store.Storages
	remote   adapter.RemoteClient
	onChange func()
	logger   *logger.Logger
}

// NewMerger wires the remote-truth merge path. onChange is invoked after a
// pass that superseded queued drafts, so unsynced-count observers stay
// accurate; nil disables the notification.
func NewMerger(stores *store.Storages, remote adapter.RemoteClient, onChange func(), log *logger.Logger) Merger {
	if onChange == nil {
		onChange = func() {}
	}
	return &merger{
		stores:   stores,
		remote:   remote,
		onChange: onChange,
		logger:   log,
	}
}

// FetchAndMerge implements [Merger]. The cursor is persisted only after a
// fully applied page, so an interrupted pass replays that page instead of
// losing it.
func (m *merger) FetchAndMerge(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	cursor, err := m.stores.State.GetCursor(ctx)
	if err != nil {
		return 0, fmt.Errorf("load fetch cursor: %w", err)
	}

	applied := 0
	superseded := 0
	for {
		page, err := m.remote.FetchSince(ctx, cursor)
		if err != nil {
			return applied, fmt.Errorf("fetch changes since %q: %w", cursor, err)
		}
		if len(page.Records) == 0 {
			break
		}

		drafts, err := m.pendingDrafts(ctx)
		if err != nil {
			return applied, err
		}

		for _, remote := range page.Records {
			if err = m.applyRemote(ctx, remote); err != nil {
				return applied, err
			}
			applied++

			n, err := m.supersede(ctx, remote, drafts[remote.RecordID])
			if err != nil {
				return applied, err
			}
			superseded += n
		}

		if page.NextCursor == "" || page.NextCursor == cursor {
			break
		}
		cursor = page.NextCursor
		if err = m.stores.State.SaveCursor(ctx, cursor); err != nil {
			return applied, fmt.Errorf("save fetch cursor: %w", err)
		}
	}

	if superseded > 0 {
		m.onChange()
	}
	if applied > 0 {
		log.Info().
			Str("func", "merger.FetchAndMerge").
			Int("applied", applied).
			Int("superseded", superseded).
			Str("cursor", cursor).
			Msg("remote changes merged")
	}
	return applied, nil
}

// applyRemote upserts one remote record into the local cache. The remote
// timestamp wins; a strictly newer local record means an outbound draft is
// still queued and keeps the cache until it syncs.
func (m *merger) applyRemote(ctx context.Context, remote models.RemoteRecord) error {
	local, err := m.stores.Records.Get(ctx, remote.RecordID)
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
	case err != nil:
		return fmt.Errorf("load local record %s: %w", remote.RecordID, err)
	case local.UpdatedAt.After(remote.UpdatedAt):
		return nil
	}

	if err = m.stores.Records.Upsert(ctx, remote.AnalysisRecord); err != nil {
		return fmt.Errorf("apply remote record %s: %w", remote.RecordID, err)
	}
	return nil
}

// pendingDrafts indexes queued record upserts by record id.
func (m *merger) pendingDrafts(ctx context.Context) (map[string][]models.PendingOperation, error) {
	ops, err := m.stores.Operations.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending drafts: %w", err)
	}

	drafts := make(map[string][]models.PendingOperation)
	for _, op := range ops {
		if op.Kind != models.KindRecordUpsert {
			continue
		}
		var payload models.RecordUpsertPayload
		if err := json.Unmarshal(op.Payload, &payload); err != nil {
			continue
		}
		drafts[payload.Record.RecordID] = append(drafts[payload.Record.RecordID], op)
	}
	return drafts, nil
}

// supersede retires queued drafts that the remote record already covers.
// The draft passes through InFlight so the status machine sees a legal
// transition instead of a Pending→Synced shortcut.
func (m *merger) supersede(ctx context.Context, remote models.RemoteRecord, drafts []models.PendingOperation) (int, error) {
	retired := 0
	for _, op := range drafts {
		var payload models.RecordUpsertPayload
		if err := json.Unmarshal(op.Payload, &payload); err != nil {
			continue
		}
		if payload.Record.UpdatedAt.After(remote.UpdatedAt) {
			continue
		}

		if err := m.stores.Operations.MarkInFlight(ctx, op.ID); err != nil {
			return retired, fmt.Errorf("supersede draft %s: %w", op.ID, err)
		}
		if err := m.stores.Operations.MarkSynced(ctx, op.ID); err != nil {
			return retired, fmt.Errorf("supersede draft %s: %w", op.ID, err)
		}
		retired++

		logger.FromContext(ctx).Debug().
			Str("func", "merger.supersede").
			Str("operation_id", op.ID).
			Str("record_id", remote.RecordID).
			Msg("local draft superseded by remote record")
	}
	return retired, nil
}
