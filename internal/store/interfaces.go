package store

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

import (
	"context"
	"time"

	"github.com/modic-health/sync-agent/models"
)

// EligibleSelection narrows which queued operations a drain cycle picks up.
// The zero value selects every operation whose status and backoff window
// allow an attempt right now.
type EligibleSelection struct {
	// Kinds restricts selection to the given kinds; nil means all kinds.
	Kinds []models.OperationKind

	// IDs restricts selection to specific operations (single-operation
	// drains); nil means all.
	IDs []string

	// Now is the clock used against next_attempt_at backoff windows.
	Now time.Time

	// IncludeTerminal also selects failed operations with no scheduled
	// retry. Set only for user-initiated retries.
	IncludeTerminal bool

	// Limit caps the result set; zero means no cap.
	Limit uint64
}

// OperationStore is the durable mutation queue. Enqueue completes before the
// producing use-case reports success; all status changes are atomic
// single-row updates guarded by the current status, so an illegal transition
// surfaces as [ErrInvalidTransition] instead of silently racing.
type OperationStore interface {
	// Enqueue persists op and returns its id, generating one when empty.
	Enqueue(ctx context.Context, op *models.PendingOperation) (string, error)

	Get(ctx context.Context, id string) (models.PendingOperation, error)

	ListByStatus(ctx context.Context, status models.OperationStatus) ([]models.PendingOperation, error)

	// ListEligible returns operations ready for a drain attempt, oldest
	// first: Pending ones, plus Failed ones whose backoff window elapsed.
	ListEligible(ctx context.Context, sel EligibleSelection) ([]models.PendingOperation, error)

	// MarkInFlight moves a Pending or Failed operation to InFlight.
	MarkInFlight(ctx context.Context, id string) error

	// MarkSynced moves an InFlight operation to Synced and clears its
	// error and retry schedule.
	MarkSynced(ctx context.Context, id string) error

	// MarkFailed moves an InFlight operation to Failed, records the
	// diagnostic, bumps retry_count, and schedules the next attempt.
	// A nil nextAttemptAt marks the failure terminal (manual retry only).
	MarkFailed(ctx context.Context, id string, cause string, nextAttemptAt *time.Time) error

	// RetryNow moves a Failed operation back to Pending, making it
	// immediately eligible regardless of any backoff window.
	RetryNow(ctx context.Context, id string) error

	// RecoverInFlight returns every InFlight operation to Pending and
	// reports how many were requeued. Runs once at startup before any
	// drain: an InFlight row at that point belongs to a process that died
	// mid-attempt and would otherwise never be selected again.
	RecoverInFlight(ctx context.Context) (int64, error)

	Purge(ctx context.Context, id string) error

	// PurgeSynced removes Synced operations older than the audit grace
	// window and reports how many were deleted.
	PurgeSynced(ctx context.Context, olderThan time.Time) (int64, error)

	// CountUnsynced counts operations not yet Synced (Pending, InFlight
	// and Failed).
	CountUnsynced(ctx context.Context) (int, error)
}

// RecordStore is the local cache of analysis records, fed both by local
// intent and by the remote-truth merge path.
type RecordStore interface {
	Upsert(ctx context.Context, rec models.AnalysisRecord) error
	Get(ctx context.Context, recordID string) (models.AnalysisRecord, error)

	// SetImageURL patches one image slot in place after a blob upload
	// returns, without duplicating the record.
	SetImageURL(ctx context.Context, recordID, slot, url string) error
}

// StateStore persists the asset version state and the remote fetch cursor,
// each a single row.
type StateStore interface {
	GetAssetState(ctx context.Context) (models.AssetVersionState, error)
	SaveAssetState(ctx context.Context, st models.AssetVersionState) error

	GetCursor(ctx context.Context) (string, error)
	SaveCursor(ctx context.Context, cursor string) error
}
