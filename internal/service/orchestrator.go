package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/modic-health/sync-agent/internal/adapter"
	"github.com/modic-health/sync-agent/internal/backoff"
	"github.com/modic-health/sync-agent/internal/config"
	"github.com/modic-health/sync-agent/internal/connectivity"
	"github.com/modic-health/sync-agent/internal/crypto"
	"github.com/modic-health/sync-agent/internal/logger"
	"github.com/modic-health/sync-agent/internal/metrics"
	"github.com/modic-health/sync-agent/internal/store"
	"github.com/modic-health/sync-agent/models"
)

type orchestrator struct {
	stores   *store.Storages
	remote   adapter.RemoteClient
	codec    crypto.Codec
	observer connectivity.Observer
	policy   backoff.Policy
	cfg      config.Sync
	logger   *logger.Logger

	group  singleflight.Group
	notify chan struct{}
}

// NewOrchestrator wires the drain loop over the durable queue. The backoff
// policy is derived from cfg so a delay can be recomputed from the persisted
// retry counter after a restart.
func NewOrchestrator(
	stores *store.Storages,
	remote adapter.RemoteClient,
	codec crypto.Codec,
	observer connectivity.Observer,
	cfg config.Sync,
	log *logger.Logger,
) Orchestrator {
	return newOrchestrator(stores, remote, codec, observer, cfg, log)
}

func newOrchestrator(
	stores *store.Storages,
	remote adapter.RemoteClient,
	codec crypto.Codec,
	observer connectivity.Observer,
	cfg config.Sync,
	log *logger.Logger,
) *orchestrator {
	return &orchestrator{
		stores:   stores,
		remote:   remote,
		codec:    codec,
		observer: observer,
		policy:   backoff.Policy{Initial: cfg.BackoffInitial, Max: cfg.BackoffMax},
		cfg:      cfg,
		logger:   log,
		notify:   make(chan struct{}, 1),
	}
}

// TriggerDrain implements [Orchestrator].
func (o *orchestrator) TriggerDrain(ctx context.Context, scope DrainScope) (DrainSummary, error) {
	v, err, _ := o.group.Do(scope.tag, func() (any, error) {
		return o.drain(ctx, scope)
	})
	summary, _ := v.(DrainSummary)
	return summary, err
}

// RetryOperation implements [Orchestrator].
func (o *orchestrator) RetryOperation(ctx context.Context, id string) error {
	if err := o.stores.Operations.RetryNow(ctx, id); err != nil {
		return fmt.Errorf("reschedule operation: %w", err)
	}
	o.noteChange()

	if _, err := o.TriggerDrain(ctx, ScopeOperation(id)); err != nil {
		return fmt.Errorf("drain retried operation: %w", err)
	}
	return nil
}

// ObserveUnsyncedCount implements [Orchestrator].
func (o *orchestrator) ObserveUnsyncedCount(ctx context.Context) <-chan int {
	out := make(chan int, 1)

	go func() {
		defer close(out)

		o.publishCount(ctx, out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-o.notify:
				o.publishCount(ctx, out)
			}
		}
	}()

	return out
}

func (o *orchestrator) publishCount(ctx context.Context, out chan<- int) {
	n, err := o.stores.Operations.CountUnsynced(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn().
			Str("func", "orchestrator.publishCount").
			Err(err).
			Msg("count unsynced operations")
		return
	}
	metrics.SetUnsynced(n)

	select {
	case out <- n:
	default:
	}
}

// noteChange wakes the unsynced-count observer. Non-blocking; a pending wake
// already covers any number of changes.
func (o *orchestrator) noteChange() {
	select {
	case o.notify <- struct{}{}:
	default:
	}
}

func (o *orchestrator) drain(ctx context.Context, scope DrainScope) (DrainSummary, error) {
	log := logger.FromContext(ctx)

	if !o.observer.State().Online {
		log.Debug().
			Str("func", "orchestrator.drain").
			Str("scope", scope.tag).
			Msg("offline, drain skipped")
		return DrainSummary{Skipped: true}, nil
	}

	ops, err := o.stores.Operations.ListEligible(ctx, o.selection(scope))
	if err != nil {
		return DrainSummary{}, fmt.Errorf("list eligible operations: %w", err)
	}
	if len(ops) == 0 {
		return DrainSummary{}, nil
	}

	summary := DrainSummary{Attempted: len(ops)}
	defer o.noteChange()

	// Record upserts batch together; everything else runs one by one in
	// queue order.
	var records []models.PendingOperation
	for _, op := range ops {
		if op.Kind == models.KindRecordUpsert {
			records = append(records, op)
			continue
		}
		o.processOne(ctx, op, &summary)
	}
	o.processRecords(ctx, records, &summary)

	log.Info().
		Str("func", "orchestrator.drain").
		Str("scope", scope.tag).
		Int("attempted", summary.Attempted).
		Int("synced", summary.Synced).
		Int("failed", summary.Failed).
		Msg("drain cycle finished")

	return summary, nil
}

func (o *orchestrator) selection(scope DrainScope) store.EligibleSelection {
	sel := store.EligibleSelection{Now: time.Now().UTC()}
	switch {
	case scope.id != "":
		sel.IDs = []string{scope.id}
		sel.IncludeTerminal = true
	case scope.tag == "data":
		sel.Kinds = []models.OperationKind{models.KindRecordUpsert, models.KindBlobUpload}
	}
	return sel
}

// processOne attempts a single non-record operation through the full
// InFlight transition and settles the outcome.
func (o *orchestrator) processOne(ctx context.Context, op models.PendingOperation, summary *DrainSummary) {
	if err := o.stores.Operations.MarkInFlight(ctx, op.ID); err != nil {
		logger.FromContext(ctx).Warn().
			Str("func", "orchestrator.processOne").
			Str("operation_id", op.ID).
			Err(err).
			Msg("mark in flight")
		return
	}
	o.settle(ctx, op, o.attempt(ctx, op), summary)
}

// processRecords tries the batch route first. Operations the batch does not
// confirm fall back to individual upserts, so a partially failing batch
// never blocks the records the server did accept.
func (o *orchestrator) processRecords(ctx context.Context, ops []models.PendingOperation, summary *DrainSummary) {
	if len(ops) == 0 {
		return
	}

	limit := o.cfg.BatchLimit
	if limit <= 0 {
		limit = len(ops)
	}

	for len(ops) > 0 {
		n := min(limit, len(ops))
		o.processRecordBatch(ctx, ops[:n], summary)
		ops = ops[n:]
	}
}

// batchMember pairs one InFlight operation with the record id the remote
// confirms it by. Two queued upserts for the same record are distinct members
// sharing a record id, and each one gets settled.
type batchMember struct {
	op       models.PendingOperation
	recordID string
}

func (o *orchestrator) processRecordBatch(ctx context.Context, ops []models.PendingOperation, summary *DrainSummary) {
	log := logger.FromContext(ctx)

	members := make([]batchMember, 0, len(ops))
	records := make([]models.AnalysisRecord, 0, len(ops))

	for _, op := range ops {
		var payload models.RecordUpsertPayload
		if err := json.Unmarshal(op.Payload, &payload); err != nil {
			o.processOne(ctx, op, summary)
			continue
		}
		if err := o.stores.Operations.MarkInFlight(ctx, op.ID); err != nil {
			log.Warn().
				Str("func", "orchestrator.processRecordBatch").
				Str("operation_id", op.ID).
				Err(err).
				Msg("mark in flight")
			continue
		}
		members = append(members, batchMember{op: op, recordID: payload.Record.RecordID})
		records = append(records, payload.Record)
	}
	if len(records) == 0 {
		return
	}

	result, err := o.remote.BatchUpsertRecords(ctx, records)
	if err != nil && !errors.Is(err, adapter.ErrBatchUnsupported) && !adapter.IsRetryable(err) {
		// A definitive batch rejection settles every member the same way.
		for _, m := range members {
			o.settle(ctx, m.op, err, summary)
		}
		return
	}
	if err != nil {
		// Batch route missing or unreachable: attempt each record alone.
		for _, m := range members {
			o.settle(ctx, m.op, o.attempt(ctx, m.op), summary)
		}
		return
	}

	confirmed := make(map[string]bool, len(result.SucceededIDs))
	for _, id := range result.SucceededIDs {
		confirmed[id] = true
	}
	// Unconfirmed members retry individually right here rather than going
	// back to the queue; the status machine has no InFlight to Pending
	// transition, and either way they are attempted again this cycle.
	for _, m := range members {
		if confirmed[m.recordID] {
			o.settle(ctx, m.op, nil, summary)
			continue
		}
		o.settle(ctx, m.op, o.attempt(ctx, m.op), summary)
	}
}

// attempt performs the remote effect of one operation. It never touches the
// operation's status; settle does that from the returned error.
func (o *orchestrator) attempt(ctx context.Context, op models.PendingOperation) error {
	switch op.Kind {
	case models.KindAccountCreation:
		return o.attemptAccountCreation(ctx, op)
	case models.KindRecordUpsert:
		return o.attemptRecordUpsert(ctx, op)
	case models.KindBlobUpload:
		return o.attemptBlobUpload(ctx, op)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOperationKind, op.Kind)
	}
}

func (o *orchestrator) attemptAccountCreation(ctx context.Context, op models.PendingOperation) error {
	var payload models.AccountCreationPayload
	if err := json.Unmarshal(op.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	// The credential plaintext exists only for the duration of this call.
	credential, err := o.codec.Decrypt(payload.EncryptedCredential)
	if err != nil {
		return fmt.Errorf("decrypt credential: %w", err)
	}

	result, err := o.remote.CreateAccount(ctx, models.AccountCreationRequest{
		Email:       payload.Email,
		Credential:  string(credential),
		ProfileName: payload.ProfileName,
	})
	if errors.Is(err, adapter.ErrAlreadyExists) {
		// The identity exists, which is the end state this operation
		// wanted.
		return nil
	}
	if err != nil {
		metrics.IncRemoteCall("create_account", "error")
		return fmt.Errorf("create account: %w", err)
	}

	metrics.IncRemoteCall("create_account", "ok")
	logger.FromContext(ctx).Info().
		Str("func", "orchestrator.attemptAccountCreation").
		Int64("user_id", result.UserID).
		Msg("account created")
	return nil
}

func (o *orchestrator) attemptRecordUpsert(ctx context.Context, op models.PendingOperation) error {
	var payload models.RecordUpsertPayload
	if err := json.Unmarshal(op.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	if err := o.remote.UpsertRecord(ctx, payload.Record); err != nil {
		metrics.IncRemoteCall("upsert_record", "error")
		return fmt.Errorf("upsert record %s: %w", payload.Record.RecordID, err)
	}
	metrics.IncRemoteCall("upsert_record", "ok")
	return nil
}

// attemptBlobUpload uploads the image bytes first, patches the returned URL
// into the owning record locally, then pushes the record remotely. Only
// after all three does the operation count as synced, so a record never
// reaches the server pointing at a blob that is not there.
func (o *orchestrator) attemptBlobUpload(ctx context.Context, op models.PendingOperation) error {
	var payload models.BlobUploadPayload
	if err := json.Unmarshal(op.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	url, err := o.remote.UploadBlob(ctx, payload)
	if err != nil {
		metrics.IncRemoteCall("upload_blob", "error")
		return fmt.Errorf("upload blob for record %s: %w", payload.RecordID, err)
	}
	metrics.IncRemoteCall("upload_blob", "ok")

	if err = o.stores.Records.SetImageURL(ctx, payload.RecordID, payload.Slot, url); err != nil {
		return fmt.Errorf("patch image url for record %s: %w", payload.RecordID, err)
	}

	rec, err := o.stores.Records.Get(ctx, payload.RecordID)
	if err != nil {
		return fmt.Errorf("load record %s after blob upload: %w", payload.RecordID, err)
	}
	if err = o.remote.UpsertRecord(ctx, rec); err != nil {
		metrics.IncRemoteCall("upsert_record", "error")
		return fmt.Errorf("upsert record %s after blob upload: %w", payload.RecordID, err)
	}
	metrics.IncRemoteCall("upsert_record", "ok")
	return nil
}

// settle moves an InFlight operation to its terminal state for this cycle.
func (o *orchestrator) settle(ctx context.Context, op models.PendingOperation, attemptErr error, summary *DrainSummary) {
	log := logger.FromContext(ctx)

	if attemptErr == nil {
		if err := o.stores.Operations.MarkSynced(ctx, op.ID); err != nil {
			log.Error().
				Str("func", "orchestrator.settle").
				Str("operation_id", op.ID).
				Err(err).
				Msg("mark synced")
			return
		}
		summary.Synced++
		metrics.IncDrain(string(op.Kind), "synced")
		return
	}

	var nextAttempt *time.Time
	outcome := "terminal"
	if o.retryable(op, attemptErr) {
		at := time.Now().UTC().Add(o.policy.NextDelay(op.RetryCount))
		nextAttempt = &at
		outcome = "retry"
	}

	if err := o.stores.Operations.MarkFailed(ctx, op.ID, attemptErr.Error(), nextAttempt); err != nil {
		log.Error().
			Str("func", "orchestrator.settle").
			Str("operation_id", op.ID).
			Err(err).
			Msg("mark failed")
		return
	}
	summary.Failed++
	metrics.IncDrain(string(op.Kind), outcome)

	log.Warn().
		Str("func", "orchestrator.settle").
		Str("operation_id", op.ID).
		Str("kind", string(op.Kind)).
		Str("outcome", outcome).
		Err(attemptErr).
		Msg("operation attempt failed")
}

// retryable decides whether a failed attempt gets an automatic retry.
// Application rejections, undecryptable payloads and malformed stored data
// are terminal; transport failures retry with backoff until the cap.
func (o *orchestrator) retryable(op models.PendingOperation, err error) bool {
	var rejection *adapter.RejectionError
	switch {
	case errors.Is(err, crypto.ErrDecryption),
		errors.Is(err, ErrBadPayload),
		errors.Is(err, ErrUnknownOperationKind),
		errors.Is(err, adapter.ErrUnauthorized),
		errors.Is(err, adapter.ErrNotFound),
		errors.As(err, &rejection):
		return false
	}

	if o.cfg.MaxAutoRetries > 0 && op.RetryCount >= o.cfg.MaxAutoRetries {
		return false
	}
	return true
}
