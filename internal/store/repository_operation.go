package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/modic-health/sync-agent/internal/logger"
	"github.com/modic-health/sync-agent/models"
)

type operationRepository struct {
	*DB
	logger *logger.Logger
}

func NewOperationRepository(db *DB, logger *logger.Logger) OperationStore {
	return &operationRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *operationRepository) Enqueue(ctx context.Context, op *models.PendingOperation) (string, error) {
	log := logger.FromContext(ctx)

	if op.ID == "" {
		op.ID = newOperationID()
	}
	if op.Status == "" {
		op.Status = models.StatusPending
	}
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now().UTC()
	}

	_, err := r.DB.ExecContext(ctx, insertOperation,
		op.ID,
		op.Kind,
		op.Payload,
		op.Status,
		op.RetryCount,
		op.LastError,
		op.CreatedAt,
		op.NextAttemptAt,
	)
	if err != nil {
		log.Err(err).
			Str("func", "operationRepository.Enqueue").
			Str("operation_id", op.ID).
			Str("kind", string(op.Kind)).
			Msg("failed to insert pending operation")
		return "", fmt.Errorf("failed to enqueue operation (id=%s): %w", op.ID, err)
	}

	return op.ID, nil
}

func (r *operationRepository) Get(ctx context.Context, id string) (models.PendingOperation, error) {
	log := logger.FromContext(ctx)

	var op models.PendingOperation
	row := r.DB.QueryRowContext(ctx, getOperation, id)
	if err := scanOperation(row.Scan, &op); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PendingOperation{}, ErrOperationNotFound
		}
		log.Err(err).
			Str("func", "operationRepository.Get").
			Str("operation_id", id).
			Msg("failed to scan operation row")
		return models.PendingOperation{}, fmt.Errorf("failed to scan operation row: %w", err)
	}

	return op, nil
}

func (r *operationRepository) ListByStatus(ctx context.Context, status models.OperationStatus) ([]models.PendingOperation, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, getOperationsByStatus, status)
	if err != nil {
		log.Err(err).
			Str("func", "operationRepository.ListByStatus").
			Str("status", string(status)).
			Msg("failed to execute query for operations by status")
		return nil, fmt.Errorf("failed to query operations by status: %w", err)
	}
	defer rows.Close()

	return collectOperations(rows)
}

// ListEligible builds its selection dynamically: scope may restrict kinds or
// ids, and failed operations are only picked up once their backoff window
// has elapsed (or unconditionally for a manual retry).
func (r *operationRepository) ListEligible(ctx context.Context, sel EligibleSelection) ([]models.PendingOperation, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildEligibleQuery(sel)
	if err != nil {
		log.Err(err).
			Str("func", "operationRepository.ListEligible").
			Msg("failed to build eligible operations query")
		return nil, fmt.Errorf("failed to build eligible operations query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "operationRepository.ListEligible").
			Msg("failed to execute query for eligible operations")
		return nil, fmt.Errorf("failed to query eligible operations: %w", err)
	}
	defer rows.Close()

	return collectOperations(rows)
}

func (r *operationRepository) MarkInFlight(ctx context.Context, id string) error {
	return r.transition(ctx, "MarkInFlight", markOperationInFlight, id)
}

func (r *operationRepository) MarkSynced(ctx context.Context, id string) error {
	return r.transition(ctx, "MarkSynced", markOperationSynced, id)
}

func (r *operationRepository) MarkFailed(ctx context.Context, id string, cause string, nextAttemptAt *time.Time) error {
	log := logger.FromContext(ctx)

	result, err := r.DB.ExecContext(ctx, markOperationFailed, cause, nextAttemptAt, id)
	if err != nil {
		log.Err(err).
			Str("func", "operationRepository.MarkFailed").
			Str("operation_id", id).
			Msg("failed to execute failed-status update")
		return fmt.Errorf("failed to mark operation failed (id=%s): %w", id, err)
	}

	return r.checkTransition(ctx, "MarkFailed", id, result)
}

func (r *operationRepository) RetryNow(ctx context.Context, id string) error {
	return r.transition(ctx, "RetryNow", retryOperationNow, id)
}

func (r *operationRepository) RecoverInFlight(ctx context.Context) (int64, error) {
	log := logger.FromContext(ctx)

	result, err := r.DB.ExecContext(ctx, recoverInFlightOperations)
	if err != nil {
		log.Err(err).
			Str("func", "operationRepository.RecoverInFlight").
			Msg("failed to recover in-flight operations")
		return 0, fmt.Errorf("failed to recover in-flight operations: %w", err)
	}

	recovered, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get recovered row count: %w", err)
	}
	return recovered, nil
}

func (r *operationRepository) Purge(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	if _, err := r.DB.ExecContext(ctx, purgeOperation, id); err != nil {
		log.Err(err).
			Str("func", "operationRepository.Purge").
			Str("operation_id", id).
			Msg("failed to purge operation")
		return fmt.Errorf("failed to purge operation (id=%s): %w", id, err)
	}

	return nil
}

func (r *operationRepository) PurgeSynced(ctx context.Context, olderThan time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	result, err := r.DB.ExecContext(ctx, purgeSyncedOperations, olderThan)
	if err != nil {
		log.Err(err).
			Str("func", "operationRepository.PurgeSynced").
			Msg("failed to purge synced operations")
		return 0, fmt.Errorf("failed to purge synced operations: %w", err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get purged row count: %w", err)
	}
	return purged, nil
}

func (r *operationRepository) CountUnsynced(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	var count int
	if err := r.DB.QueryRowContext(ctx, countUnsyncedOperations).Scan(&count); err != nil {
		log.Err(err).
			Str("func", "operationRepository.CountUnsynced").
			Msg("failed to count unsynced operations")
		return 0, fmt.Errorf("failed to count unsynced operations: %w", err)
	}

	return count, nil
}

// transition runs one of the guarded single-row status updates and reports
// whether the guard matched.
func (r *operationRepository) transition(ctx context.Context, name, query, id string) error {
	log := logger.FromContext(ctx)

	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		log.Err(err).
			Str("func", "operationRepository."+name).
			Str("operation_id", id).
			Msg("failed to execute status transition")
		return fmt.Errorf("failed to update operation status (id=%s): %w", id, err)
	}

	return r.checkTransition(ctx, name, id, result)
}

func (r *operationRepository) checkTransition(ctx context.Context, name, id string, result sql.Result) error {
	log := logger.FromContext(ctx)

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected (id=%s): %w", id, err)
	}
	if affected == 0 {
		// either the id is unknown or the operation is in a state the
		// transition is not allowed from; disambiguate for the caller
		if _, getErr := r.Get(ctx, id); errors.Is(getErr, ErrOperationNotFound) {
			return fmt.Errorf("%w (id=%s)", ErrOperationNotFound, id)
		}
		log.Warn().
			Str("func", "operationRepository."+name).
			Str("operation_id", id).
			Msg("status transition guard did not match current status")
		return fmt.Errorf("%w: %s (id=%s)", ErrInvalidTransition, name, id)
	}

	return nil
}

func buildEligibleQuery(sel EligibleSelection) (string, []any, error) {
	now := sel.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	failedCond := sq.Sqlizer(sq.And{
		sq.Eq{"status": models.StatusFailed},
		sq.NotEq{"next_attempt_at": nil},
		sq.LtOrEq{"next_attempt_at": now},
	})
	if sel.IncludeTerminal {
		failedCond = sq.Eq{"status": models.StatusFailed}
	}

	q := sq.Select(
		"id", "kind", "payload", "status",
		"retry_count", "last_error", "created_at", "next_attempt_at",
	).
		From("operations").
		Where(sq.Or{sq.Eq{"status": models.StatusPending}, failedCond}).
		OrderBy("created_at ASC")

	if len(sel.Kinds) > 0 {
		q = q.Where(sq.Eq{"kind": sel.Kinds})
	}
	if len(sel.IDs) > 0 {
		q = q.Where(sq.Eq{"id": sel.IDs})
	}
	if sel.Limit > 0 {
		q = q.Limit(sel.Limit)
	}

	return q.ToSql()
}

func collectOperations(rows *sql.Rows) ([]models.PendingOperation, error) {
	var ops []models.PendingOperation

	for rows.Next() {
		var op models.PendingOperation
		if err := scanOperation(rows.Scan, &op); err != nil {
			return nil, fmt.Errorf("failed to scan operation row: %w", err)
		}
		ops = append(ops, op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operation rows: %w", err)
	}

	return ops, nil
}

func scanOperation(scan func(dest ...any) error, op *models.PendingOperation) error {
	return scan(
		&op.ID,
		&op.Kind,
		&op.Payload,
		&op.Status,
		&op.RetryCount,
		&op.LastError,
		&op.CreatedAt,
		&op.NextAttemptAt,
	)
}

func newOperationID() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return v7.String()
}
