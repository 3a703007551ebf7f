package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modic-health/sync-agent/internal/config"
	"github.com/modic-health/sync-agent/internal/logger"
	"github.com/modic-health/sync-agent/models"
)

func openTestSQLite(t *testing.T, dsn string) *DB {
	t.Helper()

	db, err := NewConnectSQLite(testContext(), config.DB{DSN: dsn}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// A fresh database file must come up with the schema applied; the very first
// enqueue has nothing else to create the tables.
func TestNewConnectSQLite_FreshInstallIsUsable(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "agent.db")
	db := openTestSQLite(t, dsn)
	repo := NewOperationRepository(db, logger.Nop())

	ctx := testContext()
	id, err := repo.Enqueue(ctx, &models.PendingOperation{
		Kind:    models.KindRecordUpsert,
		Payload: []byte(`{"record":{"record_id":"rec-1"}}`),
	})
	require.NoError(t, err)

	op, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, op.Status)
}

func TestNewConnectSQLite_MigrateIsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "agent.db")

	first := openTestSQLite(t, dsn)
	require.NoError(t, first.Close())

	second := openTestSQLite(t, dsn)
	_, err := NewOperationRepository(second, logger.Nop()).CountUnsynced(testContext())
	require.NoError(t, err)
}

// An operation left InFlight by a crashed process must become eligible again
// on the next start instead of being stuck forever.
func TestRecoverInFlight_RequeuesInterruptedOperation(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "agent.db")
	ctx := testContext()

	db := openTestSQLite(t, dsn)
	repo := NewOperationRepository(db, logger.Nop())

	id, err := repo.Enqueue(ctx, &models.PendingOperation{
		Kind:    models.KindRecordUpsert,
		Payload: []byte(`{"record":{"record_id":"rec-1"}}`),
	})
	require.NoError(t, err)
	require.NoError(t, repo.MarkInFlight(ctx, id))

	// simulate the process dying mid-attempt
	require.NoError(t, db.Close())

	reopened := openTestSQLite(t, dsn)
	repo = NewOperationRepository(reopened, logger.Nop())

	eligible, err := repo.ListEligible(ctx, EligibleSelection{Now: time.Now().UTC()})
	require.NoError(t, err)
	require.Empty(t, eligible, "in-flight operation must not be eligible before recovery")

	recovered, err := repo.RecoverInFlight(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), recovered)

	eligible, err = repo.ListEligible(ctx, EligibleSelection{Now: time.Now().UTC()})
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, id, eligible[0].ID)
	assert.Equal(t, models.StatusPending, eligible[0].Status)
}
