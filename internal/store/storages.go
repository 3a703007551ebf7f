package store

import (
	"github.com/modic-health/sync-agent/internal/logger"
)

// Storages bundles all repositories backed by the shared SQLite connection.
type Storages struct {
	Operations OperationStore
	Records    RecordStore
	State      StateStore
}

func NewStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		Operations: NewOperationRepository(db, log),
		Records:    NewRecordRepository(db, log),
		State:      NewStateRepository(db, log),
	}
}
