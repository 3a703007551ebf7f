package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/modic-health/sync-agent/internal/logger"
	"github.com/modic-health/sync-agent/models"
)

type recordRepository struct {
	*DB
	logger *logger.Logger
}

func NewRecordRepository(db *DB, logger *logger.Logger) RecordStore {
	return &recordRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *recordRepository) Upsert(ctx context.Context, rec models.AnalysisRecord) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx, upsertRecord,
		rec.RecordID,
		rec.PatientRef,
		rec.Label,
		rec.Confidence,
		rec.T1ImageURL,
		rec.T2ImageURL,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Upsert").
			Str("record_id", rec.RecordID).
			Msg("failed to upsert analysis record")
		return fmt.Errorf("failed to upsert record (id=%s): %w", rec.RecordID, err)
	}

	return nil
}

func (r *recordRepository) Get(ctx context.Context, recordID string) (models.AnalysisRecord, error) {
	log := logger.FromContext(ctx)

	var rec models.AnalysisRecord
	row := r.DB.QueryRowContext(ctx, getRecord, recordID)
	err := row.Scan(
		&rec.RecordID,
		&rec.PatientRef,
		&rec.Label,
		&rec.Confidence,
		&rec.T1ImageURL,
		&rec.T2ImageURL,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AnalysisRecord{}, ErrRecordNotFound
		}
		log.Err(err).
			Str("func", "recordRepository.Get").
			Str("record_id", recordID).
			Msg("failed to scan record row")
		return models.AnalysisRecord{}, fmt.Errorf("failed to scan record row: %w", err)
	}

	return rec, nil
}

func (r *recordRepository) SetImageURL(ctx context.Context, recordID, slot, url string) error {
	log := logger.FromContext(ctx)

	var query string
	switch slot {
	case models.SlotT1:
		query = setRecordT1URL
	case models.SlotT2:
		query = setRecordT2URL
	default:
		return fmt.Errorf("unknown image slot %q (record_id=%s)", slot, recordID)
	}

	result, err := r.DB.ExecContext(ctx, query, url, time.Now().UTC(), recordID)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.SetImageURL").
			Str("record_id", recordID).
			Str("slot", slot).
			Msg("failed to set record image URL")
		return fmt.Errorf("failed to set %s image URL (record_id=%s): %w", slot, recordID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected (record_id=%s): %w", recordID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w (record_id=%s)", ErrRecordNotFound, recordID)
	}

	return nil
}
