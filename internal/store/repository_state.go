// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

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

type stateRepository struct {
	*DB
	logger *logger.Logger
}

func NewStateRepository(db *DB, logger *logger.Logger) StateStore {
	return &stateRepository{
		DB:     db,
		logger: logger,
	}
}

// GetAssetState returns the zero value when no asset has ever been installed.
func (r *stateRepository) GetAssetState(ctx context.Context) (models.AssetVersionState, error) {
	log := logger.FromContext(ctx)

	var st models.AssetVersionState
	var lastChecked sql.NullTime
	row := r.DB.QueryRowContext(ctx, getAssetState)
	if err := row.Scan(&st.InstalledHash, &lastChecked, &st.AutoUpdateEnabled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AssetVersionState{AutoUpdateEnabled: true}, nil
		}
		log.Err(err).
			Str("func", "stateRepository.GetAssetState").
			Msg("failed to scan asset state row")
		return models.AssetVersionState{}, fmt.Errorf("failed to scan asset state row: %w", err)
	}

	if lastChecked.Valid {
		st.LastCheckedAt = lastChecked.Time
	}
	return st, nil
}

func (r *stateRepository) SaveAssetState(ctx context.Context, st models.AssetVersionState) error {
	log := logger.FromContext(ctx)

	var lastChecked sql.NullTime
	if !st.LastCheckedAt.IsZero() {
		lastChecked = sql.NullTime{Time: st.LastCheckedAt, Valid: true}
	}

	_, err := r.DB.ExecContext(ctx, saveAssetState, st.InstalledHash, lastChecked, st.AutoUpdateEnabled)
	if err != nil {
		log.Err(err).
			Str("func", "stateRepository.SaveAssetState").
			Msg("failed to save asset state")
		return fmt.Errorf("failed to save asset state: %w", err)
	}

	return nil
}

// GetCursor returns an empty cursor when the agent has never fetched, which
// asks the server for the full record set.
func (r *stateRepository) GetCursor(ctx context.Context) (string, error) {
	log := logger.FromContext(ctx)

	var cursor string
	if err := r.DB.QueryRowContext(ctx, getSyncCursor).Scan(&cursor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		log.Err(err).
			Str("func", "stateRepository.GetCursor").
			Msg("failed to scan sync cursor row")
		return "", fmt.Errorf("failed to scan sync cursor row: %w", err)
	}

	return cursor, nil
}

func (r *stateRepository) SaveCursor(ctx context.Context, cursor string) error {
	log := logger.FromContext(ctx)

	if _, err := r.DB.ExecContext(ctx, saveSyncCursor, cursor, time.Now().UTC()); err != nil {
		log.Err(err).
			Str("func", "stateRepository.SaveCursor").
			Msg("failed to save sync cursor")
		return fmt.Errorf("failed to save sync cursor: %w", err)
	}

	return nil
}
