// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	insertOperation = `
		INSERT INTO operations (
			id,
			kind,
			payload,
			status,
			retry_count,
			last_error,
			created_at,
			next_attempt_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?);`

	getOperation = `
		SELECT
			id,
			kind,
			payload,
			status,
			retry_count,
			last_error,
			created_at,
			next_attempt_at
		FROM operations
		WHERE id = ?;`

	getOperationsByStatus = `
		SELECT
			id,
			kind,
			payload,
			status,
			retry_count,
			last_error,
			created_at,
			next_attempt_at
		FROM operations
		WHERE status = ?
		ORDER BY created_at ASC;`

	markOperationInFlight = `
		UPDATE operations SET
			status = 'in_flight'
		WHERE id = ? AND status IN ('pending', 'failed');`

	markOperationSynced = `
		UPDATE operations SET
			status          = 'synced',
			last_error      = NULL,
			next_attempt_at = NULL
		WHERE id = ? AND status = 'in_flight';`

	markOperationFailed = `
		UPDATE operations SET
			status          = 'failed',
			last_error      = ?,
			retry_count     = retry_count + 1,
			next_attempt_at = ?
		WHERE id = ? AND status = 'in_flight';`

	recoverInFlightOperations = `
		UPDATE operations SET
			status = 'pending'
		WHERE status = 'in_flight';`

	retryOperationNow = `
		UPDATE operations SET
			status          = 'pending',
			next_attempt_at = NULL
		WHERE id = ? AND status = 'failed';`

	purgeOperation = `
		DELETE FROM operations
		WHERE id = ?;`

	purgeSyncedOperations = `
		DELETE FROM operations
		WHERE status = 'synced' AND created_at < ?;`

	countUnsyncedOperations = `
		SELECT COUNT(*)
		FROM operations
		WHERE status IN ('pending', 'in_flight', 'failed');`

	upsertRecord = `
		INSERT INTO records (
			record_id,
			patient_ref,
			label,
			confidence,
			t1_image_url,
			t2_image_url,
			created_at,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (record_id) DO UPDATE SET
			patient_ref  = excluded.patient_ref,
			label        = excluded.label,
			confidence   = excluded.confidence,
			t1_image_url = excluded.t1_image_url,
			t2_image_url = excluded.t2_image_url,
			updated_at   = excluded.updated_at;`

	getRecord = `
		SELECT
			record_id,
			patient_ref,
			label,
			confidence,
			t1_image_url,
			t2_image_url,
			created_at,
			updated_at
		FROM records
		WHERE record_id = ?;`

	setRecordT1URL = `
		UPDATE records SET
			t1_image_url = ?,
			updated_at   = ?
		WHERE record_id = ?;`

	setRecordT2URL = `
		UPDATE records SET
			t2_image_url = ?,
			updated_at   = ?
		WHERE record_id = ?;`

	getAssetState = `
		SELECT
			installed_hash,
			last_checked_at,
			auto_update_enabled
		FROM asset_state
		WHERE id = 1;`

	saveAssetState = `
		INSERT INTO asset_state (id, installed_hash, last_checked_at, auto_update_enabled)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			installed_hash      = excluded.installed_hash,
			last_checked_at     = excluded.last_checked_at,
			auto_update_enabled = excluded.auto_update_enabled;`

	getSyncCursor = `
		SELECT cursor
		FROM sync_cursor
		WHERE id = 1;`

	saveSyncCursor = `
		INSERT INTO sync_cursor (id, cursor, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			cursor     = excluded.cursor,
			updated_at = excluded.updated_at;`
)
