package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modic-health/sync-agent/internal/crypto"
	"github.com/modic-health/sync-agent/internal/logger"
	"github.com/modic-health/sync-agent/internal/store"
	"github.com/modic-health/sync-agent/models"
)

type intake struct {
	stores   *store.Storages
	codec    crypto.Codec
	onChange func()
	logger   *logger.Logger
}

// NewIntake wires the enqueue use-cases. onChange is invoked after every
// successful enqueue; nil disables the notification.
func NewIntake(stores *store.Storages, codec crypto.Codec, onChange func(), log *logger.Logger) Intake {
	if onChange == nil {
		onChange = func() {}
	}
	return &intake{
		stores:   stores,
		codec:    codec,
		onChange: onChange,
		logger:   log,
	}
}

// SubmitAccountCreation implements [Intake].
func (i *intake) SubmitAccountCreation(ctx context.Context, email, credential, profileName string) (string, error) {
	blob, err := i.codec.Encrypt([]byte(credential))
	if err != nil {
		return "", fmt.Errorf("encrypt credential: %w", err)
	}

	return i.enqueue(ctx, models.KindAccountCreation, models.AccountCreationPayload{
		Email:               email,
		EncryptedCredential: blob,
		ProfileName:         profileName,
	})
}

// SubmitRecord implements [Intake].
func (i *intake) SubmitRecord(ctx context.Context, rec models.AnalysisRecord) (string, error) {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}

	if err := i.stores.Records.Upsert(ctx, rec); err != nil {
		return "", fmt.Errorf("save record locally: %w", err)
	}

	return i.enqueue(ctx, models.KindRecordUpsert, models.RecordUpsertPayload{Record: rec})
}

// SubmitBlobUpload implements [Intake].
func (i *intake) SubmitBlobUpload(ctx context.Context, payload models.BlobUploadPayload) (string, error) {
	if payload.Slot != models.SlotT1 && payload.Slot != models.SlotT2 {
		return "", fmt.Errorf("%w: %q", ErrUnknownImageSlot, payload.Slot)
	}
	if _, err := i.stores.Records.Get(ctx, payload.RecordID); err != nil {
		return "", fmt.Errorf("blob upload target: %w", err)
	}

	return i.enqueue(ctx, models.KindBlobUpload, payload)
}

func (i *intake) enqueue(ctx context.Context, kind models.OperationKind, payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s payload: %w", kind, err)
	}

	id, err := i.stores.Operations.Enqueue(ctx, &models.PendingOperation{
		Kind:    kind,
		Payload: raw,
	})
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", kind, err)
	}
	i.onChange()

	logger.FromContext(ctx).Info().
		Str("func", "intake.enqueue").
		Str("operation_id", id).
		Str("kind", string(kind)).
		Msg("operation queued")
	return id, nil
}
