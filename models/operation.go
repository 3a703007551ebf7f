package models

import "time"

// OperationKind tags the unit of client-originated work queued for the remote.
type OperationKind string

const (
	KindAccountCreation OperationKind = "account_creation"
	KindRecordUpsert    OperationKind = "record_upsert"
	KindBlobUpload      OperationKind = "blob_upload"
)

// OperationStatus is the lifecycle state of a queued operation.
//
// Valid transitions: Pending→InFlight→{Synced|Failed}, Failed→Pending on
// retry. There is no Pending→Synced shortcut.
type OperationStatus string

const (
	StatusPending  OperationStatus = "pending"
	StatusInFlight OperationStatus = "in_flight"
	StatusSynced   OperationStatus = "synced"
	StatusFailed   OperationStatus = "failed"
)

// PendingOperation is one durable unit of work awaiting remote effect.
// It is created the instant user intent exists, independent of connectivity,
// and mutated only by the orchestrator afterwards.
type PendingOperation struct {
	// ID is locally generated and stable across retries.
	ID string `json:"id"`

	Kind OperationKind `json:"kind"`

	// Payload is a kind-specific JSON blob. For account creation the
	// credential field inside is stored only in encrypted form.
	Payload []byte `json:"payload"`

	Status OperationStatus `json:"status"`

	// RetryCount grows monotonically; the backoff policy keys off it.
	RetryCount int `json:"retry_count"`

	// LastError holds the most recent failure diagnostic, cleared on success.
	LastError *string `json:"last_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// NextAttemptAt is the earliest scheduled retry time. Nil on a Failed
	// operation means the failure is terminal: only a manual retry may
	// reschedule it.
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty"`
}

// AccountCreationPayload is the payload for KindAccountCreation.
type AccountCreationPayload struct {
	Email string `json:"email"`

	// EncryptedCredential is the codec blob of the chosen password. The
	// plaintext is recovered only immediately before the remote call.
	EncryptedCredential string `json:"encrypted_credential"`

	ProfileName string `json:"profile_name"`
}

// RecordUpsertPayload is the payload for KindRecordUpsert.
type RecordUpsertPayload struct {
	Record AnalysisRecord `json:"record"`
}

// BlobUploadPayload is the payload for KindBlobUpload. The referenced image
// stays on disk until the upload succeeds; only the returned URL is persisted
// into the owning record.
type BlobUploadPayload struct {
	RecordID    string `json:"record_id"`
	Slot        string `json:"slot"` // "t1" or "t2"
	FilePath    string `json:"file_path"`
	ContentType string `json:"content_type"`
}

const (
	SlotT1 = "t1"
	SlotT2 = "t2"
)
