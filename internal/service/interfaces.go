// Package service holds the agent use-cases: accepting local intent into the
// durable queue, draining the queue against the remote, and merging remote
// truth back into the local cache.
package service

//go:generate mockgen -source=interfaces.go -destination=../workers/service_mocks_test.go -package=workers

import (
	"context"

	"github.com/modic-health/sync-agent/models"
)

// DrainScope narrows what a drain cycle attempts. Concurrent triggers with
// the same scope coalesce into one running drain; the late caller gets the
// shared result.
type DrainScope struct {
	tag string
	id  string
}

// ScopeFull drains every eligible operation.
func ScopeFull() DrainScope { return DrainScope{tag: "full"} }

// ScopeDataOnly drains record upserts and blob uploads, leaving account
// creations untouched.
func ScopeDataOnly() DrainScope { return DrainScope{tag: "data"} }

// ScopeOperation drains a single operation, including one whose failure is
// terminal. Used for user-initiated retries.
func ScopeOperation(id string) DrainScope { return DrainScope{tag: "op:" + id, id: id} }

// DrainSummary reports what one drain cycle did.
type DrainSummary struct {
	// Skipped is set when the agent was offline and the cycle changed
	// nothing, not even retry counters.
	Skipped bool

	Attempted int
	Synced    int
	Failed    int
}

// Orchestrator owns the queue drain loop. It is the only mutator of
// operation status after enqueue.
type Orchestrator interface {
	// TriggerDrain runs one drain cycle for the given scope. Offline it is
	// a no-op. Calls sharing a scope while a drain runs coalesce into it.
	TriggerDrain(ctx context.Context, scope DrainScope) (DrainSummary, error)

	// RetryOperation reschedules a terminally failed operation and drains
	// it immediately.
	RetryOperation(ctx context.Context, id string) error

	// ObserveUnsyncedCount emits the count of not-yet-synced operations
	// after every queue change until ctx is cancelled. The channel is
	// closed on cancellation.
	ObserveUnsyncedCount(ctx context.Context) <-chan int
}

// Merger pulls remote truth into the local cache.
type Merger interface {
	// FetchAndMerge walks the remote change feed from the persisted
	// cursor, applies each record locally with the remote timestamp
	// winning, supersedes older local drafts, and advances the cursor.
	// Returns how many remote records were applied.
	FetchAndMerge(ctx context.Context) (int, error)
}

// Intake turns local user intent into durable queued operations. Every
// Submit call completes only after the operation is persisted, so intent
// survives an immediate crash or power loss.
type Intake interface {
	// SubmitAccountCreation encrypts the credential at rest and queues an
	// account creation. The plaintext never touches the database.
	SubmitAccountCreation(ctx context.Context, email, credential, profileName string) (string, error)

	// SubmitRecord saves the record to the local cache and queues its
	// remote upsert.
	SubmitRecord(ctx context.Context, rec models.AnalysisRecord) (string, error)

	// SubmitBlobUpload queues an image upload for one slot of an existing
	// record. The file must stay in place until the upload succeeds.
	SubmitBlobUpload(ctx context.Context, payload models.BlobUploadPayload) (string, error)
}
