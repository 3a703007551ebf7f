// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating with
// the sync backend.
//
// The primary abstraction is [RemoteClient], which decouples the sync
// orchestrator and the asset updater from the underlying protocol. The package
// ships an HTTP/REST implementation ([NewHTTPRemoteClient]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrAlreadyExists] for 409, [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/modic-health/sync-agent/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_client_mock.go -package=mock

// RemoteClient defines transport-agnostic communication with the sync backend.
// Implementations are responsible for serialisation, authentication header
// management, and mapping transport-level failures to the sentinel values
// defined in this package.
type RemoteClient interface {
	// SetToken stores the bearer token that will be attached to all
	// subsequent authenticated requests. It is called automatically after a
	// successful CreateAccount.
	SetToken(token string)

	// Token returns the bearer token currently stored in the client, or an
	// empty string if no token has been set yet.
	Token() string

	// CreateAccount registers a new account with the backend. On success it
	// stores the returned bearer token via SetToken and returns the assigned
	// user id. Returns [ErrAlreadyExists] (wrapped) when an account with the
	// same email is already registered; callers treat that as the desired
	// end state.
	CreateAccount(ctx context.Context, req models.AccountCreationRequest) (models.AccountResult, error)

	// BatchUpsertRecords pushes several analysis records in one request and
	// returns the per-record outcome. Returns [ErrBatchUnsupported] (wrapped)
	// when the backend does not expose the batch endpoint, in which case the
	// caller falls back to individual UpsertRecord calls.
	BatchUpsertRecords(ctx context.Context, records []models.AnalysisRecord) (models.BatchResult, error)

	// UpsertRecord pushes a single analysis record.
	UpsertRecord(ctx context.Context, record models.AnalysisRecord) error

	// UploadBlob streams the image file referenced by payload to the backend
	// and returns the remote URL assigned to it.
	UploadBlob(ctx context.Context, payload models.BlobUploadPayload) (string, error)

	// FetchSince retrieves the page of remote record changes after cursor.
	// An empty cursor requests the full record set.
	FetchSince(ctx context.Context, cursor string) (models.FetchResult, error)

	// GetAssetVersion fetches the canonical model asset descriptor.
	GetAssetVersion(ctx context.Context) (models.AssetInfo, error)

	// DownloadAsset streams the asset described by info into the file at
	// dest, overwriting it. dest holds the full response body only on a nil
	// error; the caller verifies the content hash before installing.
	DownloadAsset(ctx context.Context, info models.AssetInfo, dest string) error

	// Ping probes backend reachability.
	Ping(ctx context.Context) error
}
