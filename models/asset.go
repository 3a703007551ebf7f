package models

import "time"

// AssetVersionState tracks the locally installed model asset. The invariant
// is that the asset file on disk, if present, always matches InstalledHash;
// a half-written file is never observable as installed.
type AssetVersionState struct {
	// InstalledHash is the sha256 of the active asset, empty if none.
	InstalledHash string `json:"installed_hash,omitempty"`

	LastCheckedAt time.Time `json:"last_checked_at"`

	AutoUpdateEnabled bool `json:"auto_update_enabled"`
}

// AssetInfo describes the canonical asset as announced by the remote
// /model_info endpoint.
type AssetInfo struct {
	Hash        string `json:"model_hash"`
	Version     string `json:"model_version"`
	SizeBytes   int64  `json:"model_size_bytes"`
	DownloadURL string `json:"download_url"`
}
