package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidRemoteConfigs indicates invalid remote transport settings
	// (for example, missing base URL or request timeout).
	ErrInvalidRemoteConfigs = errors.New("invalid remote configuration")
	// ErrInvalidStorageConfigs indicates invalid local storage settings
	// (for example, empty DSN, unsupported in-memory DSN, or missing asset
	// locations).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAgentConfigs indicates invalid device-level settings
	// (for example, missing device secret).
	ErrInvalidAgentConfigs = errors.New("invalid agent configuration")
	// ErrInvalidSyncConfigs indicates invalid drain scheduling settings
	// (for example, zero sync interval or inverted backoff bounds).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
	// ErrInvalidAssetConfigs indicates invalid asset update policy settings.
	ErrInvalidAssetConfigs = errors.New("invalid assets configuration")
)
