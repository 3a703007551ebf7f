package config

import "strings"

// validate checks that the final merged [StructuredConfig] satisfies the
// agent's startup invariants.
//
// Returns nil if the configuration is valid, or a sentinel error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Remote.BaseURL == "" || cfg.Remote.RequestTimeout <= 0 {
		return ErrInvalidRemoteConfigs
	}

	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Storage.AssetDir == "" || cfg.Storage.AssetFile == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Agent.DeviceSecret == "" {
		return ErrInvalidAgentConfigs
	}

	if cfg.Sync.Interval <= 0 || cfg.Sync.BatchLimit <= 0 {
		return ErrInvalidSyncConfigs
	}

	if cfg.Sync.BackoffInitial <= 0 || cfg.Sync.BackoffMax < cfg.Sync.BackoffInitial {
		return ErrInvalidSyncConfigs
	}

	if cfg.Assets.CheckInterval <= 0 || cfg.Assets.MinCheckInterval <= 0 {
		return ErrInvalidAssetConfigs
	}

	return nil
}
