package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the sync
// agent. It aggregates all sub-configurations and is populated by merging
// values from environment variables, command-line flags, an optional JSON
// file, and built-in defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Agent holds device-level settings: the secret that credential
	// encryption keys are derived from, the log file, and the connection
	// class.
	Agent Agent `envPrefix:"AGENT_"`

	// Remote holds the sync backend address and request timeout.
	Remote Remote `envPrefix:"REMOTE_"`

	// Storage holds the local SQLite database and asset file locations.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds drain scheduling, batching and retry settings.
	Sync Sync `envPrefix:"SYNC_"`

	// Assets holds model asset update policy settings.
	Assets Assets `envPrefix:"ASSETS_"`

	// Metrics holds the prometheus scrape listener settings.
	Metrics Metrics `envPrefix:"METRICS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Agent holds device-scoped settings.
type Agent struct {
	// DeviceSecret is the device-scoped secret that the at-rest credential
	// encryption key is derived from. Must be kept confidential.
	// Env: AGENT_DEVICE_SECRET
	DeviceSecret string `env:"DEVICE_SECRET"`

	// LogFile is the rotated agent log file path. Empty means stdout.
	// Env: AGENT_LOG_FILE
	LogFile string `env:"LOG_FILE"`

	// Metered marks the device connection as metered; large downloads may
	// be deferred depending on Assets.AllowMetered.
	// Env: AGENT_METERED
	Metered bool `env:"METERED"`
}

// Remote holds network settings for the outbound transport layer.
type Remote struct {
	// BaseURL is the sync backend base URL (e.g. "https://api.example.com").
	// Env: REMOTE_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// RequestTimeout is the default timeout for outbound requests.
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage groups local persistence locations.
type Storage struct {
	// DB holds the local database settings.
	DB DB `envPrefix:"DB_"`

	// AssetDir is the directory holding the active model asset and its
	// temporary download files. Both must live on the same filesystem for
	// the install rename to be atomic.
	// Env: STORAGE_ASSET_DIR
	AssetDir string `env:"ASSET_DIR"`

	// AssetFile is the active model asset file name inside AssetDir.
	// Env: STORAGE_ASSET_FILE
	AssetFile string `env:"ASSET_FILE"`
}

// DB holds connection settings for the embedded SQLite database.
type DB struct {
	// DSN is the SQLite file path used by the agent
	// (e.g. "/data/agent/sync.db").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Sync holds drain scheduling and retry settings.
type Sync struct {
	// Interval defines how often the periodic drain and fetch run.
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`

	// BatchLimit caps how many record upserts go into one batch call.
	// Env: SYNC_BATCH_LIMIT
	BatchLimit int `env:"BATCH_LIMIT"`

	// MaxAutoRetries caps automatic retries of a transport failure before
	// the operation needs a manual retry.
	// Env: SYNC_MAX_AUTO_RETRIES
	MaxAutoRetries int `env:"MAX_AUTO_RETRIES"`

	// BackoffInitial and BackoffMax bound the shared exponential backoff.
	// Env: SYNC_BACKOFF_INITIAL / SYNC_BACKOFF_MAX
	BackoffInitial time.Duration `env:"BACKOFF_INITIAL"`
	BackoffMax     time.Duration `env:"BACKOFF_MAX"`

	// PurgeAfter is the audit grace window before synced operations are
	// removed from the queue.
	// Env: SYNC_PURGE_AFTER
	PurgeAfter time.Duration `env:"PURGE_AFTER"`
}

// Assets holds model asset update policy.
type Assets struct {
	// CheckInterval defines how often the updater probes for a new model.
	// Env: ASSETS_CHECK_INTERVAL
	CheckInterval time.Duration `env:"CHECK_INTERVAL"`

	// MinCheckInterval is the shortest allowed gap between two remote
	// version probes; earlier triggers are skipped.
	// Env: ASSETS_MIN_CHECK_INTERVAL
	MinCheckInterval time.Duration `env:"MIN_CHECK_INTERVAL"`

	// AutoUpdate downloads and installs a newer model without a manual
	// trigger.
	// Env: ASSETS_AUTO_UPDATE
	AutoUpdate bool `env:"AUTO_UPDATE"`

	// AllowMetered permits asset downloads on metered connections.
	// Env: ASSETS_ALLOW_METERED
	AllowMetered bool `env:"ALLOW_METERED"`
}

// Metrics holds the prometheus scrape endpoint settings.
type Metrics struct {
	// Address is the listen address for /metrics, empty disables the
	// listener.
	// Env: METRICS_ADDRESS
	Address string `env:"ADDRESS"`
}

// GetAgentConfig loads, merges, and validates the agent configuration from
// all available sources in the following priority order (earlier sources win
// for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetAgentConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}

func defaults() *StructuredConfig {
	return &StructuredConfig{
		Remote: Remote{
			RequestTimeout: 15 * time.Second,
		},
		Storage: Storage{
			AssetFile: "modic_model.tflite",
		},
		Sync: Sync{
			Interval:       5 * time.Minute,
			BatchLimit:     50,
			MaxAutoRetries: 8,
			BackoffInitial: 2 * time.Second,
			BackoffMax:     10 * time.Minute,
			PurgeAfter:     24 * time.Hour,
		},
		Assets: Assets{
			CheckInterval:    time.Hour,
			MinCheckInterval: 10 * time.Minute,
			AutoUpdate:       true,
		},
	}
}
