package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and string
// durations ("5m", "1h") for hand-written config files.
type StructuredJSONConfig struct {
	Agent struct {
		DeviceSecret string `json:"device_secret"`
		LogFile      string `json:"log_file"`
		Metered      bool   `json:"metered"`
	} `json:"agent,omitempty"`

	Remote struct {
		BaseURL        string   `json:"base_url"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"remote,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
		AssetDir  string `json:"asset_dir"`
		AssetFile string `json:"asset_file"`
	} `json:"storage,omitempty"`

	Sync struct {
		Interval       Duration `json:"interval"`
		BatchLimit     int      `json:"batch_limit"`
		MaxAutoRetries int      `json:"max_auto_retries"`
		BackoffInitial Duration `json:"backoff_initial"`
		BackoffMax     Duration `json:"backoff_max"`
		PurgeAfter     Duration `json:"purge_after"`
	} `json:"sync,omitempty"`

	Assets struct {
		CheckInterval    Duration `json:"check_interval"`
		MinCheckInterval Duration `json:"min_check_interval"`
		AutoUpdate       bool     `json:"auto_update"`
		AllowMetered     bool     `json:"allow_metered"`
	} `json:"assets,omitempty"`

	Metrics struct {
		Address string `json:"address"`
	} `json:"metrics,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Agent: Agent{
			DeviceSecret: jsonCfg.Agent.DeviceSecret,
			LogFile:      jsonCfg.Agent.LogFile,
			Metered:      jsonCfg.Agent.Metered,
		},
		Remote: Remote{
			BaseURL:        jsonCfg.Remote.BaseURL,
			RequestTimeout: time.Duration(jsonCfg.Remote.RequestTimeout),
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			AssetDir:  jsonCfg.Storage.AssetDir,
			AssetFile: jsonCfg.Storage.AssetFile,
		},
		Sync: Sync{
			Interval:       time.Duration(jsonCfg.Sync.Interval),
			BatchLimit:     jsonCfg.Sync.BatchLimit,
			MaxAutoRetries: jsonCfg.Sync.MaxAutoRetries,
			BackoffInitial: time.Duration(jsonCfg.Sync.BackoffInitial),
			BackoffMax:     time.Duration(jsonCfg.Sync.BackoffMax),
			PurgeAfter:     time.Duration(jsonCfg.Sync.PurgeAfter),
		},
		Assets: Assets{
			CheckInterval:    time.Duration(jsonCfg.Assets.CheckInterval),
			MinCheckInterval: time.Duration(jsonCfg.Assets.MinCheckInterval),
			AutoUpdate:       jsonCfg.Assets.AutoUpdate,
			AllowMetered:     jsonCfg.Assets.AllowMetered,
		},
		Metrics: Metrics{
			Address: jsonCfg.Metrics.Address,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
