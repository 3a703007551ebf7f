package config

import (
	"flag"
	"os"
	"time"
)

// ParseFlags parses all configuration flags from os.Args.
//
// Flags:
//
//	-r remote base URL
//	-d local database path
//	-c/-config json file path with configs
//	-asset-dir model asset directory
//	-log-file agent log file path
//	-sync-interval periodic drain interval (e.g. "5m")
//	-check-interval asset version check interval (e.g. "1h")
//	-metrics-address prometheus scrape listen address
func ParseFlags() *StructuredConfig {
	return parseFlagSet(flag.NewFlagSet(os.Args[0], flag.ContinueOnError), os.Args[1:])
}

func parseFlagSet(fs *flag.FlagSet, args []string) *StructuredConfig {
	var remoteBaseURL string
	var databaseDSN string
	var jsonConfigPath string
	var assetDir string
	var logFile string
	var syncInterval time.Duration
	var checkInterval time.Duration
	var metricsAddress string

	fs.StringVar(&remoteBaseURL, "r", "", "Remote base URL")
	fs.StringVar(&databaseDSN, "d", "", "Local database path")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&assetDir, "asset-dir", "", "Model asset directory")
	fs.StringVar(&logFile, "log-file", "", "Agent log file path")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Drain interval (e.g. 5m)")
	fs.DurationVar(&checkInterval, "check-interval", 0, "Asset check interval (e.g. 1h)")
	fs.StringVar(&metricsAddress, "metrics-address", "", "Prometheus listen address")

	_ = fs.Parse(args)

	return &StructuredConfig{
		Agent: Agent{
			LogFile: logFile,
		},
		Remote: Remote{
			BaseURL: remoteBaseURL,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
			AssetDir: assetDir,
		},
		Sync: Sync{
			Interval: syncInterval,
		},
		Assets: Assets{
			CheckInterval: checkInterval,
		},
		Metrics: Metrics{
			Address: metricsAddress,
		},
		JSONFilePath: jsonConfigPath,
	}
}
