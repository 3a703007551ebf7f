// Package config provides configuration loading, merging, and validation
// facilities for the sync agent.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//  4. Built-in defaults for any field still unset
//
// The main entry point is [GetAgentConfig].
package config
