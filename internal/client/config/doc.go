// Package config loads runtime configuration for the daylight CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the application API
//	-d string   path to the local database file
//	-k string   path to the token seal key file
//	-s string   session token from a magic link
//	-i int      online status check interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "600ms" or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://api.example",
//	  "database_path": "daylight.db",
//	  "key_path": "daylight.key",
//	  "request_timeout": "10s",
//	  "debounce_window": "600ms",
//	  "online_check_interval": "3s"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
