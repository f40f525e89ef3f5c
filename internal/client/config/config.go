package config

import "time"

// Config holds runtime settings for the daylight CLI.
//
// Durations: RequestTimeout bounds each remote call, DebounceWindow is how
// long rapid edits coalesce before a flush, OnlineCheckInterval is how often
// the client probes server reachability.
type Config struct {
	APIBaseURL          string
	DatabasePath        string
	KeyPath             string
	SessionToken        string
	RequestTimeout      time.Duration
	DebounceWindow      time.Duration
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "daylight.db"
	c.KeyPath = "daylight.key"
	c.RequestTimeout = 10 * time.Second
	c.DebounceWindow = 600 * time.Millisecond
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
