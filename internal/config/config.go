// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and THRIVE_ env vars.
// - Failures are wrapped with this package's sentinel errors.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CheckInQueueSize bounds the in-memory check-in queue.
	CheckInQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of check-in workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many check-in IDs are remembered for idempotency.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the profile store.
	ShardCount int `koanf:"shard_count"`

	// HistoryWindow caps the per-user history kept for achievement detection.
	HistoryWindow int `koanf:"history_window"`

	// CheckInXP is granted for every accepted daily check-in.
	CheckInXP int `koanf:"checkin_xp"`

	// Timezone is the IANA zone used to decide which calendar day a check-in belongs to.
	Timezone string `koanf:"timezone"`

	// Locale selects the default recommendation text catalog.
	Locale string `koanf:"locale"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		CheckInQueueSize: 10_000,
		WorkerCount:      runtime.NumCPU() * 2,
		DedupeSize:       100_000,
		ShardCount:       8,
		HistoryWindow:    30,
		CheckInXP:        10,
		Timezone:         "UTC",
		Locale:           "en",
	}
}
