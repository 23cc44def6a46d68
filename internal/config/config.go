// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Load layers defaults, an optional YAML file and RESTCURVE_* env vars.
// - External errors are wrapped via this package's sentinels.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// TeamDataset and GoalieDataset are optional CSV files preloaded into
	// the store at startup.
	TeamDataset   string `koanf:"team_dataset"`
	GoalieDataset string `koanf:"goalie_dataset"`

	// DatabasePath selects the SQLite-backed store when set; empty keeps
	// the game log in memory only.
	DatabasePath string `koanf:"database_path"`

	// ShardCount bounds how many entities have their rest intervals
	// computed concurrently.
	ShardCount int `koanf:"shard_count"`

	// MaxRankingLimit caps GET /rest/ranking?limit.
	MaxRankingLimit int `koanf:"max_ranking_limit"`

	// TargetMetric is the default metric for summaries and rankings.
	TargetMetric string `koanf:"target_metric"`

	// LowRestBuckets and HighRestBuckets name the bucket sets contrasted
	// by the sensitivity ranker.
	LowRestBuckets  []string `koanf:"low_rest_buckets"`
	HighRestBuckets []string `koanf:"high_rest_buckets"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9090",
		ShardCount:      runtime.NumCPU(),
		MaxRankingLimit: 100,
		TargetMetric:    "win",
		LowRestBuckets:  []string{"back-to-back"},
		HighRestBuckets: []string{"normal", "extended"},
	}
}
