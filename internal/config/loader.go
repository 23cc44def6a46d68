package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/frostline/restcurve/internal/domain/derive"
	"github.com/frostline/restcurve/internal/domain/rest"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if RESTCURVE_CONFIG is set
//  3. env (prefix RESTCURVE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("RESTCURVE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadFile, err)
		}
	}

	// Environment variables: RESTCURVE_ADDR, RESTCURVE_SHARD_COUNT, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("RESTCURVE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "restcurve_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadEnv, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshal, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if !derive.Metric(c.TargetMetric).Valid() {
		return fmt.Errorf("%w: unknown target_metric %q", ErrInvalidConfig, c.TargetMetric)
	}
	if len(c.LowRestBuckets) == 0 || len(c.HighRestBuckets) == 0 {
		return fmt.Errorf("%w: low/high rest bucket sets must not be empty", ErrInvalidConfig)
	}
	for _, name := range append(append([]string{}, c.LowRestBuckets...), c.HighRestBuckets...) {
		if _, ok := rest.ParseBucket(name); !ok {
			return fmt.Errorf("%w: unknown rest bucket %q", ErrInvalidConfig, name)
		}
	}
	return nil
}

// LowBuckets resolves the configured low-rest bucket names. Call after
// validation; unknown names are skipped.
func (c *Config) LowBuckets() []rest.Bucket { return parseBuckets(c.LowRestBuckets) }

// HighBuckets resolves the configured high-rest bucket names.
func (c *Config) HighBuckets() []rest.Bucket { return parseBuckets(c.HighRestBuckets) }

func parseBuckets(names []string) []rest.Bucket {
	out := make([]rest.Bucket, 0, len(names))
	for _, n := range names {
		if b, ok := rest.ParseBucket(n); ok {
			out = append(out, b)
		}
	}
	return out
}
