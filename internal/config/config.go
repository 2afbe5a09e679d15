// Package config loads the construction-time parameters the three core
// components are built with: worker/queue counts per pool and the LRU
// cache's byte budget. It generalizes cmd/server/main.go's hand-rolled
// getenvInt into a single typed loader that layers environment variables
// over an optional YAML file, following the config/cobra/viper pairing used
// elsewhere in the corpus (e.g. ChuLiYu-raft-recovery's internal/cli, which
// loads a YAML file into a tagged struct for its own worker/WAL/snapshot
// settings).
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// PoolConfig mirrors the construction parameters of sched.NewPool/pool.New
// for a single named pool.
type PoolConfig struct {
	Workers  int `mapstructure:"workers" yaml:"workers"`
	Capacity int `mapstructure:"capacity" yaml:"capacity"`
}

// CacheConfig mirrors cache.New's construction parameter.
type CacheConfig struct {
	MaxSizeBytes int `mapstructure:"max_size_bytes" yaml:"max_size_bytes"`
}

// Config is the complete set of construction parameters cmd/demo (and,
// generalized, cmd/server) builds its core components from. Capacities are
// frozen once the pools/cache are constructed; nothing here is a handle for
// reconfiguring a running component.
type Config struct {
	Pools map[string]PoolConfig `mapstructure:"pools" yaml:"pools"`
	Cache CacheConfig           `mapstructure:"cache" yaml:"cache"`
}

// Default returns the configuration cmd/demo falls back to when no file is
// given and no environment variables override it.
func Default() Config {
	return Config{
		Pools: map[string]PoolConfig{
			"default": {Workers: 4, Capacity: 64},
		},
		Cache: CacheConfig{MaxSizeBytes: 1 << 20},
	}
}

// Load builds a Config from, in ascending priority: built-in defaults, an
// optional YAML file at path (skipped entirely if path is empty), and
// environment variables prefixed COREPOOL_ (e.g. COREPOOL_CACHE_MAX_SIZE_BYTES).
// Of the per-pool settings, only those of the built-in "default" pool are
// reachable through environment variables (COREPOOL_POOLS_DEFAULT_WORKERS,
// COREPOOL_POOLS_DEFAULT_CAPACITY), because only its keys are registered as
// defaults; any other pool has to be set in the YAML file.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("COREPOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("cache.max_size_bytes", def.Cache.MaxSizeBytes)
	for name, pc := range def.Pools {
		v.SetDefault(fmt.Sprintf("pools.%s.workers", name), pc.Workers)
		v.SetDefault(fmt.Sprintf("pools.%s.capacity", name), pc.Capacity)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Pools) == 0 {
		cfg.Pools = def.Pools
	}
	return cfg, cfg.Validate()
}

// Validate rejects construction parameters pool.New/cache.New would
// otherwise silently clamp; config loading is the boundary where bad input
// should surface as an error, not as a quietly-different pool.
func (c Config) Validate() error {
	if c.Cache.MaxSizeBytes <= 0 {
		return fmt.Errorf("cache.max_size_bytes must be > 0, got %d", c.Cache.MaxSizeBytes)
	}
	for name, pc := range c.Pools {
		if pc.Workers <= 0 {
			return fmt.Errorf("pools.%s.workers must be > 0, got %d", name, pc.Workers)
		}
		if pc.Capacity <= 0 {
			return fmt.Errorf("pools.%s.capacity must be > 0, got %d", name, pc.Capacity)
		}
	}
	return nil
}
