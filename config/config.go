// Package config contains the node configuration definitions.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/timotree3/holochain/fetch"
	"github.com/timotree3/holochain/gossip"
	"github.com/timotree3/holochain/log"
	"github.com/timotree3/holochain/p2p"
)

// Config defines the top level configuration of a node.
type Config struct {
	BaseConfig `mapstructure:"main"`
	Preset     string        `mapstructure:"preset"`
	P2P        p2p.Config    `mapstructure:"p2p"`
	Gossip     gossip.Config `mapstructure:"gossip"`
	Fetch      fetch.Config  `mapstructure:"fetch"`
	Logging    log.Config    `mapstructure:"logging"`
}

// BaseConfig defines the node wide options.
type BaseConfig struct {
	// DataDir holds the database and the p2p identity. Empty runs the node
	// with an in-memory database and an ephemeral identity.
	DataDir string `mapstructure:"data-folder"`

	CollectMetrics    bool          `mapstructure:"metrics"`
	MetricsAddress    string        `mapstructure:"metrics-address"`
	MetricsPush       string        `mapstructure:"metrics-push"`
	MetricsPushPeriod time.Duration `mapstructure:"metrics-push-period"`

	DatabaseConnections int  `mapstructure:"db-connections"`
	DatabaseLatency     bool `mapstructure:"db-latency-metering"`
	OpCacheSize         int  `mapstructure:"op-cache-size"`

	// ArcCoverage is the share of the location space the local agent
	// stores, centered on the agent's location.
	ArcCoverage float64 `mapstructure:"arc-coverage"`
	// AgentTTL is how long a published agent info stays valid.
	AgentTTL time.Duration `mapstructure:"agent-ttl"`
	// AgentRefresh is the interval for republishing the local agent info and
	// pruning expired ones.
	AgentRefresh time.Duration `mapstructure:"agent-refresh"`
}

// DefaultConfig returns the default configuration of a node.
func DefaultConfig() Config {
	return Config{
		BaseConfig: DefaultBaseConfig(),
		P2P:        p2p.DefaultConfig(),
		Gossip:     gossip.DefaultConfig(),
		Fetch:      fetch.DefaultConfig(),
		Logging:    log.DefaultConfig(),
	}
}

// DefaultBaseConfig returns the default node wide options.
func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		MetricsAddress:      "127.0.0.1:1010",
		MetricsPushPeriod:   time.Minute,
		DatabaseConnections: 16,
		OpCacheSize:         1000,
		ArcCoverage:         1,
		AgentTTL:            time.Hour,
		AgentRefresh:        20 * time.Minute,
	}
}

// Validate checks all sections of the configuration.
func (cfg *Config) Validate() error {
	var errs []error
	if !(cfg.ArcCoverage > 0 && cfg.ArcCoverage <= 1) {
		errs = append(errs, fmt.Errorf("arc coverage must be in (0, 1], got %v", cfg.ArcCoverage))
	}
	if cfg.AgentRefresh <= 0 || cfg.AgentRefresh >= cfg.AgentTTL {
		errs = append(errs, fmt.Errorf("agent refresh must be positive and below ttl %v, got %v",
			cfg.AgentTTL, cfg.AgentRefresh))
	}
	if cfg.DatabaseConnections <= 0 {
		errs = append(errs, fmt.Errorf("db connections must be positive, got %d", cfg.DatabaseConnections))
	}
	if err := cfg.Gossip.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("gossip: %w", err))
	}
	if err := cfg.Fetch.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("fetch: %w", err))
	}
	return errors.Join(errs...)
}

// Load reads the config file at path into cfg. Values missing from the file
// keep what cfg already holds. An empty path leaves cfg untouched.
func Load(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	opts := []viper.DecoderConfigOption{
		viper.DecodeHook(hook),
		withIgnoreUntagged(),
		withErrorUnused(),
	}
	if err := v.Unmarshal(cfg, opts...); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func withIgnoreUntagged() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.IgnoreUntaggedFields = true
	}
}

func withErrorUnused() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.ErrorUnused = true
	}
}
