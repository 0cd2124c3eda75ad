package gossip

import (
	"errors"
	"fmt"
	"time"
)

// Config for the gossip loop and the rounds it runs.
type Config struct {
	// Interval between gossip ticks.
	Interval time.Duration `mapstructure:"interval"`
	// RoundTimeout bounds every request made within a round.
	RoundTimeout time.Duration `mapstructure:"round-timeout"`
	// MaxWindow is the longest time window compared at once.
	MaxWindow time.Duration `mapstructure:"max-window"`
	// MaxWindowsPerRound limits how many windows a single round compares.
	// The newest window is always among them, the rest rotate through the
	// older history.
	MaxWindowsPerRound int `mapstructure:"max-windows-per-round"`
	// MaxConcurrentRounds limits how many peers are gossiped with at once.
	MaxConcurrentRounds int `mapstructure:"max-concurrent-rounds"`
	// PeersPerTick is the number of peers picked on every tick.
	PeersPerTick int `mapstructure:"peers-per-tick"`
	// AgentFPRate is the false positive rate of agent filters.
	AgentFPRate float64 `mapstructure:"agent-fp-rate"`
	// OpFPRate is the false positive rate of operation filters.
	OpFPRate float64 `mapstructure:"op-fp-rate"`
	// UnhealthyAfter is the number of consecutive store failures after
	// which gossip reports itself unhealthy.
	UnhealthyAfter int `mapstructure:"unhealthy-after"`
}

// DefaultConfig returns the default gossip configuration.
func DefaultConfig() Config {
	return Config{
		Interval:            time.Minute,
		RoundTimeout:        30 * time.Second,
		MaxWindow:           time.Hour,
		MaxWindowsPerRound:  24,
		MaxConcurrentRounds: 4,
		PeersPerTick:        4,
		AgentFPRate:         1e-4,
		OpFPRate:            1e-2,
		UnhealthyAfter:      3,
	}
}

// Validate checks the configuration for values that can't work.
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %v", cfg.Interval))
	}
	if cfg.RoundTimeout <= 0 {
		errs = append(errs, fmt.Errorf("round timeout must be positive, got %v", cfg.RoundTimeout))
	}
	if cfg.MaxWindow < time.Millisecond {
		errs = append(errs, fmt.Errorf("max window must be at least 1ms, got %v", cfg.MaxWindow))
	}
	if cfg.MaxWindowsPerRound < 2 {
		errs = append(errs, fmt.Errorf("max windows per round must be at least 2, got %d", cfg.MaxWindowsPerRound))
	}
	if cfg.MaxConcurrentRounds <= 0 {
		errs = append(errs, fmt.Errorf("max concurrent rounds must be positive, got %d", cfg.MaxConcurrentRounds))
	}
	if cfg.PeersPerTick <= 0 {
		errs = append(errs, fmt.Errorf("peers per tick must be positive, got %d", cfg.PeersPerTick))
	}
	if !(cfg.AgentFPRate > 0 && cfg.AgentFPRate < 1) {
		errs = append(errs, fmt.Errorf("agent fp rate must be in (0, 1), got %v", cfg.AgentFPRate))
	}
	if !(cfg.OpFPRate > 0 && cfg.OpFPRate < 1) {
		errs = append(errs, fmt.Errorf("op fp rate must be in (0, 1), got %v", cfg.OpFPRate))
	}
	if cfg.UnhealthyAfter <= 0 {
		errs = append(errs, fmt.Errorf("unhealthy after must be positive, got %d", cfg.UnhealthyAfter))
	}
	return errors.Join(errs...)
}
