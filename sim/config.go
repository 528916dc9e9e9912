package sim

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidConfig is wrapped by every configuration validation error.
var ErrInvalidConfig = errors.New("invalid configuration")

// OverflowPolicy selects what a factory does when its batch does not fit.
type OverflowPolicy string

const (
	// OverflowFail aborts the whole run with ErrCapacityExceeded.
	OverflowFail OverflowPolicy = "fail"
	// OverflowDrop discards the part of the batch that did not fit.
	OverflowDrop OverflowPolicy = "drop"
	// OverflowBlock waits for the dispatcher to free space.
	OverflowBlock OverflowPolicy = "block"
)

var validOverflowPolicies = map[OverflowPolicy]bool{
	OverflowFail:  true,
	OverflowDrop:  true,
	OverflowBlock: true,
}

// IsValidOverflowPolicy returns true if name is a recognized overflow policy.
func IsValidOverflowPolicy(name string) bool {
	return validOverflowPolicies[OverflowPolicy(name)]
}

// DefaultThreshold is the fill ratio at which the dispatcher sends trucks.
const DefaultThreshold = 0.95

// Config groups the run parameters of a Simulation.
type Config struct {
	CapacityMultiplier int            // warehouse capacity = multiplier * CapacityUnit
	Hours              int            // simulated hours to run; one tick per hour
	Tick               time.Duration  // wall time of one simulated hour
	PollInterval       time.Duration  // dispatcher pause between fill checks (0 = spin)
	Threshold          float64        // high-water fill ratio in (0, 1]
	OverflowPolicy     OverflowPolicy // factory behaviour on a full warehouse
}

// DefaultConfig returns the configuration of the reference run: capacity
// 5000, one-second ticks, 95% threshold, overflow fails the run.
func DefaultConfig() Config {
	return Config{
		CapacityMultiplier: 100,
		Hours:              10,
		Tick:               time.Second,
		PollInterval:       time.Millisecond,
		Threshold:          DefaultThreshold,
		OverflowPolicy:     OverflowFail,
	}
}

// Duration is the wall-clock length of the run.
func (c Config) Duration() time.Duration {
	return time.Duration(c.Hours) * c.Tick
}

// Validate checks that all fields are usable.
func (c Config) Validate() error {
	if c.CapacityMultiplier <= 0 {
		return fmt.Errorf("%w: capacity multiplier must be positive, got %d", ErrInvalidConfig, c.CapacityMultiplier)
	}
	if c.Hours <= 0 {
		return fmt.Errorf("%w: hours must be positive, got %d", ErrInvalidConfig, c.Hours)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("%w: tick must be positive, got %s", ErrInvalidConfig, c.Tick)
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("%w: poll interval must be non-negative, got %s", ErrInvalidConfig, c.PollInterval)
	}
	if math.IsNaN(c.Threshold) || c.Threshold <= 0 || c.Threshold > 1 {
		return fmt.Errorf("%w: threshold must be in (0, 1], got %f", ErrInvalidConfig, c.Threshold)
	}
	if !validOverflowPolicies[c.OverflowPolicy] {
		return fmt.Errorf("%w: unknown overflow policy %q; valid: fail, drop, block", ErrInvalidConfig, c.OverflowPolicy)
	}
	return nil
}
