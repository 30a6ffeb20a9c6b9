package graph

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// HardwareConfig holds the compile-time capacity parameters of a
// generated accelerator instance.
type HardwareConfig struct {
	// ContextDepth is the number of logical decoding contexts
	// time-multiplexed onto the physical pipeline.
	ContextDepth int `json:"context_depth"`

	// ConflictChannels is the number of conflict records reported per
	// context per decoding step.
	ConflictChannels int `json:"conflict_channels"`

	// BroadcastDelay is the number of cycles for an instruction to reach
	// every vertex and edge unit.
	BroadcastDelay int `json:"broadcast_delay"`

	// ConvergecastDelay is the number of cycles for the obstacle
	// reduction tree to deliver its result back to the control plane.
	ConvergecastDelay int `json:"convergecast_delay"`

	// ClockDivideBy is the sampling interval of the dual network
	// relative to the register interface clock. 1 means a single clock
	// domain.
	ClockDivideBy int `json:"clock_divide_by"`

	// SupportOffloading enables hardware-issued Grow instructions
	// bounded by the per-context maximumGrowth budget.
	SupportOffloading bool `json:"support_offloading"`
}

// DefaultHardwareConfig returns the configuration used when no file is
// given: a single-context, single-channel, single-clock instance.
func DefaultHardwareConfig() *HardwareConfig {
	return &HardwareConfig{
		ContextDepth:      1,
		ConflictChannels:  1,
		BroadcastDelay:    1,
		ConvergecastDelay: 1,
		ClockDivideBy:     1,
		SupportOffloading: true,
	}
}

// LoadHardwareConfig loads a HardwareConfig from a JSON file. Missing
// fields keep their default values.
func LoadHardwareConfig(path string) (*HardwareConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read hardware config")
	}

	config := DefaultHardwareConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "failed to parse hardware config")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that the capacity parameters describe a buildable
// instance. A failure here is a fatal generation-time error.
func (c *HardwareConfig) Validate() error {
	if c.ContextDepth <= 0 {
		return errors.Errorf("context_depth must be > 0, got %d",
			c.ContextDepth)
	}
	if c.ConflictChannels <= 0 {
		return errors.Errorf("conflict_channels must be > 0, got %d",
			c.ConflictChannels)
	}
	if c.BroadcastDelay < 1 {
		return errors.Errorf("broadcast_delay must be >= 1, got %d",
			c.BroadcastDelay)
	}
	if c.ConvergecastDelay < 1 {
		return errors.Errorf("convergecast_delay must be >= 1, got %d",
			c.ConvergecastDelay)
	}
	if c.ClockDivideBy < 1 {
		return errors.Errorf("clock_divide_by must be >= 1, got %d",
			c.ClockDivideBy)
	}
	return nil
}

// ExecuteLatency is the number of cycles between an instruction being
// accepted and its write stage committing. The hazard window must cover
// this many in-flight instructions.
func (c *HardwareConfig) ExecuteLatency() int {
	// broadcast, then fetch/execute/update before the write stage
	return c.BroadcastDelay + 3
}

// ReadLatency is the number of cycles between an instruction being
// accepted and its convergecast result landing in the context readout.
func (c *HardwareConfig) ReadLatency() int {
	return c.ExecuteLatency() + c.ConvergecastDelay
}
