// Package config defines the nudging subsystem configuration and the
// providers that load it from SQLite or YAML sources.
package config

import (
	"fmt"

	"github.com/atmoscale/nudge/internal/types"
)

// Provider defines the interface for configuration data sources
type Provider interface {
	// LoadConfig loads the complete nudging configuration
	LoadConfig() (*Config, error)

	IsReadOnly() bool
	Close() error
}

// Config holds the configuration for one nudging process instance. It is
// loaded once at initialization and immutable thereafter.
type Config struct {
	// Datafile is the path to the reference dataset file.
	Datafile string `json:"datafile" yaml:"datafile"`

	// RelaxationTimescaleSeconds is the characteristic time constant
	// controlling how fast the nudged field approaches the reference.
	RelaxationTimescaleSeconds float64 `json:"relaxation_timescale_seconds" yaml:"relaxation_timescale_seconds"`

	// FieldName names the one simulation field this instance nudges.
	FieldName string `json:"field_name" yaml:"field_name"`

	// GridName names the grid this instance operates on.
	GridName string `json:"grid_name" yaml:"grid_name"`
}

// Validate returns ErrConfig describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.Datafile == "" {
		return fmt.Errorf("%w: datafile is required", types.ErrConfig)
	}
	if c.RelaxationTimescaleSeconds <= 0 {
		return fmt.Errorf("%w: relaxation_timescale_seconds must be positive, got %g",
			types.ErrConfig, c.RelaxationTimescaleSeconds)
	}
	if c.FieldName == "" {
		return fmt.Errorf("%w: field_name is required", types.ErrConfig)
	}
	if c.GridName == "" {
		return fmt.Errorf("%w: grid_name is required", types.ErrConfig)
	}
	return nil
}
