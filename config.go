package kanal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sabify/kanal/errors"
	"github.com/sabify/kanal/metric"
)

// Config declares a channel for construction from a configuration file.
// A nil Capacity means unbounded; zero means rendezvous.
type Config struct {
	Name     string `yaml:"name" json:"name"`
	Capacity *int   `yaml:"capacity,omitempty" json:"capacity,omitempty"`
	Metrics  bool   `yaml:"metrics" json:"metrics"`
}

// Validate checks the config for misuse before any channel is built.
func (c *Config) Validate() error {
	if c.Capacity != nil && *c.Capacity < 0 {
		return errors.WrapTerminal(errors.ErrInvalidCapacity,
			"Config", "Validate", fmt.Sprintf("capacity %d", *c.Capacity))
	}
	return nil
}

// ParseConfig parses a YAML channel declaration.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse channel config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadConfig reads and parses a YAML channel declaration from a file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// NewFromConfig builds a channel from a validated Config. The registry
// is only consulted when cfg.Metrics is set; passing nil with metrics
// enabled is misuse and fails validation here rather than at first use.
func NewFromConfig[T any](cfg *Config, registry *metric.MetricsRegistry) (*Sender[T], *Receiver[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	var options []Option[T]
	if cfg.Name != "" {
		options = append(options, WithName[T](cfg.Name))
	}
	if cfg.Metrics {
		if registry == nil {
			return nil, nil, errors.WrapTerminal(errors.ErrNilRegistry,
				"Config", "NewFromConfig", "metrics enabled")
		}
		options = append(options, WithMetrics[T](registry))
	}

	if cfg.Capacity == nil {
		return Unbounded[T](options...)
	}
	return Bounded[T](*cfg.Capacity, options...)
}
