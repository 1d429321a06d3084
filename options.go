package kanal

import (
	"github.com/sabify/kanal/metric"
)

// Option configures channel behavior using the functional options pattern.
type Option[T any] func(*channelOptions[T])

// channelOptions holds internal configuration for channel instances.
// Statistics are ALWAYS collected; Prometheus metrics are optional and
// enabled via WithMetrics().
type channelOptions[T any] struct {
	name       string
	metricsReg *metric.MetricsRegistry
}

// WithName sets the channel's name, used as the component label on
// Prometheus metrics and returned by Name(). Defaults to a prefix of the
// channel's generated id.
func WithName[T any](name string) Option[T] {
	return func(opts *channelOptions[T]) {
		opts.name = name
	}
}

// WithMetrics enables Prometheus metrics export for channel statistics.
// If registry is nil, this option is ignored.
func WithMetrics[T any](registry *metric.MetricsRegistry) Option[T] {
	return func(opts *channelOptions[T]) {
		if registry != nil {
			opts.metricsReg = registry
		}
	}
}

// applyOptions applies functional options to create final channel configuration.
func applyOptions[T any](options ...Option[T]) *channelOptions[T] {
	opts := &channelOptions[T]{}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}
	return opts
}
