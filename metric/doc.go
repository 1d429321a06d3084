// Package metric provides Prometheus-based metrics collection for kanal
// channels and the components built on them.
//
// The package offers a centralized metrics registry managing both core
// library metrics (channels open, parked waiters, transfer totals) and
// component-specific metrics registered by users of the library, such as
// per-channel instruments enabled with kanal.WithMetrics or the worker
// pool's processing metrics.
//
// # Architecture
//
// The package follows a two-layer design:
//
//  1. Core Metrics: library-level metrics automatically registered (Metrics type)
//  2. Component Registry: extensible registration for component-specific
//     metrics (MetricsRegistrar interface)
//
// This separates infrastructure concerns (how many channels exist, how
// many goroutines are parked) from application concerns (what a specific
// channel or pool is doing) while exposing everything through one
// prometheus.Registry that callers can serve however they like.
//
// # Basic Usage
//
//	registry := metric.NewMetricsRegistry()
//
//	tx, rx, err := kanal.Bounded[task](64,
//	    kanal.WithName[task]("ingest"),
//	    kanal.WithMetrics[task](registry),
//	)
//
//	// Serve registry.PrometheusRegistry() with promhttp if desired.
//
// The library never starts an HTTP server itself: kanal is embedded in
// other processes, which already own their metrics endpoints.
package metric
