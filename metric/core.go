package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all library-level metrics (not channel-specific)
type Metrics struct {
	ChannelsOpen    *prometheus.GaugeVec
	ChannelsClosed  *prometheus.CounterVec
	MessagesMoved   *prometheus.CounterVec
	WaitersParked   *prometheus.GaugeVec
	WaitDuration    *prometheus.HistogramVec
	OperationErrors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all library metrics
func NewMetrics() *Metrics {
	return &Metrics{
		ChannelsOpen: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "kanal",
				Subsystem: "channels",
				Name:      "open",
				Help:      "Number of currently open channels",
			},
			[]string{"kind"},
		),

		ChannelsClosed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kanal",
				Subsystem: "channels",
				Name:      "closed_total",
				Help:      "Total number of channels closed",
			},
			[]string{"kind", "reason"},
		),

		MessagesMoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kanal",
				Subsystem: "messages",
				Name:      "moved_total",
				Help:      "Total number of messages moved through channels",
			},
			[]string{"channel", "path"},
		),

		WaitersParked: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "kanal",
				Subsystem: "waiters",
				Name:      "parked",
				Help:      "Number of currently parked senders and receivers",
			},
			[]string{"channel", "side"},
		),

		WaitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "kanal",
				Subsystem: "waiters",
				Name:      "wait_duration_seconds",
				Help:      "Time operations spent parked before resolving",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"channel", "side"},
		),

		OperationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kanal",
				Subsystem: "operations",
				Name:      "errors_total",
				Help:      "Total channel operations that returned an error",
			},
			[]string{"channel", "op", "error"},
		),
	}
}

// RecordChannelOpened records a channel construction for the given kind
// (bounded, unbounded, rendezvous).
func (m *Metrics) RecordChannelOpened(kind string) {
	m.ChannelsOpen.WithLabelValues(kind).Inc()
}

// RecordChannelClosed records a channel close with the reason it closed
// (explicit, senders_gone, receivers_gone).
func (m *Metrics) RecordChannelClosed(kind, reason string) {
	m.ChannelsOpen.WithLabelValues(kind).Dec()
	m.ChannelsClosed.WithLabelValues(kind, reason).Inc()
}

// RecordTransfer records a message moved through a channel on the given
// path (handoff or buffer).
func (m *Metrics) RecordTransfer(channel, path string) {
	m.MessagesMoved.WithLabelValues(channel, path).Inc()
}

// RecordOperationError records a failed channel operation.
func (m *Metrics) RecordOperationError(channel, op, errName string) {
	m.OperationErrors.WithLabelValues(channel, op, errName).Inc()
}
