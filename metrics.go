package kanal

import (
	stderrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sabify/kanal/errors"
	"github.com/sabify/kanal/metric"
)

// channelMetrics holds Prometheus metrics for one channel instance.
type channelMetrics struct {
	reg  *metric.MetricsRegistry
	name string
	kind string

	sends    prometheus.Counter
	recvs    prometheus.Counter
	handoffs prometheus.Counter
	timeouts prometheus.Counter

	size        prometheus.Gauge
	utilization prometheus.Gauge
}

// newChannelMetrics creates and registers per-channel metrics with the
// provided registry, using name as the component label.
func newChannelMetrics(registry *metric.MetricsRegistry, name, kind string) (*channelMetrics, error) {
	labels := prometheus.Labels{"channel": name}

	m := &channelMetrics{
		reg:  registry,
		name: name,
		kind: kind,
		sends: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "kanal",
			Subsystem:   "channel",
			Name:        "sends_total",
			ConstLabels: labels,
			Help:        "Total number of completed sends",
		}),
		recvs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "kanal",
			Subsystem:   "channel",
			Name:        "recvs_total",
			ConstLabels: labels,
			Help:        "Total number of completed receives",
		}),
		handoffs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "kanal",
			Subsystem:   "channel",
			Name:        "handoffs_total",
			ConstLabels: labels,
			Help:        "Total number of direct producer-to-consumer transfers",
		}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "kanal",
			Subsystem:   "channel",
			Name:        "timeouts_total",
			ConstLabels: labels,
			Help:        "Total number of timed operations that expired",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "kanal",
			Subsystem:   "channel",
			Name:        "size",
			ConstLabels: labels,
			Help:        "Current number of buffered values",
		}),
		utilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "kanal",
			Subsystem:   "channel",
			Name:        "utilization",
			ConstLabels: labels,
			Help:        "Buffer utilization for bounded channels (0.0 to 1.0)",
		}),
	}

	if err := registry.RegisterCounter(name, "channel_sends", m.sends); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(name, "channel_recvs", m.recvs); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(name, "channel_handoffs", m.handoffs); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(name, "channel_timeouts", m.timeouts); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(name, "channel_size", m.size); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(name, "channel_utilization", m.utilization); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *channelMetrics) recordOpened() {
	m.reg.CoreMetrics().RecordChannelOpened(m.kind)
}

func (m *channelMetrics) recordClosed(reason string) {
	m.reg.CoreMetrics().RecordChannelClosed(m.kind, reason)
}

func (m *channelMetrics) recordSend() {
	m.sends.Inc()
}

func (m *channelMetrics) recordRecv() {
	m.recvs.Inc()
}

func (m *channelMetrics) recordHandoff() {
	m.handoffs.Inc()
	m.reg.CoreMetrics().RecordTransfer(m.name, "handoff")
}

func (m *channelMetrics) recordBuffered() {
	m.reg.CoreMetrics().RecordTransfer(m.name, "buffer")
}

func (m *channelMetrics) recordTimeout() {
	m.timeouts.Inc()
}

// updateSize sets the buffered-size gauge and, for bounded channels, the
// utilization gauge.
func (m *channelMetrics) updateSize(size, capacity int) {
	m.size.Set(float64(size))
	if capacity > 0 {
		m.utilization.Set(float64(size) / float64(capacity))
	}
}

// updateParked refreshes the core parked-waiter gauges.
func (m *channelMetrics) updateParked(senders, receivers int) {
	core := m.reg.CoreMetrics()
	core.WaitersParked.WithLabelValues(m.name, "send").Set(float64(senders))
	core.WaitersParked.WithLabelValues(m.name, "recv").Set(float64(receivers))
}

// observeWait records how long a parked operation waited before
// resolving.
func (m *channelMetrics) observeWait(side string, d time.Duration) {
	m.reg.CoreMetrics().WaitDuration.WithLabelValues(m.name, side).Observe(d.Seconds())
}

// recordOpError records a channel operation that returned an error.
func (m *channelMetrics) recordOpError(op string, err error) {
	m.reg.CoreMetrics().RecordOperationError(m.name, op, errLabel(err))
}

// errLabel maps sentinel errors to low-cardinality label values.
func errLabel(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrSendClosed):
		return "send_closed"
	case stderrors.Is(err, errors.ErrReceiveClosed):
		return "receive_closed"
	case stderrors.Is(err, errors.ErrClosed):
		return "closed"
	case stderrors.Is(err, errors.ErrFull):
		return "full"
	case stderrors.Is(err, errors.ErrEmpty):
		return "empty"
	case stderrors.Is(err, errors.ErrTimeout):
		return "timeout"
	default:
		return "other"
	}
}
