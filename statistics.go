package kanal

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks channel activity. It is always collected; Prometheus
// metrics are layered on top via the WithMetrics option.
type Statistics struct {
	// Atomic counters for thread-safe updates
	sends    int64
	recvs    int64
	handoffs int64
	timeouts int64
	cancels  int64
	drops    int64

	// Protected by mutex
	mu          sync.RWMutex
	startTime   time.Time
	currentSize int64
	maxSize     int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{
		startTime: time.Now(),
	}
}

// Send records a completed send.
func (s *Statistics) Send() {
	atomic.AddInt64(&s.sends, 1)
}

// Recv records a completed receive.
func (s *Statistics) Recv() {
	atomic.AddInt64(&s.recvs, 1)
}

// Handoff records a direct producer-to-consumer transfer that bypassed
// the buffer.
func (s *Statistics) Handoff() {
	atomic.AddInt64(&s.handoffs, 1)
}

// Timeout records a timed operation that expired before completing.
func (s *Statistics) Timeout() {
	atomic.AddInt64(&s.timeouts, 1)
}

// Cancel records a context or async-operation cancellation that won its
// race against delivery.
func (s *Statistics) Cancel() {
	atomic.AddInt64(&s.cancels, 1)
}

// Drop records a buffered value discarded because the receive side
// closed with items still buffered.
func (s *Statistics) Drop() {
	atomic.AddInt64(&s.drops, 1)
}

// UpdateSize updates the current buffer size.
func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	s.currentSize = size
	if size > s.maxSize {
		s.maxSize = size
	}
	s.mu.Unlock()
}

// Sends returns the total number of completed sends.
func (s *Statistics) Sends() int64 {
	return atomic.LoadInt64(&s.sends)
}

// Recvs returns the total number of completed receives.
func (s *Statistics) Recvs() int64 {
	return atomic.LoadInt64(&s.recvs)
}

// Handoffs returns the total number of direct transfers.
func (s *Statistics) Handoffs() int64 {
	return atomic.LoadInt64(&s.handoffs)
}

// Timeouts returns the total number of expired timed operations.
func (s *Statistics) Timeouts() int64 {
	return atomic.LoadInt64(&s.timeouts)
}

// Cancels returns the total number of successful cancellations.
func (s *Statistics) Cancels() int64 {
	return atomic.LoadInt64(&s.cancels)
}

// Drops returns the total number of discarded buffered values.
func (s *Statistics) Drops() int64 {
	return atomic.LoadInt64(&s.drops)
}

// CurrentSize returns the current number of buffered values.
func (s *Statistics) CurrentSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSize
}

// MaxSize returns the largest number of values the buffer has held.
func (s *Statistics) MaxSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxSize
}

// Throughput returns the average number of sends per second.
func (s *Statistics) Throughput() float64 {
	s.mu.RLock()
	elapsed := time.Since(s.startTime)
	s.mu.RUnlock()

	if elapsed == 0 {
		return 0.0
	}

	return float64(s.Sends()) / elapsed.Seconds()
}

// HandoffRate returns the fraction of completed sends that were direct
// handoffs (0.0 to 1.0).
func (s *Statistics) HandoffRate() float64 {
	sends := s.Sends()
	if sends == 0 {
		return 0.0
	}
	return float64(s.Handoffs()) / float64(sends)
}

// Uptime returns how long the channel has existed.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// StatsSummary is a point-in-time snapshot of all statistics.
type StatsSummary struct {
	Sends       int64         `json:"sends"`
	Recvs       int64         `json:"recvs"`
	Handoffs    int64         `json:"handoffs"`
	Timeouts    int64         `json:"timeouts"`
	Cancels     int64         `json:"cancels"`
	Drops       int64         `json:"drops"`
	CurrentSize int64         `json:"current_size"`
	MaxSize     int64         `json:"max_size"`
	Throughput  float64       `json:"throughput"`
	HandoffRate float64       `json:"handoff_rate"`
	Uptime      time.Duration `json:"uptime"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Sends:       s.Sends(),
		Recvs:       s.Recvs(),
		Handoffs:    s.Handoffs(),
		Timeouts:    s.Timeouts(),
		Cancels:     s.Cancels(),
		Drops:       s.Drops(),
		CurrentSize: s.CurrentSize(),
		MaxSize:     s.MaxSize(),
		Throughput:  s.Throughput(),
		HandoffRate: s.HandoffRate(),
		Uptime:      s.Uptime(),
	}
}
