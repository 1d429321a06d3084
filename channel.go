package kanal

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sabify/kanal/errors"
	"github.com/sabify/kanal/internal/signal"
	"github.com/sabify/kanal/internal/waitq"
)

// capacityUnbounded marks a channel with no buffer ceiling.
const capacityUnbounded = -1

// closeReason records what shut a channel down. The first transition
// wins; it determines which closed-state error each side observes.
type closeReason int32

const (
	closeNone closeReason = iota
	// closeExplicit: Shutdown was called on a handle.
	closeExplicit
	// closeSenders: the last sender handle was closed.
	closeSenders
	// closeReceivers: the last receiver handle was closed.
	closeReceivers
)

// core is the shared channel state. A single mutex guards the buffer,
// the handle counts, and both waiter queues; it is never held across a
// park or a wake, so critical sections stay O(1).
type core[T any] struct {
	mu sync.Mutex

	buf      *ring[T] // nil for rendezvous channels
	capacity int      // 0 rendezvous, capacityUnbounded, or > 0

	sendCount int
	recvCount int
	closed    bool
	reason    atomic.Int32 // closeReason, readable without the lock

	sendWait waitq.Queue[T]
	recvWait waitq.Queue[T]

	id      string
	name    string
	stats   *Statistics
	metrics *channelMetrics
}

// Bounded creates a channel whose buffer holds up to capacity values.
// A capacity of zero creates a rendezvous channel: every transfer is a
// direct handoff between one sender and one receiver. A negative
// capacity is misuse and fails fast with ErrInvalidCapacity.
func Bounded[T any](capacity int, options ...Option[T]) (*Sender[T], *Receiver[T], error) {
	if capacity < 0 {
		return nil, nil, errors.WrapTerminal(errors.ErrInvalidCapacity,
			"Channel", "Bounded", "construction")
	}
	return newChannel[T](capacity, options...)
}

// Unbounded creates a channel whose buffer grows without a ceiling.
// Sends never park on capacity.
func Unbounded[T any](options ...Option[T]) (*Sender[T], *Receiver[T], error) {
	return newChannel[T](capacityUnbounded, options...)
}

func newChannel[T any](capacity int, options ...Option[T]) (*Sender[T], *Receiver[T], error) {
	opts := applyOptions(options...)

	c := &core[T]{
		capacity:  capacity,
		sendCount: 1,
		recvCount: 1,
		id:        uuid.NewString(),
		stats:     NewStatistics(),
	}
	if capacity != 0 {
		c.buf = newRing[T](capacity)
	}

	c.name = opts.name
	if c.name == "" {
		c.name = c.id[:8]
	}

	if opts.metricsReg != nil {
		metrics, err := newChannelMetrics(opts.metricsReg, c.name, c.kind())
		if err != nil {
			return nil, nil, err
		}
		c.metrics = metrics
		metrics.recordOpened()
	}

	return &Sender[T]{c: c}, &Receiver[T]{c: c}, nil
}

// kind names the capacity policy for metrics labels.
func (c *core[T]) kind() string {
	switch {
	case c.capacity == 0:
		return "rendezvous"
	case c.capacity == capacityUnbounded:
		return "unbounded"
	default:
		return "bounded"
	}
}

// bufLen returns the buffered length; safe on rendezvous cores.
func (c *core[T]) bufLen() int {
	if c.buf == nil {
		return 0
	}
	return c.buf.len()
}

// bufHasRoom reports whether a value can be buffered right now.
func (c *core[T]) bufHasRoom() bool {
	if c.buf == nil {
		return false
	}
	return c.capacity == capacityUnbounded || c.buf.len() < c.capacity
}

// sendClosedErr maps the close reason to the error a sender observes.
func (c *core[T]) sendClosedErr() error {
	if closeReason(c.reason.Load()) == closeReceivers {
		return errors.ErrReceiveClosed
	}
	return errors.ErrClosed
}

// recvClosedErr maps the close reason to the error a receiver observes
// once the buffer is empty.
func (c *core[T]) recvClosedErr() error {
	if closeReason(c.reason.Load()) == closeSenders {
		return errors.ErrSendClosed
	}
	return errors.ErrClosed
}

// sendFast attempts the non-parking admission paths under the lock:
// closed check, direct handoff to a parked receiver, then buffering.
// When it returns done=false the caller must park. A non-nil fire is a
// receiver signal the caller must resolve with Fire(v) after unlocking.
func (c *core[T]) sendFast(v T) (done bool, fire *signal.Signal[T], err error) {
	if c.closed {
		return true, nil, c.sendClosedErr()
	}
	if sig := c.recvWait.Pop(); sig != nil {
		c.noteParkedLocked()
		return true, sig, nil
	}
	if c.bufHasRoom() {
		c.buf.push(v)
		c.noteBufferLocked()
		if c.metrics != nil {
			c.metrics.recordBuffered()
		}
		return true, nil, nil
	}
	return false, nil, nil
}

// finishSend completes a fast-path send after the lock is released.
func (c *core[T]) finishSend(v T, fire *signal.Signal[T], err error) error {
	if err != nil {
		c.noteOpError("send", err)
		return err
	}
	if fire != nil {
		fire.Fire(v)
		c.stats.Handoff()
		if c.metrics != nil {
			c.metrics.recordHandoff()
		}
	}
	c.stats.Send()
	if c.metrics != nil {
		c.metrics.recordSend()
	}
	return nil
}

// parkSend enqueues a sender signal carrying v. Caller holds the lock.
func (c *core[T]) parkSendLocked(sig *signal.Signal[T]) {
	c.sendWait.Push(sig)
	c.noteParkedLocked()
}

// settleSend maps a parked sender's wake outcome to the caller result.
func (c *core[T]) settleSend(out signal.Outcome) error {
	if out == signal.Delivered {
		// The handoff itself is counted by the receiver that popped us.
		c.stats.Send()
		if c.metrics != nil {
			c.metrics.recordSend()
		}
		return nil
	}
	err := c.sendClosedErr()
	c.noteOpError("send", err)
	return err
}

// cancelSend runs the remove-or-accept race for a parked sender whose
// wait expired. It reports whether cancellation won; false means a
// receiver already popped the signal and the in-flight fire must be
// absorbed by re-waiting.
func (c *core[T]) cancelSend(sig *signal.Signal[T]) bool {
	c.mu.Lock()
	removed := c.sendWait.Remove(sig)
	if removed {
		sig.Terminate()
		c.noteParkedLocked()
	}
	c.mu.Unlock()
	return removed
}

// recvFast attempts the non-parking receive paths under the lock:
// buffered value first (even when closed), then closed check, then
// direct take from a parked sender. A non-nil taken signal must be
// resolved with FireTaken after unlocking; when ok is true and taken is
// non-nil but buffered is false, the value must be read from taken
// before resolving it.
func (c *core[T]) recvFast() (v T, ok bool, taken *signal.Signal[T], buffered bool, err error) {
	if c.bufLen() > 0 {
		v, _ = c.buf.pop()
		// Backfill: pull the longest-waiting parked sender's value into
		// the freed slot so buffer order stays FIFO.
		if p := c.sendWait.Pop(); p != nil {
			c.buf.push(p.Value())
			taken = p
			c.noteParkedLocked()
		}
		c.noteBufferLocked()
		return v, true, taken, true, nil
	}
	if c.closed {
		err = c.recvClosedErr()
		c.noteOpError("recv", err)
		return v, false, nil, false, err
	}
	if p := c.sendWait.Pop(); p != nil {
		c.noteParkedLocked()
		return v, true, p, false, nil
	}
	return v, false, nil, false, nil
}

// finishRecv completes a fast-path receive after the lock is released.
func (c *core[T]) finishRecv(v T, taken *signal.Signal[T], buffered bool) T {
	if taken != nil {
		if !buffered {
			v = taken.Value()
			c.stats.Handoff()
			if c.metrics != nil {
				c.metrics.recordHandoff()
			}
		}
		taken.FireTaken()
	}
	c.stats.Recv()
	if c.metrics != nil {
		c.metrics.recordRecv()
	}
	return v
}

// parkRecv enqueues a receiver signal. Caller holds the lock.
func (c *core[T]) parkRecvLocked(sig *signal.Signal[T]) {
	c.recvWait.Push(sig)
	c.noteParkedLocked()
}

// settleRecv maps a parked receiver's wake outcome to the caller result.
func (c *core[T]) settleRecv(sig *signal.Signal[T], out signal.Outcome) (T, error) {
	var zero T
	if out == signal.Delivered {
		// The handoff itself is counted by the sender that popped us.
		c.stats.Recv()
		if c.metrics != nil {
			c.metrics.recordRecv()
		}
		return sig.Value(), nil
	}
	err := c.recvClosedErr()
	c.noteOpError("recv", err)
	return zero, err
}

// cancelRecv is the receiver-side remove-or-accept race.
func (c *core[T]) cancelRecv(sig *signal.Signal[T]) bool {
	c.mu.Lock()
	removed := c.recvWait.Remove(sig)
	if removed {
		sig.Terminate()
		c.noteParkedLocked()
	}
	c.mu.Unlock()
	return removed
}

// closeLocked transitions the channel to closed and empties both waiter
// queues. The caller must fire every returned signal with FireClosed
// after releasing the lock; parked waiters are never woken under it.
func (c *core[T]) closeLocked(reason closeReason) []*signal.Signal[T] {
	if c.closed {
		return nil
	}
	c.closed = true
	c.reason.Store(int32(reason))

	// With every receiver gone, buffered values can never be drained.
	if reason == closeReceivers && c.bufLen() > 0 {
		dropped := c.buf.drain()
		for range dropped {
			c.stats.Drop()
		}
		c.noteBufferLocked()
	}

	drained := c.sendWait.Drain()
	drained = append(drained, c.recvWait.Drain()...)
	c.noteParkedLocked()

	if c.metrics != nil {
		c.metrics.recordClosed(reasonLabel(reason))
	}
	return drained
}

func reasonLabel(reason closeReason) string {
	switch reason {
	case closeSenders:
		return "senders_gone"
	case closeReceivers:
		return "receivers_gone"
	default:
		return "explicit"
	}
}

// fireClosed resolves drained signals outside the lock.
func fireClosed[T any](sigs []*signal.Signal[T]) {
	for _, sig := range sigs {
		sig.FireClosed()
	}
}

// shutdown closes the channel on both sides regardless of outstanding
// handles. Reports whether this call performed the close.
func (c *core[T]) shutdown() bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.sendCount = 0
	c.recvCount = 0
	drained := c.closeLocked(closeExplicit)
	c.mu.Unlock()

	fireClosed(drained)
	return true
}

// releaseSender drops one live sender; the last one closes the channel.
func (c *core[T]) releaseSender() {
	c.mu.Lock()
	var drained []*signal.Signal[T]
	if c.sendCount > 0 {
		c.sendCount--
		if c.sendCount == 0 {
			drained = c.closeLocked(closeSenders)
		}
	}
	c.mu.Unlock()

	fireClosed(drained)
}

// releaseReceiver drops one live receiver; the last one closes the
// channel and discards anything still buffered.
func (c *core[T]) releaseReceiver() {
	c.mu.Lock()
	var drained []*signal.Signal[T]
	if c.recvCount > 0 {
		c.recvCount--
		if c.recvCount == 0 {
			drained = c.closeLocked(closeReceivers)
		}
	}
	c.mu.Unlock()

	fireClosed(drained)
}

func (c *core[T]) cloneSender() {
	c.mu.Lock()
	if c.sendCount > 0 {
		c.sendCount++
	}
	c.mu.Unlock()
}

func (c *core[T]) cloneReceiver() {
	c.mu.Lock()
	if c.recvCount > 0 {
		c.recvCount++
	}
	c.mu.Unlock()
}

func (c *core[T]) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *core[T]) length() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bufLen()
}

// noteBufferLocked refreshes size tracking after a buffer mutation.
func (c *core[T]) noteBufferLocked() {
	size := c.bufLen()
	c.stats.UpdateSize(int64(size))
	if c.metrics != nil {
		c.metrics.updateSize(size, c.capacity)
	}
}

// noteWait records the parked duration of a resolved operation.
func (c *core[T]) noteWait(side string, start time.Time) {
	if c.metrics != nil {
		c.metrics.observeWait(side, time.Since(start))
	}
}

// noteOpError records an operation error on the metrics backend.
func (c *core[T]) noteOpError(op string, err error) {
	if c.metrics != nil && err != nil {
		c.metrics.recordOpError(op, err)
	}
}

// noteParkedLocked refreshes parked-waiter tracking after a queue
// mutation.
func (c *core[T]) noteParkedLocked() {
	if c.metrics != nil {
		c.metrics.updateParked(c.sendWait.Len(), c.recvWait.Len())
	}
}
