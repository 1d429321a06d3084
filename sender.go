package kanal

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sabify/kanal/errors"
	"github.com/sabify/kanal/internal/signal"
)

// Sender is the producing side of a channel. Senders may be cloned; the
// channel closes when the last live sender is closed, when the last live
// receiver is closed, or when Shutdown is called. All methods are safe
// for concurrent use.
type Sender[T any] struct {
	c        *core[T]
	released atomic.Bool
}

// Send delivers v, parking the calling goroutine until a receiver takes
// it or buffer space frees up. It prefers a direct handoff to a parked
// receiver over buffering. On error the caller still owns v.
func (s *Sender[T]) Send(v T) error {
	c := s.c
	c.mu.Lock()
	done, fire, err := c.sendFast(v)
	if done {
		c.mu.Unlock()
		return c.finishSend(v, fire, err)
	}

	sig := signal.NewParkedValue(v)
	c.parkSendLocked(sig)
	c.mu.Unlock()

	start := time.Now()
	out := sig.Wait()
	c.noteWait("send", start)
	return c.settleSend(out)
}

// TrySend delivers v without ever parking. It returns ErrFull when the
// buffer is at capacity (or, on a rendezvous channel, when no receiver
// is parked), and a closed-state error once the channel is closed.
func (s *Sender[T]) TrySend(v T) error {
	c := s.c
	c.mu.Lock()
	done, fire, err := c.sendFast(v)
	c.mu.Unlock()

	if !done {
		c.noteOpError("try_send", errors.ErrFull)
		return errors.ErrFull
	}
	return c.finishSend(v, fire, err)
}

// SendTimeout is Send with a deadline. On ErrTimeout the value never
// left the caller; a timeout that loses the race to a concurrent
// receive is reported as success, because the value was delivered.
func (s *Sender[T]) SendTimeout(v T, d time.Duration) error {
	c := s.c
	c.mu.Lock()
	done, fire, err := c.sendFast(v)
	if done {
		c.mu.Unlock()
		return c.finishSend(v, fire, err)
	}

	sig := signal.NewParkedValue(v)
	c.parkSendLocked(sig)
	c.mu.Unlock()

	start := time.Now()
	out, ok := sig.WaitTimeout(d)
	if !ok {
		if c.cancelSend(sig) {
			c.stats.Timeout()
			if c.metrics != nil {
				c.metrics.recordTimeout()
				c.noteOpError("send", errors.ErrTimeout)
			}
			return errors.ErrTimeout
		}
		// A receiver popped the signal first; the transfer is in flight
		// and must be absorbed as a completed send.
		out = sig.Wait()
	}
	c.noteWait("send", start)
	return c.settleSend(out)
}

// SendContext is Send honoring context cancellation. A cancellation that
// loses the race to a concurrent receive is reported as success.
func (s *Sender[T]) SendContext(ctx context.Context, v T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c := s.c
	c.mu.Lock()
	done, fire, err := c.sendFast(v)
	if done {
		c.mu.Unlock()
		return c.finishSend(v, fire, err)
	}

	sig := signal.NewParkedValue(v)
	c.parkSendLocked(sig)
	c.mu.Unlock()

	start := time.Now()
	out, ok := sig.WaitContext(ctx)
	if !ok {
		if c.cancelSend(sig) {
			c.stats.Cancel()
			return ctx.Err()
		}
		out = sig.Wait()
	}
	c.noteWait("send", start)
	return c.settleSend(out)
}

// Clone returns a new handle sharing the same channel and increments the
// live sender count. Cloning a closed channel yields a handle whose
// operations fail with a closed-state error.
func (s *Sender[T]) Clone() *Sender[T] {
	s.c.cloneSender()
	return &Sender[T]{c: s.c}
}

// Close releases this handle. Closing the last live sender closes the
// channel: parked receivers wake with a closed-state error once the
// buffer is drained. Close is idempotent per handle and always nil.
func (s *Sender[T]) Close() error {
	if s.released.CompareAndSwap(false, true) {
		s.c.releaseSender()
	}
	return nil
}

// Shutdown closes the channel completely on both sides, waking every
// parked operation. Reports whether this call performed the close.
func (s *Sender[T]) Shutdown() bool {
	return s.c.shutdown()
}

// IsClosed reports whether the channel is closed.
func (s *Sender[T]) IsClosed() bool {
	return s.c.isClosed()
}

// IsDisconnected reports whether every receiver handle has been closed,
// making all future sends fail.
func (s *Sender[T]) IsDisconnected() bool {
	c := s.c
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recvCount == 0
}

// Len returns the number of currently buffered values.
func (s *Sender[T]) Len() int {
	return s.c.length()
}

// IsEmpty reports whether the channel buffer holds no values.
func (s *Sender[T]) IsEmpty() bool {
	return s.c.length() == 0
}

// Capacity returns the channel's capacity. The second return is false
// for unbounded channels; a capacity of zero with true means rendezvous.
func (s *Sender[T]) Capacity() (int, bool) {
	if s.c.capacity == capacityUnbounded {
		return 0, false
	}
	return s.c.capacity, true
}

// ID returns the channel's unique instance id.
func (s *Sender[T]) ID() string {
	return s.c.id
}

// Name returns the channel's configured name.
func (s *Sender[T]) Name() string {
	return s.c.name
}

// Stats returns the channel's always-on statistics.
func (s *Sender[T]) Stats() *Statistics {
	return s.c.stats
}
