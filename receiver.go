package kanal

import (
	"context"
	"iter"
	"sync/atomic"
	"time"

	"github.com/sabify/kanal/errors"
	"github.com/sabify/kanal/internal/signal"
)

// Receiver is the consuming side of a channel. Receivers may be cloned;
// buffered values remain receivable after the channel closes, until the
// buffer is empty. All methods are safe for concurrent use.
type Receiver[T any] struct {
	c        *core[T]
	released atomic.Bool
}

// Recv returns the next value, parking the calling goroutine until one
// is available. Buffered values are returned first, even on a closed
// channel; once the buffer is empty a closed channel fails with a
// closed-state error.
func (r *Receiver[T]) Recv() (T, error) {
	c := r.c
	c.mu.Lock()
	v, ok, taken, buffered, err := c.recvFast()
	if ok || err != nil {
		c.mu.Unlock()
		if err != nil {
			return v, err
		}
		return c.finishRecv(v, taken, buffered), nil
	}

	sig := signal.NewParked[T]()
	c.parkRecvLocked(sig)
	c.mu.Unlock()

	start := time.Now()
	out := sig.Wait()
	c.noteWait("recv", start)
	return c.settleRecv(sig, out)
}

// TryRecv returns the next value without ever parking. It returns
// ErrEmpty when nothing is immediately available on an open channel.
func (r *Receiver[T]) TryRecv() (T, error) {
	c := r.c
	c.mu.Lock()
	v, ok, taken, buffered, err := c.recvFast()
	c.mu.Unlock()

	if err != nil {
		return v, err
	}
	if !ok {
		c.noteOpError("try_recv", errors.ErrEmpty)
		return v, errors.ErrEmpty
	}
	return c.finishRecv(v, taken, buffered), nil
}

// RecvTimeout is Recv with a deadline. A timeout that loses the race to
// a concurrent send returns the delivered value instead of ErrTimeout;
// the value is never lost or double-delivered.
func (r *Receiver[T]) RecvTimeout(d time.Duration) (T, error) {
	c := r.c
	c.mu.Lock()
	v, ok, taken, buffered, err := c.recvFast()
	if ok || err != nil {
		c.mu.Unlock()
		if err != nil {
			return v, err
		}
		return c.finishRecv(v, taken, buffered), nil
	}

	sig := signal.NewParked[T]()
	c.parkRecvLocked(sig)
	c.mu.Unlock()

	start := time.Now()
	out, resolved := sig.WaitTimeout(d)
	if !resolved {
		if c.cancelRecv(sig) {
			c.stats.Timeout()
			if c.metrics != nil {
				c.metrics.recordTimeout()
				c.noteOpError("recv", errors.ErrTimeout)
			}
			var zero T
			return zero, errors.ErrTimeout
		}
		// A sender popped the signal first; accept the in-flight value.
		out = sig.Wait()
	}
	c.noteWait("recv", start)
	return c.settleRecv(sig, out)
}

// RecvContext is Recv honoring context cancellation, with the same
// race-acceptance rule as RecvTimeout.
func (r *Receiver[T]) RecvContext(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	c := r.c
	c.mu.Lock()
	v, ok, taken, buffered, err := c.recvFast()
	if ok || err != nil {
		c.mu.Unlock()
		if err != nil {
			return v, err
		}
		return c.finishRecv(v, taken, buffered), nil
	}

	sig := signal.NewParked[T]()
	c.parkRecvLocked(sig)
	c.mu.Unlock()

	start := time.Now()
	out, resolved := sig.WaitContext(ctx)
	if !resolved {
		if c.cancelRecv(sig) {
			c.stats.Cancel()
			return zero, ctx.Err()
		}
		out = sig.Wait()
	}
	c.noteWait("recv", start)
	return c.settleRecv(sig, out)
}

// Drain removes and returns everything currently deliverable: all
// buffered values plus the payloads of any parked senders, in FIFO
// order. It never parks.
func (r *Receiver[T]) Drain() []T {
	c := r.c
	c.mu.Lock()
	var out []T
	if c.buf != nil {
		out = c.buf.drain()
	}
	var fires []*signal.Signal[T]
	for {
		p := c.sendWait.Pop()
		if p == nil {
			break
		}
		out = append(out, p.Value())
		fires = append(fires, p)
	}
	c.noteBufferLocked()
	c.noteParkedLocked()
	c.mu.Unlock()

	for _, p := range fires {
		p.FireTaken()
	}
	for range out {
		c.stats.Recv()
		if c.metrics != nil {
			c.metrics.recordRecv()
		}
	}
	return out
}

// Iter returns an iterator over received values, terminating when the
// channel is closed and drained.
func (r *Receiver[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, err := r.Recv()
			if err != nil {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Clone returns a new handle sharing the same channel and increments the
// live receiver count.
func (r *Receiver[T]) Clone() *Receiver[T] {
	r.c.cloneReceiver()
	return &Receiver[T]{c: r.c}
}

// Close releases this handle. Closing the last live receiver closes the
// channel and discards any buffered values: parked and future senders
// fail with ErrReceiveClosed rather than filling a buffer nobody will
// drain. Close is idempotent per handle and always nil.
func (r *Receiver[T]) Close() error {
	if r.released.CompareAndSwap(false, true) {
		r.c.releaseReceiver()
	}
	return nil
}

// Shutdown closes the channel completely on both sides, waking every
// parked operation. Reports whether this call performed the close.
func (r *Receiver[T]) Shutdown() bool {
	return r.c.shutdown()
}

// IsClosed reports whether the channel is closed.
func (r *Receiver[T]) IsClosed() bool {
	return r.c.isClosed()
}

// IsDisconnected reports whether every sender handle has been closed.
// Buffered values may still be receivable.
func (r *Receiver[T]) IsDisconnected() bool {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendCount == 0
}

// Len returns the number of currently buffered values.
func (r *Receiver[T]) Len() int {
	return r.c.length()
}

// IsEmpty reports whether the buffer is empty.
func (r *Receiver[T]) IsEmpty() bool {
	return r.c.length() == 0
}

// Capacity returns the channel's capacity. The second return is false
// for unbounded channels; a capacity of zero with true means rendezvous.
func (r *Receiver[T]) Capacity() (int, bool) {
	if r.c.capacity == capacityUnbounded {
		return 0, false
	}
	return r.c.capacity, true
}

// ID returns the channel's unique instance id.
func (r *Receiver[T]) ID() string {
	return r.c.id
}

// Name returns the channel's configured name.
func (r *Receiver[T]) Name() string {
	return r.c.name
}

// Stats returns the channel's always-on statistics.
func (r *Receiver[T]) Stats() *Statistics {
	return r.c.stats
}
