package kanal

import (
	"sync/atomic"

	"github.com/sabify/kanal/errors"
	"github.com/sabify/kanal/internal/signal"
)

// AsyncOp is a pending completion-callback operation started by
// SendAsync or RecvAsync. The zero value is not usable.
type AsyncOp[T any] struct {
	c      *core[T]
	sig    *signal.Signal[T] // nil when the operation completed inline
	isSend bool
	onDrop func()
}

// Done reports whether the operation has resolved (its callback has run
// or is running).
func (op *AsyncOp[T]) Done() bool {
	if op.sig == nil {
		return true
	}
	_, resolved := op.sig.TryOutcome()
	return resolved
}

// Cancel deregisters the pending operation before it completes; the
// callback then runs exactly once with ErrCanceled. Cancel reports
// whether it won: false means the operation completed (or is completing)
// and the callback observes the real outcome instead — a value handed
// off concurrently is never lost.
func (op *AsyncOp[T]) Cancel() bool {
	if op.sig == nil {
		return false
	}

	c := op.c
	var removed bool
	if op.isSend {
		removed = c.cancelSend(op.sig)
	} else {
		removed = c.cancelRecv(op.sig)
	}
	if removed {
		c.stats.Cancel()
		op.onDrop()
	}
	return removed
}

// SendAsync delivers v without parking the calling goroutine. The
// callback runs exactly once with the outcome: inline before SendAsync
// returns when a fast path applies, otherwise on the goroutine that
// completes the transfer. A nil callback is misuse and panics.
func (s *Sender[T]) SendAsync(v T, fn func(error)) *AsyncOp[T] {
	if fn == nil {
		panic(errors.ErrNilCallback)
	}

	c := s.c
	c.mu.Lock()
	done, fire, err := c.sendFast(v)
	if done {
		c.mu.Unlock()
		fn(c.finishSend(v, fire, err))
		return &AsyncOp[T]{c: c, isSend: true}
	}

	var sig *signal.Signal[T]
	var ran atomic.Bool
	sig = signal.NewWakerValue(v, func() {
		if !ran.CompareAndSwap(false, true) {
			return
		}
		out, _ := sig.TryOutcome()
		fn(c.settleSend(out))
	})
	c.parkSendLocked(sig)
	c.mu.Unlock()

	return &AsyncOp[T]{
		c:      c,
		sig:    sig,
		isSend: true,
		onDrop: func() {
			if ran.CompareAndSwap(false, true) {
				fn(errors.ErrCanceled)
			}
		},
	}
}

// RecvAsync receives a value without parking the calling goroutine,
// with the same callback contract as SendAsync. A nil callback is
// misuse and panics.
func (r *Receiver[T]) RecvAsync(fn func(T, error)) *AsyncOp[T] {
	if fn == nil {
		panic(errors.ErrNilCallback)
	}

	c := r.c
	c.mu.Lock()
	v, ok, taken, buffered, err := c.recvFast()
	if ok || err != nil {
		c.mu.Unlock()
		if err != nil {
			fn(v, err)
		} else {
			fn(c.finishRecv(v, taken, buffered), nil)
		}
		return &AsyncOp[T]{c: c}
	}

	var sig *signal.Signal[T]
	var ran atomic.Bool
	sig = signal.NewWaker[T](func() {
		if !ran.CompareAndSwap(false, true) {
			return
		}
		out, _ := sig.TryOutcome()
		fn(c.settleRecv(sig, out))
	})
	c.parkRecvLocked(sig)
	c.mu.Unlock()

	return &AsyncOp[T]{
		c:   c,
		sig: sig,
		onDrop: func() {
			var zero T
			if ran.CompareAndSwap(false, true) {
				fn(zero, errors.ErrCanceled)
			}
		},
	}
}
