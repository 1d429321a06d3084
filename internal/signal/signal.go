// Package signal implements the single-shot wakeup primitive used by the
// channel engine to park pending senders and receivers.
//
// A Signal is a one-shot slot with a payload cell. It is created armed,
// pushed onto one of the channel's waiter queues under the channel lock,
// and later resolved exactly once: fired with a payload (direct handoff),
// fired as taken (a parked sender's payload was consumed), fired with a
// close notice, or terminated by the waiter after it removed itself from
// the queue.
//
// Two wake backends share the same atomic state machine:
//
//   - parked: the waiter blocks its goroutine on an internal channel,
//     optionally racing a timer or a context. The Go runtime parks the
//     goroutine directly on the channel receive.
//   - waker: resolution invokes a registered callback on the firing
//     goroutine. Used by the completion-callback front-end, where no
//     goroutine is parked at all.
//
// Queue membership, guarded by the channel lock, is the cancellation
// authority: a waiter may only Terminate a signal it successfully removed
// from its queue. A signal that was popped by the counterpart is
// guaranteed to be fired, so a waiter that loses the removal race must
// wait (or poll) for the in-flight resolution and absorb its outcome.
// The atomic state exists because firing happens after the channel lock
// is released; it orders the payload write against the waiter's read and
// makes a second resolution a detectable no-op.
package signal

import (
	"context"
	"sync/atomic"
	"time"
)

// Signal states. A signal starts armed and transitions exactly once.
// stateFiring is a transient state owned by the winning Fire call while
// it writes the payload; it is never observable through a wake.
const (
	stateArmed uint32 = iota
	stateFiring
	stateDelivered
	stateClosed
	stateTerminated
)

// Outcome reports how a resolved signal was resolved.
type Outcome int

const (
	// Delivered means the payload was transferred: a parked receiver got a
	// value, or a parked sender's value was taken by a receiver.
	Delivered Outcome = iota
	// Closed means the channel closed while the signal was parked.
	Closed
)

// Signal is a single-shot wakeup slot with a payload cell of type T.
// Exactly one pending send or receive operation owns each signal.
type Signal[T any] struct {
	state atomic.Uint32
	value T
	done  chan struct{} // parked backend, nil for waker signals
	wake  func()        // waker backend, nil for parked signals
}

// NewParked returns an armed signal whose waiter will block on Wait,
// WaitTimeout, or WaitContext. Used by parked receivers.
func NewParked[T any]() *Signal[T] {
	return &Signal[T]{done: make(chan struct{})}
}

// NewParkedValue returns an armed parked signal carrying v. Used by
// parked senders: the counterpart reads the payload with Value and
// resolves the signal with FireTaken.
func NewParkedValue[T any](v T) *Signal[T] {
	return &Signal[T]{value: v, done: make(chan struct{})}
}

// NewWaker returns an armed signal resolved by invoking wake on the
// firing goroutine. The callback must be non-blocking; it typically
// reads the outcome with TryOutcome and runs a user completion handler.
func NewWaker[T any](wake func()) *Signal[T] {
	return &Signal[T]{wake: wake}
}

// NewWakerValue returns an armed waker signal carrying v.
func NewWakerValue[T any](v T, wake func()) *Signal[T] {
	return &Signal[T]{value: v, wake: wake}
}

// Fire delivers v to the signal and wakes its waiter. It reports whether
// this call resolved the signal; false means the signal was already
// resolved and v was not delivered.
func (s *Signal[T]) Fire(v T) bool {
	if !s.state.CompareAndSwap(stateArmed, stateFiring) {
		return false
	}
	// Only the CAS winner reaches the payload cell, and the store below
	// publishes the write before any waiter can observe stateDelivered.
	s.value = v
	s.state.Store(stateDelivered)
	s.notify()
	return true
}

// FireTaken marks the signal's existing payload as consumed and wakes
// the waiter with a Delivered outcome. Used against parked senders after
// the counterpart has read Value.
func (s *Signal[T]) FireTaken() bool {
	if !s.state.CompareAndSwap(stateArmed, stateDelivered) {
		return false
	}
	s.notify()
	return true
}

// FireClosed wakes the waiter with a Closed outcome.
func (s *Signal[T]) FireClosed() bool {
	if !s.state.CompareAndSwap(stateArmed, stateClosed) {
		return false
	}
	s.notify()
	return true
}

// Terminate marks the signal canceled. The caller must have removed the
// signal from its waiter queue under the channel lock first; after that
// removal no counterpart can fire it.
func (s *Signal[T]) Terminate() {
	s.state.CompareAndSwap(stateArmed, stateTerminated)
}

// Value returns the payload cell. Valid on a sender signal popped from
// its queue (the payload was written before the push), and on a receiver
// signal whose outcome is Delivered.
func (s *Signal[T]) Value() T {
	return s.value
}

// Wait blocks until the signal is resolved and returns the outcome.
// Only valid on parked signals.
func (s *Signal[T]) Wait() Outcome {
	<-s.done
	return s.outcome()
}

// WaitTimeout blocks until the signal is resolved or d elapses. The
// second return is false on expiry; the signal is then still armed from
// the waiter's perspective and must be canceled (queue removal plus
// Terminate) or re-waited.
func (s *Signal[T]) WaitTimeout(d time.Duration) (Outcome, bool) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-s.done:
		return s.outcome(), true
	case <-timer.C:
		return 0, false
	}
}

// WaitContext blocks until the signal is resolved or ctx is done. The
// second return is false on context expiry, with the same contract as
// WaitTimeout.
func (s *Signal[T]) WaitContext(ctx context.Context) (Outcome, bool) {
	select {
	case <-s.done:
		return s.outcome(), true
	case <-ctx.Done():
		return 0, false
	}
}

// TryOutcome reports the outcome without blocking. The second return is
// false while the signal is still armed or a fire is mid-flight. A
// terminated signal reports Closed; its owner never observes that,
// having terminated it itself.
func (s *Signal[T]) TryOutcome() (Outcome, bool) {
	switch s.state.Load() {
	case stateArmed, stateFiring:
		return 0, false
	case stateDelivered:
		return Delivered, true
	default:
		return Closed, true
	}
}

func (s *Signal[T]) outcome() Outcome {
	if s.state.Load() == stateDelivered {
		return Delivered
	}
	return Closed
}

func (s *Signal[T]) notify() {
	if s.done != nil {
		close(s.done)
	}
	if s.wake != nil {
		s.wake()
	}
}
