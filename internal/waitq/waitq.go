// Package waitq provides the FIFO queue of parked signals owned by each
// side of a channel. The queue does no locking of its own: every method
// must be called under the channel core's lock.
package waitq

import "github.com/sabify/kanal/internal/signal"

// compactThreshold bounds how much dead prefix a queue may accumulate
// before the backing slice is copied down.
const compactThreshold = 32

// Queue is a FIFO of parked signals. The zero value is ready to use.
type Queue[T any] struct {
	sigs []*signal.Signal[T]
	head int
}

// Push appends sig to the back of the queue.
func (q *Queue[T]) Push(sig *signal.Signal[T]) {
	q.sigs = append(q.sigs, sig)
}

// Pop removes and returns the front signal, or nil when empty.
func (q *Queue[T]) Pop() *signal.Signal[T] {
	if q.head == len(q.sigs) {
		return nil
	}
	sig := q.sigs[q.head]
	q.sigs[q.head] = nil
	q.head++
	q.compact()
	return sig
}

// Remove deletes sig from the queue by identity, preserving the order of
// the rest. It reports whether sig was present; false means the
// counterpart already popped it and a fire is in flight or complete.
func (q *Queue[T]) Remove(sig *signal.Signal[T]) bool {
	for i := q.head; i < len(q.sigs); i++ {
		if q.sigs[i] == sig {
			copy(q.sigs[i:], q.sigs[i+1:])
			q.sigs[len(q.sigs)-1] = nil
			q.sigs = q.sigs[:len(q.sigs)-1]
			q.compact()
			return true
		}
	}
	return false
}

// Drain empties the queue and returns the signals in FIFO order. Used by
// close, which must fire every parked waiter after releasing the lock.
func (q *Queue[T]) Drain() []*signal.Signal[T] {
	if q.head == len(q.sigs) {
		return nil
	}
	out := make([]*signal.Signal[T], len(q.sigs)-q.head)
	copy(out, q.sigs[q.head:])
	q.sigs = nil
	q.head = 0
	return out
}

// Len returns the number of parked signals.
func (q *Queue[T]) Len() int {
	return len(q.sigs) - q.head
}

func (q *Queue[T]) compact() {
	if q.head == len(q.sigs) {
		q.sigs = q.sigs[:0]
		q.head = 0
		return
	}
	if q.head >= compactThreshold && q.head > len(q.sigs)/2 {
		n := copy(q.sigs, q.sigs[q.head:])
		for i := n; i < len(q.sigs); i++ {
			q.sigs[i] = nil
		}
		q.sigs = q.sigs[:n]
		q.head = 0
	}
}
