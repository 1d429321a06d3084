package kanal

// ring is the channel's message buffer: a growable circular buffer of T.
// It does no locking of its own; the channel core's lock guards it.
type ring[T any] struct {
	items []T
	head  int // next write position
	tail  int // next read position
	size  int
}

// unboundedStartingSize is the initial allocation for unbounded buffers,
// which grow by doubling as needed.
const unboundedStartingSize = 32

func newRing[T any](capacity int) *ring[T] {
	if capacity <= 0 {
		capacity = unboundedStartingSize
	}
	return &ring[T]{items: make([]T, capacity)}
}

func (r *ring[T]) push(item T) {
	if r.size == len(r.items) {
		r.grow()
	}
	r.items[r.head] = item
	r.head = (r.head + 1) % len(r.items)
	r.size++
}

func (r *ring[T]) pop() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	item := r.items[r.tail]
	r.items[r.tail] = zero // clear for GC
	r.tail = (r.tail + 1) % len(r.items)
	r.size--
	return item, true
}

func (r *ring[T]) len() int {
	return r.size
}

// grow doubles the backing slice, unwrapping the ring so tail lands at
// index zero. Only reachable for unbounded channels: bounded cores never
// push past their fixed capacity.
func (r *ring[T]) grow() {
	items := make([]T, len(r.items)*2)
	n := copy(items, r.items[r.tail:])
	copy(items[n:], r.items[:r.tail])
	r.items = items
	r.tail = 0
	r.head = r.size
}

// drain empties the buffer and returns its contents in FIFO order.
func (r *ring[T]) drain() []T {
	if r.size == 0 {
		return nil
	}
	out := make([]T, 0, r.size)
	for {
		item, ok := r.pop()
		if !ok {
			return out
		}
		out = append(out, item)
	}
}
