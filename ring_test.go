package kanal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingPushPop(t *testing.T) {
	r := newRing[int](4)
	assert.Equal(t, 0, r.len())

	_, ok := r.pop()
	assert.False(t, ok)

	for i := 1; i <= 4; i++ {
		r.push(i)
	}
	assert.Equal(t, 4, r.len())

	for i := 1; i <= 4; i++ {
		v, ok := r.pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	assert.Equal(t, 0, r.len())
}

func TestRingWrapAround(t *testing.T) {
	r := newRing[int](3)
	r.push(1)
	r.push(2)
	v, _ := r.pop()
	assert.Equal(t, 1, v)

	// head wraps past the end of the backing slice.
	r.push(3)
	r.push(4)
	assert.Equal(t, 3, r.len())

	for want := 2; want <= 4; want++ {
		v, ok := r.pop()
		require.True(t, ok)
		assert.Equal(t, want, v)
	}
}

func TestRingGrowPreservesOrder(t *testing.T) {
	r := newRing[int](-1)

	// Push past the starting allocation with a wrapped tail.
	for i := 0; i < 10; i++ {
		r.push(i)
	}
	for i := 0; i < 5; i++ {
		r.pop()
	}
	for i := 10; i < 100; i++ {
		r.push(i)
	}

	assert.Equal(t, 95, r.len())
	for want := 5; want < 100; want++ {
		v, ok := r.pop()
		require.True(t, ok)
		assert.Equal(t, want, v)
	}
}

func TestRingDrain(t *testing.T) {
	r := newRing[string](4)
	assert.Nil(t, r.drain())

	r.push("a")
	r.push("b")
	r.push("c")
	assert.Equal(t, []string{"a", "b", "c"}, r.drain())
	assert.Equal(t, 0, r.len())
}
