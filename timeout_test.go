package kanal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabify/kanal/errors"
)

func TestSendTimeout(t *testing.T) {
	t.Run("expires on full channel", func(t *testing.T) {
		tx, rx, err := Bounded[int](1)
		require.NoError(t, err)
		defer tx.Close()
		defer rx.Close()

		require.NoError(t, tx.Send(1))

		start := time.Now()
		err = tx.SendTimeout(2, 20*time.Millisecond)
		assert.ErrorIs(t, err, errors.ErrTimeout)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
		assert.Equal(t, int64(1), tx.Stats().Timeouts())

		// The timed-out value must not appear later.
		v, err := rx.Recv()
		require.NoError(t, err)
		assert.Equal(t, 1, v)
		_, err = rx.TryRecv()
		assert.ErrorIs(t, err, errors.ErrEmpty)
	})

	t.Run("completes before deadline", func(t *testing.T) {
		tx, rx, err := Bounded[int](1)
		require.NoError(t, err)
		defer tx.Close()
		defer rx.Close()

		require.NoError(t, tx.Send(1))

		done := make(chan error, 1)
		go func() {
			done <- tx.SendTimeout(2, time.Second)
		}()

		time.Sleep(10 * time.Millisecond)
		_, err = rx.Recv()
		require.NoError(t, err)
		require.NoError(t, <-done)

		v, err := rx.Recv()
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	})

	t.Run("closed channel", func(t *testing.T) {
		tx, rx, err := Bounded[int](1)
		require.NoError(t, err)
		rx.Close()
		defer tx.Close()

		err = tx.SendTimeout(1, time.Millisecond)
		assert.ErrorIs(t, err, errors.ErrReceiveClosed)
	})
}

func TestRecvTimeout(t *testing.T) {
	t.Run("expires on empty channel", func(t *testing.T) {
		tx, rx, err := Bounded[int](1)
		require.NoError(t, err)
		defer tx.Close()
		defer rx.Close()

		_, err = rx.RecvTimeout(20 * time.Millisecond)
		assert.ErrorIs(t, err, errors.ErrTimeout)
		assert.True(t, errors.IsRetryable(err))
		assert.Equal(t, int64(1), rx.Stats().Timeouts())
	})

	t.Run("completes before deadline", func(t *testing.T) {
		tx, rx, err := Bounded[int](1)
		require.NoError(t, err)
		defer tx.Close()
		defer rx.Close()

		go func() {
			time.Sleep(10 * time.Millisecond)
			_ = tx.Send(9)
		}()

		v, err := rx.RecvTimeout(time.Second)
		require.NoError(t, err)
		assert.Equal(t, 9, v)
	})
}

// A value fired concurrently with timeout expiry is never lost: when the
// waiter loses the removal race it reports success instead of a timeout.
func TestTimeoutDeliveryRaceLosesNoValues(t *testing.T) {
	tx, rx, err := Bounded[int](0)
	require.NoError(t, err)
	defer tx.Close()
	defer rx.Close()

	const rounds = 300
	received := 0
	timeouts := 0

	for i := 0; i < rounds; i++ {
		go func() {
			// Race the fire against the deadline below.
			_ = tx.SendTimeout(i, 500*time.Millisecond)
		}()

		v, recvErr := rx.RecvTimeout(time.Duration(i%3) * time.Millisecond)
		if recvErr == nil {
			received++
			assert.Equal(t, i, v)
		} else {
			timeouts++
			require.ErrorIs(t, recvErr, errors.ErrTimeout)
			// Absorb the round's value so iterations stay in lockstep.
			v, recvErr = rx.Recv()
			require.NoError(t, recvErr)
			assert.Equal(t, i, v)
		}
	}

	assert.Equal(t, rounds, received+timeouts)
	assert.Equal(t, int64(rounds), rx.Stats().Recvs())
}

func TestSendContext(t *testing.T) {
	t.Run("cancelled while parked", func(t *testing.T) {
		tx, rx, err := Bounded[int](1)
		require.NoError(t, err)
		defer tx.Close()
		defer rx.Close()

		require.NoError(t, tx.Send(1))

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		err = tx.SendContext(ctx, 2)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int64(1), tx.Stats().Cancels())
	})

	t.Run("pre-cancelled context", func(t *testing.T) {
		tx, rx, err := Bounded[int](4)
		require.NoError(t, err)
		defer tx.Close()
		defer rx.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err = tx.SendContext(ctx, 1)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, tx.Len(), "a cancelled send must not buffer its value")
	})

	t.Run("completes normally", func(t *testing.T) {
		tx, rx, err := Bounded[int](1)
		require.NoError(t, err)
		defer tx.Close()
		defer rx.Close()

		require.NoError(t, tx.SendContext(context.Background(), 5))
		v, err := rx.Recv()
		require.NoError(t, err)
		assert.Equal(t, 5, v)
	})
}

func TestRecvContext(t *testing.T) {
	t.Run("deadline exceeded while parked", func(t *testing.T) {
		tx, rx, err := Bounded[int](1)
		require.NoError(t, err)
		defer tx.Close()
		defer rx.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err = rx.RecvContext(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("completes normally", func(t *testing.T) {
		tx, rx, err := Bounded[int](1)
		require.NoError(t, err)
		defer tx.Close()
		defer rx.Close()

		require.NoError(t, tx.Send(3))
		v, err := rx.RecvContext(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, v)
	})

	t.Run("close while parked", func(t *testing.T) {
		tx, rx, err := Bounded[int](1)
		require.NoError(t, err)
		defer rx.Close()

		go func() {
			time.Sleep(10 * time.Millisecond)
			tx.Close()
		}()

		_, err = rx.RecvContext(context.Background())
		assert.ErrorIs(t, err, errors.ErrSendClosed)
	})
}
