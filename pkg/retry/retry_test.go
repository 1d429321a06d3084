package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/sabify/kanal/errors"
)

func TestDoSucceedsAfterRetries(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Config{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}, func() error {
		attempts++
		if attempts < 3 {
			return kerrors.ErrFull
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoExhaustsAttempts(t *testing.T) {
	attempts := 0
	sentinel := errors.New("still failing")
	err := Do(context.Background(), Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
	}, func() error {
		attempts++
		return sentinel
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsOnTerminalError(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), DefaultConfig(), func() error {
		attempts++
		return kerrors.ErrClosed
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, kerrors.ErrClosed)
	assert.Equal(t, 1, attempts, "terminal errors must not be retried")
}

func TestDoStopsOnNonRetryableWrapper(t *testing.T) {
	attempts := 0
	sentinel := errors.New("bad input")
	err := Do(context.Background(), DefaultConfig(), func() error {
		attempts++
		return NonRetryable(sentinel)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, attempts)
}

func TestDoRespectsContextDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := Do(ctx, Config{
		MaxAttempts:  10,
		InitialDelay: time.Second,
		MaxDelay:     time.Second,
	}, func() error {
		return kerrors.ErrFull
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoValidatesConfig(t *testing.T) {
	err := Do(context.Background(), Config{InitialDelay: -1}, func() error { return nil })
	require.Error(t, err)

	err = Do(context.Background(), Config{
		InitialDelay: time.Second,
		MaxDelay:     time.Millisecond,
	}, func() error { return nil })
	require.Error(t, err)
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	v, err := DoWithResult(context.Background(), Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
	}, func() (int, error) {
		attempts++
		if attempts < 2 {
			return 0, kerrors.ErrEmpty
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestIsNonRetryable(t *testing.T) {
	assert.True(t, IsNonRetryable(kerrors.ErrClosed))
	assert.True(t, IsNonRetryable(NonRetryable(errors.New("x"))))
	assert.False(t, IsNonRetryable(kerrors.ErrFull))
	assert.False(t, IsNonRetryable(kerrors.ErrTimeout))
}
