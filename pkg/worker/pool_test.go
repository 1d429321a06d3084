package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabify/kanal/metric"
)

func TestPoolProcessesSubmittedWork(t *testing.T) {
	var processed atomic.Int64
	pool, err := NewPool[int](4, 64, func(_ context.Context, _ int) error {
		processed.Add(1)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, pool.Start(context.Background()))

	for i := 0; i < 50; i++ {
		require.NoError(t, pool.Submit(i))
	}

	require.NoError(t, pool.Stop(5*time.Second))
	assert.Equal(t, int64(50), processed.Load())

	stats := pool.Stats()
	assert.Equal(t, int64(50), stats.Submitted)
	assert.Equal(t, int64(50), stats.Processed)
	assert.Equal(t, int64(0), stats.Failed)
}

func TestPoolLifecycleErrors(t *testing.T) {
	pool, err := NewPool[int](1, 1, func(_ context.Context, _ int) error { return nil })
	require.NoError(t, err)

	assert.ErrorIs(t, pool.Submit(1), ErrPoolNotStarted)

	require.NoError(t, pool.Start(context.Background()))
	assert.ErrorIs(t, pool.Start(context.Background()), ErrPoolAlreadyStarted)

	require.NoError(t, pool.Stop(time.Second))
	assert.ErrorIs(t, pool.Submit(1), ErrPoolStopped)

	// Stop is idempotent.
	require.NoError(t, pool.Stop(time.Second))
}

func TestPoolQueueFull(t *testing.T) {
	block := make(chan struct{})
	pool, err := NewPool[int](1, 1, func(_ context.Context, _ int) error {
		<-block
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, pool.Start(context.Background()))
	defer func() {
		close(block)
		_ = pool.Stop(5 * time.Second)
	}()

	// First item goes to the worker, second fills the buffer; after that
	// submissions must be rejected.
	require.NoError(t, pool.Submit(1))
	require.NoError(t, pool.Submit(2))

	require.Eventually(t, func() bool {
		return errors.Is(pool.Submit(3), ErrQueueFull)
	}, time.Second, time.Millisecond)

	assert.Greater(t, pool.Stats().Dropped, int64(0))
}

func TestPoolSubmitRetry(t *testing.T) {
	release := make(chan struct{})
	pool, err := NewPool[int](1, 1, func(_ context.Context, _ int) error {
		<-release
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, pool.Start(context.Background()))
	defer pool.Stop(5 * time.Second)

	require.NoError(t, pool.Submit(1))
	require.NoError(t, pool.Submit(2))

	var wg sync.WaitGroup
	wg.Add(1)
	var retryErr error
	go func() {
		defer wg.Done()
		retryErr = pool.SubmitRetry(context.Background(), 3)
	}()

	// Unblock the worker so the queue drains and the retry can land.
	close(release)
	wg.Wait()
	require.NoError(t, retryErr)
}

func TestPoolSubmitRetryStopsOnLifecycleError(t *testing.T) {
	pool, err := NewPool[int](1, 1, func(_ context.Context, _ int) error { return nil })
	require.NoError(t, err)

	err = pool.SubmitRetry(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPoolNotStarted)
}

func TestPoolStopDrainsQueue(t *testing.T) {
	var processed atomic.Int64
	slow := func(_ context.Context, _ int) error {
		time.Sleep(time.Millisecond)
		processed.Add(1)
		return nil
	}
	pool, err := NewPool[int](2, 32, slow)
	require.NoError(t, err)
	require.NoError(t, pool.Start(context.Background()))

	for i := 0; i < 20; i++ {
		require.NoError(t, pool.Submit(i))
	}

	require.NoError(t, pool.Stop(5*time.Second))
	assert.Equal(t, int64(20), processed.Load(), "buffered work must finish before Stop returns")
}

func TestPoolContextCancelAbandonsWork(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{}, 1)
	block := make(chan struct{})
	pool, err := NewPool[int](1, 8, func(_ context.Context, _ int) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-block
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, pool.Start(ctx))

	require.NoError(t, pool.Submit(1))
	for i := 0; i < 5; i++ {
		_ = pool.Submit(i)
	}
	<-started

	cancel()
	close(block)
	require.NoError(t, pool.Stop(5*time.Second))
	assert.Less(t, pool.Stats().Processed, int64(6), "cancelled workers must not drain the queue")
}

func TestPoolFailedWorkCounted(t *testing.T) {
	boom := errors.New("boom")
	pool, err := NewPool[int](2, 16, func(_ context.Context, v int) error {
		if v%2 == 0 {
			return boom
		}
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, pool.Start(context.Background()))

	for i := 0; i < 10; i++ {
		require.NoError(t, pool.Submit(i))
	}
	require.NoError(t, pool.Stop(5*time.Second))

	stats := pool.Stats()
	assert.Equal(t, int64(10), stats.Processed)
	assert.Equal(t, int64(5), stats.Failed)
}

func TestPoolWithMetrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	pool, err := NewPool[int](2, 16,
		func(_ context.Context, _ int) error { return nil },
		WithMetricsRegistry[int](registry, "test_pool"),
	)
	require.NoError(t, err)
	require.NoError(t, pool.Start(context.Background()))

	for i := 0; i < 5; i++ {
		require.NoError(t, pool.Submit(i))
	}
	require.NoError(t, pool.Stop(5*time.Second))
	assert.Equal(t, int64(5), pool.Stats().Submitted)
}

func TestPoolDefaults(t *testing.T) {
	pool, err := NewPool[int](0, 0, func(_ context.Context, _ int) error { return nil })
	require.NoError(t, err)

	stats := pool.Stats()
	assert.Equal(t, 10, stats.Workers)
	assert.Equal(t, 1000, stats.QueueSize)

	assert.Panics(t, func() {
		_, _ = NewPool[int](1, 1, nil)
	})
}

func TestPoolQueueStats(t *testing.T) {
	pool, err := NewPool[int](2, 16, func(_ context.Context, _ int) error { return nil })
	require.NoError(t, err)
	require.NoError(t, pool.Start(context.Background()))

	for i := 0; i < 8; i++ {
		require.NoError(t, pool.Submit(i))
	}
	require.NoError(t, pool.Stop(5*time.Second))

	qs := pool.QueueStats()
	assert.Equal(t, int64(8), qs.Sends)
	assert.Equal(t, int64(8), qs.Recvs)
}
