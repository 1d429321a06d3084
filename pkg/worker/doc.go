// Package worker provides a generic worker pool whose work queue is a
// bounded kanal channel.
//
// # Overview
//
// A Pool manages a fixed number of goroutines that process work items of
// any type T from a shared multi-consumer queue:
//   - Generic type support for type-safe work processing
//   - Bounded queue with backpressure (non-blocking Submit)
//   - SubmitRetry with exponential backoff while the queue is full
//   - Context-aware cancellation and graceful drain on Stop
//   - Dual-tracking observability: always-on statistics plus optional
//     Prometheus metrics
//
// All workers receive from one cloned-out channel handle; the channel
// engine hands items directly to idle workers when possible, so under
// light load items skip the buffer entirely. QueueStats exposes the
// channel's own counters, including that handoff rate.
//
// # Usage
//
//	pool, err := worker.NewPool[Job](
//	    5,    // workers
//	    100,  // queue size
//	    func(ctx context.Context, job Job) error {
//	        return process(ctx, job)
//	    },
//	)
//	if err != nil {
//	    return err
//	}
//	if err := pool.Start(ctx); err != nil {
//	    return err
//	}
//	defer pool.Stop(5 * time.Second)
//
//	if err := pool.Submit(job); err != nil {
//	    if errors.Is(err, worker.ErrQueueFull) {
//	        // Backpressure: shed load or use SubmitRetry.
//	    }
//	}
//
// With Prometheus metrics:
//
//	registry := metric.NewMetricsRegistry()
//	pool, err := worker.NewPool[Job](
//	    10, 1000, processJob,
//	    worker.WithMetricsRegistry[Job](registry, "message_processor"),
//	)
//
// # Shutdown Semantics
//
// Stop closes the queue's send side, so items already buffered are still
// processed before workers exit; cancelling the Start context instead
// abandons buffered work immediately. Stop waits up to its timeout for
// workers to finish and returns ErrStopTimeout when they do not.
//
// # Error Handling
//
// Lifecycle errors (ErrPoolNotStarted, ErrPoolStopped,
// ErrPoolAlreadyStarted, ErrNilProcessor, ErrStopTimeout) are plain
// sentinels. ErrQueueFull wraps the channel's ErrFull, so it classifies
// as retryable and works with the retry package unchanged. Processor
// errors are counted and optionally logged but never interpreted.
package worker
