// Package kanal provides a multi-producer multi-consumer channel with
// rendezvous, bounded, and unbounded capacities, usable from blocking,
// timed, context-aware, and completion-callback call sites over a single
// shared engine.
//
// # Philosophy: One Engine, Many Front-Ends
//
// A kanal channel is one piece of shared state - a buffer, two waiter
// queues, and a mutex - with several ways to drive it:
//
//   - Blocking: Send/Recv park the calling goroutine until the transfer
//     completes or the channel closes.
//   - Non-blocking: TrySend/TryRecv fail fast with ErrFull/ErrEmpty.
//   - Timed: SendTimeout/RecvTimeout bound the wait with a deadline.
//   - Context-aware: SendContext/RecvContext integrate with
//     cancellation trees.
//   - Completion callbacks: SendAsync/RecvAsync never park; the callback
//     runs when the transfer resolves, on whichever goroutine resolved it.
//
// All front-ends share the same admission logic, so a blocking sender can
// hand a value directly to a callback-based receiver and vice versa.
//
// # Direct Handoff
//
// The engine prefers moving values directly between a producer and a
// parked consumer over staging them in the buffer:
//
//	Send(v)                          Recv()
//	  │                                │
//	  ├─ parked receiver? ──fire(v)──→ wakes with v   (handoff)
//	  ├─ buffer has room? ─ push(v)    │
//	  └─ otherwise park    ←──take(v)──┤              (handoff)
//	                                   ├─ buffered value? pop
//	                                   └─ otherwise park
//
// A rendezvous channel (capacity zero) has no buffer at all; every
// transfer is a handoff. Receives from a non-empty buffer backfill the
// freed slot from the longest-waiting parked sender, so values never
// reorder relative to their send order.
//
// # Handles and Close Semantics
//
// Construction returns a Sender and a Receiver handle pair. Handles are
// cloned, not copied: Clone increments a side's live count and Close
// decrements it. When the last sender closes, receivers drain the buffer
// and then observe ErrSendClosed. When the last receiver closes, anything
// still buffered is discarded and senders observe ErrReceiveClosed
// immediately. Shutdown closes both sides at once regardless of
// outstanding handles. Double Close is a no-op.
//
// # Timeouts and Cancellation
//
// A timed or context-aware waiter that gives up must remove itself from
// its waiter queue; the removal is the only cancellation authority. When
// the removal races a concurrent delivery and loses, the operation
// completes with the real outcome instead - a value handed to a "timed
// out" receiver is never dropped on the floor.
//
// # Packages
//
//   - kanal: channel construction, handles, statistics, config
//   - errors: sentinel errors, retryable/terminal classification
//   - metric: Prometheus registry and channel instruments
//   - pkg/worker: worker pool consuming from a kanal channel
//   - pkg/retry: retry policies for retryable channel errors
//
// # Usage
//
// Basic bounded channel:
//
//	tx, rx, err := kanal.Bounded[string](64)
//	if err != nil {
//	    return err
//	}
//	defer tx.Close()
//	defer rx.Close()
//
//	go func() {
//	    tx.Send("hello")
//	}()
//	v, err := rx.Recv()
//
// Fan-in from many producers:
//
//	for i := 0; i < producers; i++ {
//	    tx := tx.Clone()
//	    go func() {
//	        defer tx.Close()
//	        tx.Send(produce())
//	    }()
//	}
//	tx.Close() // receivers see ErrSendClosed once every producer is done
//
// Completion callbacks, no goroutine parked:
//
//	op := rx.RecvAsync(func(v string, err error) {
//	    if err != nil {
//	        return
//	    }
//	    handle(v)
//	})
//	// later, if the value no longer matters:
//	op.Cancel()
//
// Observability:
//
//	registry := metric.NewMetricsRegistry()
//	tx, rx, _ := kanal.Bounded[Job](128,
//	    kanal.WithName[Job]("jobs"),
//	    kanal.WithMetrics[Job](registry),
//	)
//	fmt.Println(tx.Stats().Summary())
package kanal
