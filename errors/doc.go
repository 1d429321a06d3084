// Package errors provides standardized error handling for kanal channel operations.
//
// # Overview
//
// The errors package defines the sentinel errors returned by channel
// operations together with a two-class classification system: Retryable
// (the operation may succeed if attempted again: full buffer, empty
// buffer, timeout, cancellation) and Terminal (the operation can never
// succeed: the channel, or the counterpart side of it, is closed).
//
// Classification lets callers decide between backing off and giving up
// without matching on error strings, and integrates with Go's standard
// error handling (errors.Is, errors.As, wrapping chains).
//
// # Quick Start
//
// Channel operations return sentinel errors directly:
//
//	if err := sender.TrySend(v); err != nil {
//	    if errors.IsRetryable(err) {
//	        // buffer full right now, try again later
//	    } else {
//	        // channel closed, stop producing
//	    }
//	}
//
// Wrap errors with context when crossing component boundaries:
//
//	if err := pool.Submit(task); err != nil {
//	    return errors.Wrap(err, "Dispatcher", "Submit", "task enqueue")
//	}
//
// # Closed-State Errors
//
// Three terminal sentinels describe how a channel became unusable:
//
//   - ErrClosed: the channel is closed on both sides
//   - ErrSendClosed: every sender handle has been closed (receivers may
//     still drain buffered values; once the buffer is empty, receives
//     fail with this)
//   - ErrReceiveClosed: every receiver handle has been closed
//
// IsClosed reports true for all three; most callers only need that.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: <underlying error>"
//
// WrapRetryable and WrapTerminal additionally attach a classification
// that survives further wrapping.
package errors
