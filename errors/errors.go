// Package errors provides sentinel errors, classification, and wrapping
// helpers shared by all kanal packages.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorRetryable represents temporary conditions that may clear on retry
	ErrorRetryable ErrorClass = iota
	// ErrorTerminal represents conditions that can never clear
	ErrorTerminal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorRetryable:
		return "retryable"
	case ErrorTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Standard error variables for channel conditions
var (
	// Closed-state errors
	ErrClosed        = errors.New("channel is closed")
	ErrSendClosed    = errors.New("channel send side is closed")
	ErrReceiveClosed = errors.New("channel receive side is closed")

	// Non-blocking operation errors
	ErrFull  = errors.New("channel is full")
	ErrEmpty = errors.New("channel is empty")

	// Timed and cancellable operation errors
	ErrTimeout  = errors.New("channel operation timed out")
	ErrCanceled = errors.New("channel operation canceled")

	// Construction-time misuse
	ErrInvalidCapacity = errors.New("invalid channel capacity")
	ErrNilCallback     = errors.New("completion callback cannot be nil")
	ErrNilRegistry     = errors.New("metrics registry cannot be nil")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsClosed reports whether err indicates the channel (or the relevant
// side of it) is closed. Closed channels never recover.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed) ||
		errors.Is(err, ErrSendClosed) ||
		errors.Is(err, ErrReceiveClosed)
}

// IsRetryable checks whether an error represents a temporary condition
// that may clear if the operation is attempted again.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorRetryable
	}

	if errors.Is(err, ErrFull) ||
		errors.Is(err, ErrEmpty) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrCanceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return true
	}

	return false
}

// IsTerminal checks whether an error represents a condition that can
// never clear, such as a closed channel.
func IsTerminal(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTerminal
	}

	return IsClosed(err) || errors.Is(err, ErrInvalidCapacity) ||
		errors.Is(err, ErrNilCallback) || errors.Is(err, ErrNilRegistry)
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if IsTerminal(err) {
		return ErrorTerminal
	}
	return ErrorRetryable
}

// newClassified creates a new classified error
// This is an internal helper - use WrapRetryable() or WrapTerminal() instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapRetryable wraps an error as retryable with context
func WrapRetryable(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorRetryable, wrappedErr, component, method, wrappedErr.Error())
}

// WrapTerminal wraps an error as terminal with context
func WrapTerminal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorTerminal, wrappedErr, component, method, wrappedErr.Error())
}
