package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorRetryable, "retryable"},
		{ErrorTerminal, "terminal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result := test.class.String()
			if result != test.expected {
				t.Errorf("expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestIsClosed(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"closed", ErrClosed, true},
		{"send closed", ErrSendClosed, true},
		{"receive closed", ErrReceiveClosed, true},
		{"wrapped closed", fmt.Errorf("recv: %w", ErrClosed), true},
		{"full", ErrFull, false},
		{"timeout", ErrTimeout, false},
		{"arbitrary", errors.New("boom"), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsClosed(test.err); got != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, got, test.err)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"full", ErrFull, true},
		{"empty", ErrEmpty, true},
		{"timeout", ErrTimeout, true},
		{"canceled", ErrCanceled, true},
		{"context deadline exceeded", context.DeadlineExceeded, true},
		{"context canceled", context.Canceled, true},
		{"closed", ErrClosed, false},
		{"send closed", ErrSendClosed, false},
		{"classified retryable", &ClassifiedError{Class: ErrorRetryable, Err: fmt.Errorf("test")}, true},
		{"classified terminal", &ClassifiedError{Class: ErrorTerminal, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsRetryable(test.err); got != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, got, test.err)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"closed", ErrClosed, true},
		{"send closed", ErrSendClosed, true},
		{"receive closed", ErrReceiveClosed, true},
		{"invalid capacity", ErrInvalidCapacity, true},
		{"nil callback", ErrNilCallback, true},
		{"full", ErrFull, false},
		{"timeout", ErrTimeout, false},
		{"classified terminal", &ClassifiedError{Class: ErrorTerminal, Err: fmt.Errorf("test")}, true},
		{"classified retryable", &ClassifiedError{Class: ErrorRetryable, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsTerminal(test.err); got != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, got, test.err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	if Classify(ErrClosed) != ErrorTerminal {
		t.Error("expected ErrClosed to classify as terminal")
	}
	if Classify(ErrFull) != ErrorRetryable {
		t.Error("expected ErrFull to classify as retryable")
	}
	if Classify(errors.New("unknown")) != ErrorRetryable {
		t.Error("expected unknown errors to default to retryable")
	}
}

func TestWrap(t *testing.T) {
	base := errors.New("underlying failure")
	wrapped := Wrap(base, "Channel", "Send", "direct handoff")

	if wrapped == nil {
		t.Fatal("expected non-nil wrapped error")
	}
	expected := "Channel.Send: direct handoff failed: underlying failure"
	if wrapped.Error() != expected {
		t.Errorf("expected %q, got %q", expected, wrapped.Error())
	}
	if !errors.Is(wrapped, base) {
		t.Error("expected wrapped error to match underlying via errors.Is")
	}

	if Wrap(nil, "Channel", "Send", "anything") != nil {
		t.Error("expected Wrap(nil) to return nil")
	}
}

func TestWrapRetryable(t *testing.T) {
	wrapped := WrapRetryable(ErrFull, "Pool", "Submit", "task enqueue")

	if !IsRetryable(wrapped) {
		t.Error("expected WrapRetryable result to be retryable")
	}
	if !errors.Is(wrapped, ErrFull) {
		t.Error("expected wrapped error to match ErrFull")
	}

	var ce *ClassifiedError
	if !errors.As(wrapped, &ce) {
		t.Fatal("expected ClassifiedError in chain")
	}
	if ce.Component != "Pool" || ce.Operation != "Submit" {
		t.Errorf("unexpected component/operation: %s/%s", ce.Component, ce.Operation)
	}
	if !strings.Contains(ce.Message, "task enqueue failed") {
		t.Errorf("unexpected message: %s", ce.Message)
	}

	if WrapRetryable(nil, "Pool", "Submit", "anything") != nil {
		t.Error("expected WrapRetryable(nil) to return nil")
	}
}

func TestWrapTerminal(t *testing.T) {
	wrapped := WrapTerminal(ErrClosed, "Channel", "Recv", "drain")

	if !IsTerminal(wrapped) {
		t.Error("expected WrapTerminal result to be terminal")
	}
	if IsRetryable(wrapped) {
		t.Error("expected WrapTerminal result not to be retryable")
	}
	if !errors.Is(wrapped, ErrClosed) {
		t.Error("expected wrapped error to match ErrClosed")
	}

	if WrapTerminal(nil, "Channel", "Recv", "anything") != nil {
		t.Error("expected WrapTerminal(nil) to return nil")
	}
}

func TestClassificationSurvivesWrapping(t *testing.T) {
	inner := WrapTerminal(ErrReceiveClosed, "Channel", "Send", "admission")
	outer := fmt.Errorf("producer loop: %w", inner)

	if !IsTerminal(outer) {
		t.Error("expected terminal classification to survive fmt.Errorf wrapping")
	}
	if !IsClosed(outer) {
		t.Error("expected IsClosed to see through wrapping")
	}
}
