package event

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Priority determines handler execution order.
// Higher values execute first. Handlers with equal priority run in the order
// they were registered.
type Priority int

const (
	// PriorityCritical is for handlers that must observe an event before
	// anything else, such as alerting.
	PriorityCritical Priority = 100

	// PriorityHigh is for handlers that others depend on.
	PriorityHigh Priority = 50

	// PriorityNormal is the default priority.
	PriorityNormal Priority = 0

	// PriorityLow is for metrics, logging handlers that run last.
	PriorityLow Priority = -50
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch {
	case p >= PriorityCritical:
		return "critical"
	case p >= PriorityHigh:
		return "high"
	case p >= PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// ThreadMode specifies how a handler is executed when an event is published.
// The mode is fixed per descriptor at registration time.
type ThreadMode int

const (
	// Posting executes the handler in the publisher's goroutine. The
	// publisher blocks until the handler returns.
	Posting ThreadMode = iota

	// Background hands the invocation to the bus worker pool. The publisher
	// does not wait and failures surface only as SubscriberExceptionEvent.
	Background

	// Async runs inline under Publish. Under PublishAsync the handler runs
	// on its own goroutine and PublishAsync returns after it finished.
	Async

	// MainThread is dispatched exactly like Posting. There is no thread
	// affinity mechanism in a Go process; the mode exists so descriptors
	// can declare intent.
	MainThread
)

// String returns a human-readable thread mode name.
func (m ThreadMode) String() string {
	switch m {
	case Posting:
		return "posting"
	case Background:
		return "background"
	case Async:
		return "async"
	case MainThread:
		return "main"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the defined thread modes.
func (m ThreadMode) Valid() bool {
	return m >= Posting && m <= MainThread
}

// ParseThreadMode parses a thread mode name as produced by String.
func ParseThreadMode(s string) (ThreadMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "posting", "":
		return Posting, nil
	case "background":
		return Background, nil
	case "async":
		return Async, nil
	case "main", "mainthread", "main_thread":
		return MainThread, nil
	default:
		return Posting, fmt.Errorf("%w: unknown thread mode %q", ErrInvalidArgument, s)
	}
}

// Handler is the interface for event handlers.
type Handler interface {
	// Handle processes an event.
	// The event parameter is type-erased; handlers should type-assert.
	Handle(ctx context.Context, event any) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// Stats contains event bus statistics.
type Stats struct {
	// EventsPublished is the number of Publish and PublishAsync calls that
	// reached dispatch, feedback events excluded.
	EventsPublished uint64

	// HandlersExecuted is the total number of handler executions, across
	// every thread mode.
	HandlersExecuted uint64

	// HandlerErrors is the number of handlers that returned errors.
	HandlerErrors uint64

	// HandlerPanics is the number of handlers that panicked.
	HandlerPanics uint64

	// DeadEvents is the number of DeadEvent values emitted.
	DeadEvents uint64

	// ExceptionEvents is the number of SubscriberExceptionEvent values emitted.
	ExceptionEvents uint64

	// FeedbackFailures is the number of feedback handlers that failed.
	// These failures are swallowed.
	FeedbackFailures uint64

	// InlineDispatched is the number of Posting, MainThread and inline
	// Async invocations.
	InlineDispatched uint64

	// InlineHandlerTime is the cumulative time spent in inline invocations.
	InlineHandlerTime time.Duration

	// BackgroundSubmitted is the number of Background invocations handed
	// to the worker pool.
	BackgroundSubmitted uint64

	// BackgroundOverflow is the number of Background invocations that ran
	// outside the worker pool because its queue was full.
	BackgroundOverflow uint64

	// BackgroundProcessed is the number of Background invocations that
	// have finished.
	BackgroundProcessed uint64

	// BackgroundHandlerTime is the cumulative time spent in Background
	// invocations.
	BackgroundHandlerTime time.Duration

	// RegisteredHandlers is the current number of registered descriptors.
	RegisteredHandlers int

	// RegisteredEventTypes is the number of event types with handlers.
	RegisteredEventTypes int

	// QueueDepth is the current Background queue depth.
	QueueDepth int
}
