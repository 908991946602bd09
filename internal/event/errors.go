package event

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for the event bus.
var (
	// ErrInvalidArgument is returned when a public operation receives a nil
	// or malformed subscriber, event, descriptor or event type.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConfiguration is returned when a handler descriptor or a bus
	// configuration fails validation.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrHandlerFailure matches every error raised by a handler invocation.
	ErrHandlerFailure = errors.New("handler failure")

	// ErrBusClosed is returned when publishing on a closed bus.
	ErrBusClosed = errors.New("event bus is closed")
)

// HandlerError wraps an error from a handler with additional context.
// It is the invocation wrapper produced by the dispatch engine; Unwrap
// returns the handler's own error.
type HandlerError struct {
	// DescriptorID is the ID of the descriptor whose handler failed.
	DescriptorID string

	// Subscriber is the subscriber owning the handler.
	Subscriber any

	// EventType is the type the handler was registered for.
	EventType reflect.Type

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s for %v failed: %v", e.DescriptorID, e.EventType, e.Err)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match HandlerError with ErrHandlerFailure.
func (e *HandlerError) Is(target error) bool {
	return target == ErrHandlerFailure
}

// PanicError wraps a panic value as an error.
type PanicError struct {
	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panicked: %v", e.Value)
}

// Unwrap returns the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// PublishError is returned by Publish and PublishAsync when
// ThrowSubscriberException is enabled and a handler failed.
type PublishError struct {
	// Event is the event whose dispatch failed.
	Event any

	// Err is the handler's original error.
	Err error
}

// Error implements the error interface.
func (e *PublishError) Error() string {
	return fmt.Sprintf("exception in event handler for %T: %v", e.Event, e.Err)
}

// Unwrap returns the handler's original error.
func (e *PublishError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match PublishError with ErrHandlerFailure.
func (e *PublishError) Is(target error) bool {
	return target == ErrHandlerFailure
}

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// unwrapInvocation strips one level of invocation wrapper to recover the
// error the handler itself produced.
func unwrapInvocation(err error) error {
	if he, ok := err.(*HandlerError); ok && he.Err != nil {
		return he.Err
	}
	return err
}
