package event

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

// HandlerDescriptor binds one handler callback of a subscriber to the event
// type it accepts. Descriptors are immutable after construction; a
// subscriber owns one descriptor per handler it declares.
type HandlerDescriptor struct {
	id         string
	subscriber any
	eventType  reflect.Type
	priority   Priority
	threadMode ThreadMode
	handler    Handler
}

// DescriptorOption configures a HandlerDescriptor during construction.
type DescriptorOption func(*HandlerDescriptor)

// WithPriority sets the handler priority.
func WithPriority(p Priority) DescriptorOption {
	return func(d *HandlerDescriptor) {
		d.priority = p
	}
}

// WithThreadMode sets the handler thread mode.
func WithThreadMode(m ThreadMode) DescriptorOption {
	return func(d *HandlerDescriptor) {
		d.threadMode = m
	}
}

// NewHandlerDescriptor creates a descriptor for handler owned by subscriber,
// accepting events of eventType. Defaults are PriorityNormal and Posting.
func NewHandlerDescriptor(subscriber any, eventType reflect.Type, handler Handler, opts ...DescriptorOption) (*HandlerDescriptor, error) {
	d := &HandlerDescriptor{
		id:         uuid.NewString(),
		subscriber: subscriber,
		eventType:  eventType,
		priority:   PriorityNormal,
		threadMode: Posting,
		handler:    handler,
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewFuncDescriptor is a convenience wrapper around NewHandlerDescriptor for
// a function handler.
func NewFuncDescriptor(subscriber any, eventType reflect.Type, fn func(ctx context.Context, event any) error, opts ...DescriptorOption) (*HandlerDescriptor, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil handler func", ErrInvalidArgument)
	}
	return NewHandlerDescriptor(subscriber, eventType, HandlerFunc(fn), opts...)
}

// ID returns the unique descriptor identifier.
func (d *HandlerDescriptor) ID() string {
	return d.id
}

// Subscriber returns the owning subscriber.
func (d *HandlerDescriptor) Subscriber() any {
	return d.subscriber
}

// EventType returns the event type the handler accepts.
func (d *HandlerDescriptor) EventType() reflect.Type {
	return d.eventType
}

// Priority returns the handler priority.
func (d *HandlerDescriptor) Priority() Priority {
	return d.priority
}

// ThreadMode returns the handler thread mode.
func (d *HandlerDescriptor) ThreadMode() ThreadMode {
	return d.threadMode
}

// Handler returns the bound callback.
func (d *HandlerDescriptor) Handler() Handler {
	return d.handler
}

// Invoke calls the bound callback with event.
func (d *HandlerDescriptor) Invoke(ctx context.Context, event any) error {
	return d.handler.Handle(ctx, event)
}

// String returns a short description for logs.
func (d *HandlerDescriptor) String() string {
	return fmt.Sprintf("%T/%v[%s,%d]", d.subscriber, d.eventType, d.threadMode, d.priority)
}

// Validate checks the descriptor shape. Missing parts are ErrInvalidArgument;
// a scalar event type or an unknown thread mode is ErrConfiguration.
func (d *HandlerDescriptor) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil descriptor", ErrInvalidArgument)
	}
	if d.subscriber == nil {
		return fmt.Errorf("%w: descriptor has no subscriber", ErrInvalidArgument)
	}
	if !reflect.ValueOf(d.subscriber).Comparable() {
		return fmt.Errorf("%w: subscriber %T is not comparable", ErrInvalidArgument, d.subscriber)
	}
	if d.eventType == nil {
		return fmt.Errorf("%w: descriptor has no event type", ErrInvalidArgument)
	}
	if d.handler == nil || isNilHandler(d.handler) {
		return fmt.Errorf("%w: descriptor for %v has no handler", ErrInvalidArgument, d.eventType)
	}
	if IsScalarType(d.eventType) {
		return fmt.Errorf("%w: event type %v is a scalar type", ErrConfiguration, d.eventType)
	}
	if !d.threadMode.Valid() {
		return fmt.Errorf("%w: unknown thread mode %d", ErrConfiguration, int(d.threadMode))
	}
	return nil
}

// IsScalarType reports whether t is a scalar kind that cannot serve as an
// event type: booleans, numbers, strings and raw pointers. Named types are
// judged by their underlying kind.
func IsScalarType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String, reflect.UnsafePointer:
		return true
	}
	return false
}

func isNilHandler(h Handler) bool {
	v := reflect.ValueOf(h)
	switch v.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Map, reflect.Chan, reflect.Interface, reflect.Slice:
		return v.IsNil()
	}
	return false
}
