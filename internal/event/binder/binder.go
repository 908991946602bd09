// Package binder builds handler descriptors for the event bus, either from
// typed functions or from a subscriber's methods.
//
// A subscriber declares its handler methods by implementing Declarer:
//
//	func (d *AlertDisplay) EventHandlers() []binder.Spec {
//		return []binder.Spec{
//			{Method: "Show", Priority: event.PriorityCritical},
//		}
//	}
//
// Subscribers that do not implement Declarer have every exported method
// whose name starts with "On" bound with default priority and Posting mode.
//
// A handler method takes an optional context.Context followed by exactly
// one event parameter, and returns nothing or an error.
package binder

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/dshills/eventbus/internal/event"
)

// Spec declares one handler method of a subscriber.
type Spec struct {
	// Method is the exported method name.
	Method string

	// Priority is the handler priority. Higher runs first.
	Priority event.Priority

	// Mode is the thread mode. The zero value is Posting.
	Mode event.ThreadMode
}

// Declarer is implemented by subscribers that list their handler methods.
type Declarer interface {
	EventHandlers() []Spec
}

// MethodPrefix marks handler methods on subscribers without a Declarer.
const MethodPrefix = "On"

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// Func returns a descriptor delivering events of type T to fn. T may be an
// interface type; with event inheritance enabled the handler then receives
// every event implementing it.
func Func[T any](subscriber any, fn func(context.Context, T) error, opts ...event.DescriptorOption) (*event.HandlerDescriptor, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil handler func", event.ErrInvalidArgument)
	}
	eventType := reflect.TypeFor[T]()

	handler := event.HandlerFunc(func(ctx context.Context, ev any) error {
		v, ok := ev.(T)
		if !ok {
			return fmt.Errorf("%w: handler for %v received %T", event.ErrInvalidArgument, eventType, ev)
		}
		return fn(ctx, v)
	})
	return event.NewHandlerDescriptor(subscriber, eventType, handler, opts...)
}

// Methods builds descriptors for the handler methods of subscriber. A
// method with an invalid shape fails the whole call with
// event.ErrConfiguration.
func Methods(subscriber any) ([]*event.HandlerDescriptor, error) {
	if subscriber == nil {
		return nil, fmt.Errorf("%w: nil subscriber", event.ErrInvalidArgument)
	}

	specs, err := specsFor(subscriber)
	if err != nil {
		return nil, err
	}

	v := reflect.ValueOf(subscriber)
	descriptors := make([]*event.HandlerDescriptor, 0, len(specs))
	for _, spec := range specs {
		m := v.MethodByName(spec.Method)
		if !m.IsValid() {
			return nil, fmt.Errorf("%w: %T has no exported method %q", event.ErrConfiguration, subscriber, spec.Method)
		}

		d, err := bindMethod(subscriber, spec, m)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}

// Register binds the handler methods of subscriber and registers them on
// bus. A subscriber without handler methods is a no-op.
func Register(bus event.Bus, subscriber any) error {
	descriptors, err := Methods(subscriber)
	if err != nil {
		return err
	}
	if len(descriptors) == 0 {
		return nil
	}
	return bus.Register(subscriber, descriptors...)
}

func specsFor(subscriber any) ([]Spec, error) {
	if d, ok := subscriber.(Declarer); ok {
		specs := d.EventHandlers()
		seen := make(map[string]bool, len(specs))
		for _, s := range specs {
			if seen[s.Method] {
				return nil, fmt.Errorf("%w: method %q declared twice", event.ErrConfiguration, s.Method)
			}
			seen[s.Method] = true
		}
		return specs, nil
	}

	t := reflect.TypeOf(subscriber)
	var specs []Spec
	for i := 0; i < t.NumMethod(); i++ {
		name := t.Method(i).Name
		if isHandlerName(name) {
			specs = append(specs, Spec{Method: name})
		}
	}
	return specs, nil
}

// isHandlerName reports whether name is MethodPrefix followed by an upper
// case letter, so that a method named "Once" is not picked up.
func isHandlerName(name string) bool {
	rest, ok := strings.CutPrefix(name, MethodPrefix)
	if !ok || rest == "" {
		return false
	}
	return unicode.IsUpper([]rune(rest)[0])
}

func bindMethod(subscriber any, spec Spec, m reflect.Value) (*event.HandlerDescriptor, error) {
	mt := m.Type()
	name := fmt.Sprintf("%T.%s", subscriber, spec.Method)

	in := mt.NumIn()
	withCtx := in > 0 && mt.In(0) == contextType
	params := in
	if withCtx {
		params--
	}
	if params != 1 || mt.IsVariadic() {
		return nil, fmt.Errorf("%w: handler method %s must have exactly one event parameter, found %d",
			event.ErrConfiguration, name, params)
	}

	eventType := mt.In(in - 1)
	if event.IsScalarType(eventType) {
		return nil, fmt.Errorf("%w: handler method %s event parameter cannot be a scalar type (%v)",
			event.ErrConfiguration, name, eventType)
	}

	switch {
	case mt.NumOut() == 0:
	case mt.NumOut() == 1 && mt.Out(0) == errorType:
	default:
		return nil, fmt.Errorf("%w: handler method %s must return nothing or error",
			event.ErrConfiguration, name)
	}

	handler := event.HandlerFunc(func(ctx context.Context, ev any) error {
		arg := reflect.ValueOf(ev)
		if !arg.IsValid() || !arg.Type().AssignableTo(eventType) {
			return fmt.Errorf("%w: %s received %T", event.ErrInvalidArgument, name, ev)
		}

		args := []reflect.Value{arg}
		if withCtx {
			cv := reflect.Zero(contextType)
			if ctx != nil {
				cv = reflect.ValueOf(ctx)
			}
			args = []reflect.Value{cv, arg}
		}
		out := m.Call(args)
		if len(out) == 1 && !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		return nil
	})

	return event.NewHandlerDescriptor(subscriber, eventType, handler,
		event.WithPriority(spec.Priority),
		event.WithThreadMode(spec.Mode),
	)
}
