package event

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Test event types shared across the package tests.
type tempReading struct {
	Base
	Region string
	Value  float64
}

type alertEvent struct {
	Message string
}

type unhandledEvent struct{}

type namedSubscriber struct {
	name string
}

func (s *namedSubscriber) String() string { return s.name }

// taggedSubscriber is a value subscriber whose comparability depends on
// what tag holds.
type taggedSubscriber struct {
	tag any
}

// recorder collects handler invocations in order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.calls = append(r.calls, s)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

func mustDescriptor(t *testing.T, sub any, eventType reflect.Type, fn func(context.Context, any) error, opts ...DescriptorOption) *HandlerDescriptor {
	t.Helper()
	d, err := NewFuncDescriptor(sub, eventType, fn, opts...)
	require.NoError(t, err)
	return d
}

func recordingDescriptor(t *testing.T, sub any, eventType reflect.Type, rec *recorder, label string, opts ...DescriptorOption) *HandlerDescriptor {
	t.Helper()
	return mustDescriptor(t, sub, eventType, func(context.Context, any) error {
		rec.add(label)
		return nil
	}, opts...)
}

func newTestBus(t *testing.T, cfg Config, opts ...BusOption) *bus {
	t.Helper()
	opts = append([]BusOption{WithConfig(cfg), WithLogger(zap.NewNop())}, opts...)
	b, err := NewBus(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close(context.Background()) })
	return b.(*bus)
}
