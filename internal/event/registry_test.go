package event

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_LookupOrdersByPriority(t *testing.T) {
	r := NewRegistry()
	sub := &namedSubscriber{"s"}
	et := typeOf[alertEvent]()
	rec := &recorder{}

	for _, p := range []Priority{1, 10, 0, 5} {
		require.NoError(t, r.Add(recordingDescriptor(t, sub, et, rec, strconv.Itoa(int(p)), WithPriority(p))))
	}

	var got []Priority
	for _, d := range r.Lookup(et) {
		got = append(got, d.Priority())
	}
	assert.Equal(t, []Priority{10, 5, 1, 0}, got)
}

func TestRegistry_TiesKeepRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	et := typeOf[alertEvent]()
	rec := &recorder{}

	var want []string
	for i := range 5 {
		sub := &namedSubscriber{fmt.Sprintf("s%d", i)}
		d := recordingDescriptor(t, sub, et, rec, sub.name)
		require.NoError(t, r.Add(d))
		want = append(want, d.ID())
	}

	var got []string
	for _, d := range r.Lookup(et) {
		got = append(got, d.ID())
	}
	assert.Equal(t, want, got)
}

func TestRegistry_AddRejectsInvalid(t *testing.T) {
	r := NewRegistry()

	assert.ErrorIs(t, r.Add(nil), ErrInvalidArgument)
	assert.ErrorIs(t, r.Add(&HandlerDescriptor{}), ErrInvalidArgument)
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_DuplicatesAreKept(t *testing.T) {
	r := NewRegistry()
	sub := &namedSubscriber{"s"}
	d := recordingDescriptor(t, sub, typeOf[alertEvent](), &recorder{}, "a")

	require.NoError(t, r.Add(d))
	require.NoError(t, r.Add(d))

	assert.Len(t, r.Lookup(typeOf[alertEvent]()), 2)
	assert.Equal(t, 2, r.Count())
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	a := &namedSubscriber{"a"}
	b := &namedSubscriber{"b"}
	rec := &recorder{}

	require.NoError(t, r.Add(recordingDescriptor(t, a, typeOf[alertEvent](), rec, "a1")))
	require.NoError(t, r.Add(recordingDescriptor(t, a, typeOf[tempReading](), rec, "a2")))
	require.NoError(t, r.Add(recordingDescriptor(t, b, typeOf[alertEvent](), rec, "b1")))

	assert.Equal(t, 2, r.Remove(a))
	assert.Equal(t, 1, r.Count())
	assert.False(t, r.HasHandlers(typeOf[tempReading]()))

	remaining := r.Lookup(typeOf[alertEvent]())
	require.Len(t, remaining, 1)
	assert.Same(t, b, remaining[0].Subscriber())

	// Removing again or removing a stranger is a no-op.
	assert.Equal(t, 0, r.Remove(a))
	assert.Equal(t, 0, r.Remove(&namedSubscriber{"a"}))
	assert.Equal(t, 0, r.Remove(nil))
	assert.Equal(t, 0, r.Remove([]int{1}))
}

func TestRegistry_RemoveUncomparableContents(t *testing.T) {
	r := NewRegistry()
	sub := taggedSubscriber{tag: "x"}
	require.NoError(t, r.Add(recordingDescriptor(t, sub, typeOf[alertEvent](), &recorder{}, "x")))

	assert.NotPanics(t, func() {
		assert.Equal(t, 0, r.Remove(taggedSubscriber{tag: []int{1}}))
	})
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_LookupReturnsStableSnapshot(t *testing.T) {
	r := NewRegistry()
	sub := &namedSubscriber{"s"}
	et := typeOf[alertEvent]()
	rec := &recorder{}

	require.NoError(t, r.Add(recordingDescriptor(t, sub, et, rec, "first")))
	snapshot := r.Lookup(et)

	require.NoError(t, r.Add(recordingDescriptor(t, sub, et, rec, "second", WithPriority(10))))
	r.Remove(sub)

	require.Len(t, snapshot, 1)
	assert.Equal(t, PriorityNormal, snapshot[0].Priority())
}

func TestRegistry_EmptyLookups(t *testing.T) {
	r := NewRegistry()

	assert.Empty(t, r.Lookup(typeOf[alertEvent]()))
	assert.Empty(t, r.Lookup(nil))
	assert.False(t, r.HasHandlers(nil))
	assert.Empty(t, r.Resolve(nil, -1))
	assert.Empty(t, r.Types())
}

func TestRegistry_ClearAndTypes(t *testing.T) {
	r := NewRegistry()
	sub := &namedSubscriber{"s"}
	rec := &recorder{}

	require.NoError(t, r.Add(recordingDescriptor(t, sub, typeOf[alertEvent](), rec, "a")))
	require.NoError(t, r.Add(recordingDescriptor(t, sub, typeOf[tempReading](), rec, "t")))

	assert.ElementsMatch(t, []reflect.Type{typeOf[alertEvent](), typeOf[tempReading]()}, r.Types())

	r.Clear()
	assert.Equal(t, 0, r.Count())
	assert.Empty(t, r.Types())
	assert.False(t, r.HasHandlers(typeOf[alertEvent]()))
}

func TestRegistry_CountSurvivesConcurrentClear(t *testing.T) {
	r := NewRegistry()
	rec := &recorder{}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := &namedSubscriber{fmt.Sprint(i)}
			for range 100 {
				_ = r.Add(recordingDescriptor(t, sub, typeOf[alertEvent](), rec, sub.name))
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 100 {
			r.Clear()
		}
	}()
	wg.Wait()

	total := 0
	for _, et := range r.Types() {
		total += len(r.Lookup(et))
	}
	assert.Equal(t, total, r.Count())
}

func TestRegistry_ResolveExactWhenDepthZero(t *testing.T) {
	r := NewRegistry()
	sub := &namedSubscriber{"s"}
	rec := &recorder{}

	require.NoError(t, r.Add(recordingDescriptor(t, sub, typeOf[Base](), rec, "base")))
	require.NoError(t, r.Add(recordingDescriptor(t, sub, typeOf[tempReading](), rec, "temp")))

	bindings := r.Resolve(typeOf[tempReading](), 0)
	require.Len(t, bindings, 1)
	assert.Equal(t, typeOf[tempReading](), bindings[0].Descriptor.EventType())
	assert.Nil(t, bindings[0].Path)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	et := typeOf[alertEvent]()
	rec := &recorder{}

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := &namedSubscriber{fmt.Sprint(i)}
			for range 50 {
				d, err := NewFuncDescriptor(sub, et, func(context.Context, any) error {
					rec.add("x")
					return nil
				})
				if err != nil {
					t.Error(err)
					return
				}
				_ = r.Add(d)
				_ = r.Lookup(et)
				_ = r.HasHandlers(et)
			}
			r.Remove(sub)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, r.Count())
	assert.Empty(t, r.Lookup(et))
}
