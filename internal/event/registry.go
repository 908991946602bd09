package event

import (
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
)

// Registry maps event types to the handlers registered for them.
// It is safe for concurrent use.
//
// Each event type owns a handler set holding an immutable snapshot slice.
// Writers copy the snapshot, modify the copy and swap it in under the set's
// own mutex, so readers never observe a partially built set and a slice
// returned to a caller is never mutated afterwards. The map itself is
// guarded by an RWMutex that is only taken for writing when a new event type
// appears or on Clear.
type Registry struct {
	mu    sync.RWMutex
	sets  map[reflect.Type]*handlerSet
	seq   atomic.Uint64
	count atomic.Int64
}

// entry is a registered descriptor together with its registration number.
type entry struct {
	d   *HandlerDescriptor
	seq uint64
}

type handlerSet struct {
	mu       sync.Mutex // serializes writers
	snapshot atomic.Pointer[[]entry]
}

func newHandlerSet() *handlerSet {
	s := &handlerSet{}
	empty := []entry{}
	s.snapshot.Store(&empty)
	return s
}

func (s *handlerSet) load() []entry {
	return *s.snapshot.Load()
}

func (s *handlerSet) add(e entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.load()
	next := make([]entry, len(old), len(old)+1)
	copy(next, old)
	next = append(next, e)
	s.snapshot.Store(&next)
}

// removeSubscriber drops every entry owned by subscriber and returns how
// many were removed.
func (s *handlerSet) removeSubscriber(subscriber any) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.load()
	next := make([]entry, 0, len(old))
	for _, e := range old {
		if e.d.subscriber != subscriber {
			next = append(next, e)
		}
	}
	removed := len(old) - len(next)
	if removed > 0 {
		s.snapshot.Store(&next)
	}
	return removed
}

// NewRegistry creates a new subscriber registry.
func NewRegistry() *Registry {
	return &Registry{
		sets: make(map[reflect.Type]*handlerSet),
	}
}

// Add registers a descriptor under its event type. Duplicates are accepted
// and will be delivered once per registration.
func (r *Registry) Add(d *HandlerDescriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}

	e := entry{d: d, seq: r.seq.Add(1)}
	t := d.eventType

	// The count changes under r.mu so that it stays ordered with Clear.
	r.mu.RLock()
	s, ok := r.sets[t]
	if ok {
		s.add(e)
		r.count.Add(1)
		r.mu.RUnlock()
		return nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok = r.sets[t]
	if !ok {
		s = newHandlerSet()
		r.sets[t] = s
	}
	s.add(e)
	r.count.Add(1)
	return nil
}

// Remove removes every descriptor owned by subscriber across all event
// types. It returns the number of descriptors removed; removing an unknown
// subscriber is a no-op.
func (r *Registry) Remove(subscriber any) int {
	if subscriber == nil || !reflect.ValueOf(subscriber).Comparable() {
		return 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	removed := 0
	for _, s := range r.sets {
		removed += s.removeSubscriber(subscriber)
	}
	r.count.Add(-int64(removed))
	return removed
}

// Lookup returns the handlers registered for exactly eventType, highest
// priority first and in registration order on ties. The result is a fresh
// slice; it is empty when nothing is registered.
func (r *Registry) Lookup(eventType reflect.Type) []*HandlerDescriptor {
	if eventType == nil {
		return nil
	}

	r.mu.RLock()
	s, ok := r.sets[eventType]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	entries := s.load()
	if len(entries) == 0 {
		return nil
	}

	sorted := make([]entry, len(entries))
	copy(sorted, entries)
	sortEntries(sorted)

	result := make([]*HandlerDescriptor, len(sorted))
	for i, e := range sorted {
		result[i] = e.d
	}
	return result
}

// Resolve returns the bindings for an event of eventType, considering
// supertypes down to depth levels (0 exact only, negative unlimited).
// Level 1 covers interfaces implemented by eventType and directly embedded
// struct types; each further level walks one more embedding step. A
// descriptor reachable through several paths is bound once, at its nearest
// level. The result is ordered by priority across all levels.
func (r *Registry) Resolve(eventType reflect.Type, depth int) []Binding {
	if eventType == nil {
		return nil
	}
	if depth == 0 {
		return r.resolveExact(eventType)
	}

	embedded := supertypes(eventType, depth)

	type candidate struct {
		e     entry
		path  []int
		level int
	}
	var candidates []candidate
	seen := make(map[uint64]bool)
	collect := func(s *handlerSet, path []int, level int) {
		for _, e := range s.load() {
			if seen[e.seq] {
				continue
			}
			seen[e.seq] = true
			candidates = append(candidates, candidate{e: e, path: path, level: level})
		}
	}

	r.mu.RLock()
	if s, ok := r.sets[eventType]; ok {
		collect(s, nil, 0)
	}
	for _, s := range r.interfaceSets(eventType) {
		collect(s, nil, 1)
	}
	for _, st := range embedded {
		if s, ok := r.sets[st.t]; ok {
			collect(s, st.path, st.level)
		}
	}
	r.mu.RUnlock()

	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return entryLess(candidates[i].e, candidates[j].e)
	})

	result := make([]Binding, len(candidates))
	for i, c := range candidates {
		result[i] = Binding{Descriptor: c.e.d, Path: c.path, Level: c.level}
	}
	return result
}

func (r *Registry) resolveExact(eventType reflect.Type) []Binding {
	descriptors := r.Lookup(eventType)
	if len(descriptors) == 0 {
		return nil
	}
	result := make([]Binding, len(descriptors))
	for i, d := range descriptors {
		result[i] = Binding{Descriptor: d}
	}
	return result
}

// interfaceSets returns the handler sets registered under interface types
// that eventType implements. The caller must hold r.mu.
func (r *Registry) interfaceSets(eventType reflect.Type) map[reflect.Type]*handlerSet {
	var result map[reflect.Type]*handlerSet
	for t, s := range r.sets {
		if t.Kind() != reflect.Interface || t == eventType || !eventType.Implements(t) {
			continue
		}
		if result == nil {
			result = make(map[reflect.Type]*handlerSet)
		}
		result[t] = s
	}
	return result
}

// HasHandlers reports whether any handler is registered for exactly
// eventType.
func (r *Registry) HasHandlers(eventType reflect.Type) bool {
	if eventType == nil {
		return false
	}

	r.mu.RLock()
	s, ok := r.sets[eventType]
	r.mu.RUnlock()

	return ok && len(s.load()) > 0
}

// Count returns the total number of registered descriptors.
func (r *Registry) Count() int {
	return int(r.count.Load())
}

// Types returns every event type that currently has handlers.
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]reflect.Type, 0, len(r.sets))
	for t, s := range r.sets {
		if len(s.load()) > 0 {
			types = append(types, t)
		}
	}
	return types
}

// Clear removes all registrations.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sets = make(map[reflect.Type]*handlerSet)
	r.count.Store(0)
}

// sortEntries orders entries by descending priority, then registration order.
func sortEntries(entries []entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entryLess(entries[i], entries[j])
	})
}

func entryLess(a, b entry) bool {
	if a.d.priority != b.d.priority {
		return a.d.priority > b.d.priority
	}
	return a.seq < b.seq
}
