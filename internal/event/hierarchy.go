package event

import (
	"reflect"
	"sync"
)

// Binding is a resolved handler for one published event: the descriptor plus
// the embedded-field path used to derive the value it receives.
type Binding struct {
	// Descriptor is the matched handler.
	Descriptor *HandlerDescriptor

	// Path is the embedded-field index path from the event to the value the
	// handler receives. Nil means the event itself.
	Path []int

	// Level is the supertype level the match was found at. Zero is an exact
	// type match.
	Level int
}

// Project returns the value to hand to the binding's handler. It reports
// false when the path crosses a nil embedded pointer.
func (b Binding) Project(event any) (any, bool) {
	if len(b.Path) == 0 {
		return event, true
	}

	v := reflect.ValueOf(event)
	for _, idx := range b.Path {
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return nil, false
			}
			v = v.Elem()
		}
		v = v.Field(idx)
	}
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return nil, false
	}
	return v.Interface(), true
}

// supertype is an embedded type reachable from an event type.
type supertype struct {
	t     reflect.Type
	path  []int
	level int
}

type hierarchyKey struct {
	t     reflect.Type
	depth int
}

// hierarchyCache memoizes embedded-type walks; type graphs never change at
// runtime.
var hierarchyCache sync.Map // hierarchyKey -> []supertype

// supertypes returns the exported embedded field types of t, breadth first,
// down to depth levels. A negative depth is unlimited. Pointer event types
// walk their element type.
func supertypes(t reflect.Type, depth int) []supertype {
	if depth == 0 {
		return nil
	}
	key := hierarchyKey{t: t, depth: depth}
	if cached, ok := hierarchyCache.Load(key); ok {
		return cached.([]supertype)
	}

	var result []supertype
	seen := map[reflect.Type]bool{t: true}
	frontier := []supertype{{t: t}}

	for level := 1; len(frontier) > 0 && (depth < 0 || level <= depth); level++ {
		var next []supertype
		for _, cur := range frontier {
			st := cur.t
			if st.Kind() == reflect.Pointer {
				st = st.Elem()
			}
			if st.Kind() != reflect.Struct {
				continue
			}
			for i := 0; i < st.NumField(); i++ {
				f := st.Field(i)
				if !f.Anonymous || !f.IsExported() {
					continue
				}
				if seen[f.Type] {
					continue
				}
				seen[f.Type] = true

				path := make([]int, len(cur.path)+1)
				copy(path, cur.path)
				path[len(cur.path)] = i

				s := supertype{t: f.Type, path: path, level: level}
				result = append(result, s)
				next = append(next, s)
			}
		}
		frontier = next
	}

	hierarchyCache.Store(key, result)
	return result
}
