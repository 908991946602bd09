package event

import "sync"

var defaultBus = sync.OnceValue(func() Bus {
	b, err := NewBus()
	if err != nil {
		// DefaultConfig always validates.
		panic(err)
	}
	return b
})

// Default returns the process-wide bus, creating it with DefaultConfig on
// first use. It is never closed by the package.
func Default() Bus {
	return defaultBus()
}
