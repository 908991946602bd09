// Package console serializes colored sample output onto one writer.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Console writes whole lines to w. It is safe for concurrent use; handlers
// of the sample programs run on many goroutines.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// New returns a console writing to w.
func New(w io.Writer) *Console {
	return &Console{w: w}
}

// Printf writes a formatted line in the given color.
func (c *Console) Printf(attr color.Attribute, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = color.New(attr).Fprintf(c.w, format+"\n", args...)
}

// Block writes several lines in one color without interleaving other
// output.
func (c *Console) Block(attr color.Attribute, lines ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := color.New(attr)
	for _, l := range lines {
		_, _ = p.Fprintln(c.w, l)
	}
}

// Plain writes an uncolored line.
func (c *Console) Plain(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.w, format+"\n", args...)
}
