package dispatch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Group runs handlers concurrently and joins them. Every handler passed to
// Go starts immediately on its own goroutine; Wait blocks until all of them
// have returned.
//
// A Group is meant for a single publish call and must not be reused after
// Wait returns.
type Group struct {
	executor *Executor
	eg       errgroup.Group
}

// NewGroup creates a join set that executes handlers with the given executor.
// A nil executor gets a default one.
func NewGroup(executor *Executor) *Group {
	if executor == nil {
		executor = NewExecutor()
	}
	return &Group{executor: executor}
}

// Go starts handler on a new goroutine. The done callback converts the
// Result into the error reported by Wait; a nil callback treats every
// result as success.
func (g *Group) Go(ctx context.Context, event any, handler Handler, done func(Result) error) {
	g.eg.Go(func() error {
		result := g.executor.Execute(ctx, event, handler)
		if done == nil {
			return nil
		}
		return done(result)
	})
}

// Wait blocks until every started handler has returned. It returns the first
// non-nil error produced by a done callback. Unlike errgroup.WithContext, a
// failure never cancels siblings.
func (g *Group) Wait() error {
	return g.eg.Wait()
}
