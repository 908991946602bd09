// Package news is a sample news agency system built on the event bus.
// Agencies publish articles; readers, an aggregator and an archive
// subscribe with different priorities and thread modes.
package news

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/eventbus/internal/event"
	"github.com/dshills/eventbus/internal/event/binder"
	"github.com/dshills/eventbus/internal/sample/console"
)

// Subscribers groups the subscribers of the sample.
type Subscribers struct {
	Alice      *Person
	Bob        *Person
	Aggregator *Aggregator
	Archive    *Archive
	Tech       *SpecializedReader
	Sports     *SpecializedReader
}

// NewSubscribers creates the sample subscribers writing to out.
func NewSubscribers(out *console.Console) *Subscribers {
	return &Subscribers{
		Alice:      NewPerson("Alice", out, Technology, Sports),
		Bob:        NewPerson("Bob", out, Politics, Culture),
		Aggregator: NewAggregator("MainAggregator", out),
		Archive:    NewArchive(out),
		Tech:       NewSpecializedReader("Dr. Smith", Technology, out),
		Sports:     NewSpecializedReader("Coach Johnson", Sports, out),
	}
}

func (s *Subscribers) all() []any {
	return []any{s.Alice, s.Bob, s.Aggregator, s.Archive, s.Tech, s.Sports}
}

// Register binds every subscriber to bus.
func (s *Subscribers) Register(bus event.Bus) error {
	for _, sub := range s.all() {
		if err := binder.Register(bus, sub); err != nil {
			return fmt.Errorf("register %T: %w", sub, err)
		}
	}
	return nil
}

// Unregister removes every subscriber from bus.
func (s *Subscribers) Unregister(bus event.Bus) {
	for _, sub := range s.all() {
		_ = bus.Unregister(sub)
	}
}

// InterestChangeAfter is when Run changes reader interests.
const InterestChangeAfter = 10 * time.Second

// Run registers the subscribers and runs the agencies until ctx is done.
// After InterestChangeAfter, Alice starts following politics and Bob stops
// following culture.
func Run(ctx context.Context, bus event.Bus, out *console.Console, logger *zap.Logger) error {
	subs := NewSubscribers(out)
	if err := subs.Register(bus); err != nil {
		return err
	}
	defer subs.Unregister(bus)
	out.Plain("Subscribers registered")

	g, ctx := errgroup.WithContext(ctx)
	for _, a := range Agencies(bus, out) {
		logger.Info("agency started", zap.String("agency", a.Name), zap.Stringer("category", a.Category))
		g.Go(func() error {
			return a.Run(ctx)
		})
	}
	g.Go(func() error {
		timer := time.NewTimer(InterestChangeAfter)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			subs.Alice.AddInterest(Politics)
			subs.Bob.RemoveInterest(Culture)
		}
		return nil
	})

	err := g.Wait()
	subs.Archive.PrintSummary()
	return err
}
