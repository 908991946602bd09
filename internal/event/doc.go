// Package event provides an in-process publish/subscribe event bus.
//
// Publishers emit typed event values without knowing who consumes them.
// Subscribers register handler descriptors, each binding one callback to one
// event type (a reflect.Type), and receive matching events ordered by
// priority. One handler's error or panic never prevents delivery to the
// others.
//
// # Architecture
//
//	┌──────────────┐   descriptors   ┌──────────────┐
//	│    binder    │ ──────────────▶ │   Registry   │
//	└──────────────┘                 │ type → set   │
//	                                 └──────┬───────┘
//	 Publish(event) ─────▶ Resolve ─────────┘
//	                          │
//	         ┌────────────────┼────────────────┐
//	         ▼                ▼                ▼
//	   Posting/Main        Background         Async
//	   (caller)            (worker pool)      (errgroup under PublishAsync)
//
// Descriptors are usually built by package binder from typed functions or
// a subscriber's methods. The bus never inspects subscriber internals.
//
// # Thread Modes
//
//   - Posting: runs on the publisher's goroutine.
//   - Background: queued on the bus worker pool; the publisher never waits.
//   - Async: inline under Publish; concurrent and awaited under PublishAsync.
//   - MainThread: dispatched like Posting. There is no thread affinity.
//
// # Failures
//
// Handler errors and panics are logged and reported as
// SubscriberExceptionEvent values. With ThrowSubscriberException enabled,
// Publish also returns a *PublishError and skips the remaining handlers.
// Events without any handler can be reported as DeadEvent values.
// Handlers of these two feedback types run inline and their own failures
// are swallowed.
//
// # Event Inheritance
//
// With EventInheritanceDepth other than zero, an event also reaches
// handlers registered for interfaces it implements and for struct types it
// embeds, to the configured depth:
//
//	type Reading struct {
//		event.Base
//		Value float64
//	}
//
// A handler for event.Base receives the Base field of every Reading.
//
// # Basic Usage
//
//	bus, err := event.NewBus()
//	if err != nil {
//		return err
//	}
//	defer bus.Close(ctx)
//
//	d, err := binder.Func(sub, func(ctx context.Context, r Reading) error {
//		fmt.Println(r.Value)
//		return nil
//	})
//	if err != nil {
//		return err
//	}
//	if err := bus.Register(sub, d); err != nil {
//		return err
//	}
//
//	_ = bus.Publish(ctx, Reading{Base: event.NewBase(), Value: 21.5})
package event
