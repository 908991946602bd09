package event

import (
	"context"
	"fmt"
	"reflect"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dshills/eventbus/internal/event/dispatch"
)

const publishSpanName = "eventbus.publish"

// Publish delivers event to every matching handler in priority order.
// Posting, MainThread and Async handlers run before Publish returns;
// Background handlers are queued.
func (b *bus) Publish(ctx context.Context, event any) error {
	return b.publish(ctx, event, false)
}

// PublishAsync delivers event like Publish, except that Async handlers
// run concurrently on their own goroutines. It returns after every Async
// handler it started has completed.
func (b *bus) PublishAsync(ctx context.Context, event any) error {
	return b.publish(ctx, event, true)
}

func (b *bus) publish(ctx context.Context, event any, async bool) (err error) {
	if event == nil {
		return fmt.Errorf("%w: nil event", ErrInvalidArgument)
	}
	if b.closed.Load() {
		return ErrBusClosed
	}

	if isFeedback(event) {
		b.deliverFeedback(ctx, event)
		return nil
	}

	b.eventsPublished.Add(1)
	eventType := reflect.TypeOf(event)
	bindings := b.registry.Resolve(eventType, b.config.EventInheritanceDepth)

	ctx, span := b.tracer.Start(ctx, publishSpanName, trace.WithAttributes(
		attribute.String("event.type", eventType.String()),
		attribute.Int("event.handlers", len(bindings)),
		attribute.Bool("event.async", async),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if len(bindings) == 0 {
		b.handleNoSubscribers(ctx, event, eventType)
		return nil
	}

	var group *dispatch.Group
	if async {
		group = dispatch.NewGroup(b.executor)
	}

	err = b.invokeAll(ctx, event, bindings, group)

	if group != nil {
		// Started Async handlers are always joined, even when a
		// synchronous handler aborted the loop.
		if werr := group.Wait(); err == nil {
			err = werr
		}
	}
	return err
}

// invokeAll runs bindings in order. It stops at the first error returned by
// handleResult, which only happens when ThrowSubscriberException is set.
func (b *bus) invokeAll(ctx context.Context, event any, bindings []Binding, group *dispatch.Group) error {
	for _, binding := range bindings {
		value, ok := binding.Project(event)
		if !ok {
			continue
		}
		d := binding.Descriptor

		switch {
		case d.threadMode == Background:
			b.submitBackground(ctx, event, value, d)

		case d.threadMode == Async && group != nil:
			group.Go(ctx, value, invocation{d: d}, func(r dispatch.Result) error {
				return b.handleResult(ctx, event, d, r, true)
			})

		default:
			r := b.syncDispatcher.Dispatch(ctx, value, invocation{d: d})
			if err := b.handleResult(ctx, event, d, r, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// submitBackground queues a Background invocation. The handler gets a
// context detached from the publisher's cancellation.
func (b *bus) submitBackground(ctx context.Context, event, value any, d *HandlerDescriptor) {
	bctx := context.WithoutCancel(ctx)
	inv := invocation{d: d}

	err := b.pool.Submit(bctx, value, inv, func(r dispatch.Result) {
		_ = b.handleResult(bctx, event, d, r, false)
	})
	if err == nil {
		return
	}

	// The pool is stopping; deliver on the publisher's goroutine.
	b.logger.Debug("background pool unavailable, running inline",
		zap.String("descriptor", d.id),
		zap.Error(err),
	)
	r := b.executor.Execute(bctx, value, inv)
	_ = b.handleResult(bctx, event, d, r, false)
}

// handleResult records the outcome of one invocation. On failure it logs,
// emits a SubscriberExceptionEvent and, if propagate is set and
// ThrowSubscriberException is enabled, returns a *PublishError.
func (b *bus) handleResult(ctx context.Context, event any, d *HandlerDescriptor, r dispatch.Result, propagate bool) error {
	b.handlersExecuted.Add(1)
	if r.IsSuccess() {
		return nil
	}

	var cause error
	switch {
	case r.IsPanic():
		b.handlerPanics.Add(1)
		cause = &PanicError{Value: r.PanicValue, Stack: r.PanicStack}
	case r.IsError():
		b.handlerErrors.Add(1)
		cause = unwrapInvocation(r.Error)
	}

	if b.config.LogSubscriberExceptions {
		fields := []zap.Field{
			zap.String("event_type", fmt.Sprintf("%T", event)),
			zap.String("subscriber", subscriberName(d.subscriber)),
			zap.String("descriptor", d.id),
			zap.Int("priority", int(d.priority)),
			zap.Stringer("thread_mode", d.threadMode),
			zap.Error(cause),
		}
		if r.IsPanic() {
			fields = append(fields, zap.ByteString("stack", r.PanicStack))
		}
		b.logger.Error("event handler failed", fields...)
	}

	if b.config.SendSubscriberExceptionEvent {
		b.exceptionEvents.Add(1)
		b.deliverFeedback(ctx, SubscriberExceptionEvent{
			Bus:               b,
			Err:               cause,
			CausingEvent:      event,
			CausingSubscriber: d.subscriber,
		})
	}

	if propagate && b.config.ThrowSubscriberException {
		return &PublishError{Event: event, Err: cause}
	}
	return nil
}

func (b *bus) handleNoSubscribers(ctx context.Context, event any, eventType reflect.Type) {
	if b.config.LogNoSubscriberMessages {
		b.logger.Info("no subscribers registered for event",
			zap.Stringer("event_type", eventType),
		)
	}
	if b.config.SendNoSubscriberEvent {
		b.deadEvents.Add(1)
		b.deliverFeedback(ctx, DeadEvent{Event: event, Bus: b})
	}
}

// deliverFeedback invokes the exact-type handlers of a feedback event on the
// caller's goroutine, whatever their thread mode. Failures are counted and
// swallowed; they never produce further feedback.
func (b *bus) deliverFeedback(ctx context.Context, feedback any) {
	for _, d := range b.registry.Lookup(reflect.TypeOf(feedback)) {
		r := b.executor.Execute(ctx, feedback, d.handler)
		if r.IsSuccess() {
			continue
		}
		b.feedbackFailures.Add(1)
		b.logger.Debug("feedback handler failed",
			zap.String("event_type", fmt.Sprintf("%T", feedback)),
			zap.String("descriptor", d.id),
			zap.Bool("panicked", r.IsPanic()),
			zap.Error(r.Error),
		)
	}
}

// invocation adapts a descriptor to a dispatch.Handler, wrapping handler
// errors in a *HandlerError.
type invocation struct {
	d *HandlerDescriptor
}

func (i invocation) Handle(ctx context.Context, event any) error {
	if err := i.d.Invoke(ctx, event); err != nil {
		return &HandlerError{
			DescriptorID: i.d.id,
			Subscriber:   i.d.subscriber,
			EventType:    i.d.eventType,
			Err:          err,
		}
	}
	return nil
}
