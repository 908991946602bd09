package event

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dshills/eventbus/internal/event/dispatch"
	"github.com/dshills/eventbus/internal/logging"
)

const tracerName = "github.com/dshills/eventbus/internal/event"

// Bus is the central event bus interface.
type Bus interface {
	// Register adds descriptors owned by subscriber. Either every
	// descriptor is registered or none is.
	Register(subscriber any, descriptors ...*HandlerDescriptor) error

	// Unregister removes every handler of subscriber. Unregistering an
	// unknown subscriber is a no-op.
	Unregister(subscriber any) error

	// Publish delivers event to every matching handler.
	Publish(ctx context.Context, event any) error

	// PublishAsync delivers event like Publish but runs Async handlers
	// concurrently and returns once all of them completed.
	PublishAsync(ctx context.Context, event any) error

	// HasSubscribers reports whether publishing an event of eventType
	// would reach at least one handler.
	HasSubscribers(eventType reflect.Type) bool

	// Config returns the bus configuration.
	Config() Config

	// Stats returns a snapshot of bus statistics.
	Stats() Stats

	// Close stops Background workers and removes all handlers.
	Close(ctx context.Context) error
}

// bus is the default Bus implementation.
type bus struct {
	// Subscription management
	registry *Registry

	// Execution
	executor       *dispatch.Executor
	syncDispatcher *dispatch.SyncDispatcher
	pool           *dispatch.Pool

	config Config
	logger *zap.Logger
	tracer trace.Tracer

	closed atomic.Bool

	// Stats
	eventsPublished  atomic.Uint64
	handlersExecuted atomic.Uint64
	handlerErrors    atomic.Uint64
	handlerPanics    atomic.Uint64
	deadEvents       atomic.Uint64
	exceptionEvents  atomic.Uint64
	feedbackFailures atomic.Uint64
}

// NewBus creates a started event bus. Without WithConfig it uses
// DefaultConfig.
func NewBus(opts ...BusOption) (Bus, error) {
	o := busOptions{config: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}

	logger := o.logger.Named("eventbus")
	onPanic := panicLogger(logger)

	b := &bus{
		registry:       NewRegistry(),
		executor:       dispatch.NewExecutor(dispatch.WithExecutorPanicHandler(onPanic)),
		syncDispatcher: dispatch.NewSyncDispatcher(dispatch.WithPanicHandler(onPanic)),
		pool: dispatch.NewPool(
			dispatch.WithWorkerCount(o.config.BackgroundWorkers),
			dispatch.WithQueueSize(o.config.BackgroundQueueSize),
			dispatch.WithPoolPanicHandler(onPanic),
		),
		config: o.config,
		logger: logger,
		tracer: o.tracerProvider.Tracer(tracerName),
	}

	if err := b.pool.Start(); err != nil {
		return nil, fmt.Errorf("start background pool: %w", err)
	}
	return b, nil
}

// Register adds descriptors owned by subscriber. Every descriptor is
// validated before any is added.
func (b *bus) Register(subscriber any, descriptors ...*HandlerDescriptor) error {
	if err := checkSubscriber(subscriber); err != nil {
		return err
	}
	if len(descriptors) == 0 {
		return fmt.Errorf("%w: no handler descriptors for %T", ErrInvalidArgument, subscriber)
	}
	if b.closed.Load() {
		return ErrBusClosed
	}

	for i, d := range descriptors {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("descriptor %d: %w", i, err)
		}
		if d.subscriber != subscriber {
			return fmt.Errorf("%w: descriptor %d belongs to %T, not %T", ErrInvalidArgument, i, d.subscriber, subscriber)
		}
	}

	for _, d := range descriptors {
		if err := b.registry.Add(d); err != nil {
			return err
		}
		b.logger.Debug("handler registered",
			zap.String("subscriber", subscriberName(subscriber)),
			zap.String("descriptor", d.id),
			zap.Stringer("event_type", d.eventType),
			zap.Int("priority", int(d.priority)),
			zap.Stringer("thread_mode", d.threadMode),
		)
	}
	return nil
}

// Unregister removes every handler owned by subscriber.
func (b *bus) Unregister(subscriber any) error {
	if subscriber == nil {
		return fmt.Errorf("%w: nil subscriber", ErrInvalidArgument)
	}

	if n := b.registry.Remove(subscriber); n > 0 {
		b.logger.Debug("subscriber unregistered",
			zap.String("subscriber", subscriberName(subscriber)),
			zap.Int("handlers", n),
		)
	}
	return nil
}

// HasSubscribers reports whether an event of eventType has handlers, taking
// the configured inheritance depth into account.
func (b *bus) HasSubscribers(eventType reflect.Type) bool {
	if eventType == nil {
		return false
	}
	if b.config.EventInheritanceDepth == 0 {
		return b.registry.HasHandlers(eventType)
	}
	return len(b.registry.Resolve(eventType, b.config.EventInheritanceDepth)) > 0
}

// Config returns the bus configuration.
func (b *bus) Config() Config {
	return b.config
}

// Stats returns a snapshot of bus statistics.
func (b *bus) Stats() Stats {
	ss := b.syncDispatcher.Stats()
	ps := b.pool.Stats()
	return Stats{
		EventsPublished:       b.eventsPublished.Load(),
		HandlersExecuted:      b.handlersExecuted.Load(),
		HandlerErrors:         b.handlerErrors.Load(),
		HandlerPanics:         b.handlerPanics.Load(),
		DeadEvents:            b.deadEvents.Load(),
		ExceptionEvents:       b.exceptionEvents.Load(),
		FeedbackFailures:      b.feedbackFailures.Load(),
		InlineDispatched:      ss.Dispatched,
		InlineHandlerTime:     ss.TotalDuration,
		BackgroundSubmitted:   ps.Submitted,
		BackgroundOverflow:    ps.Overflowed,
		BackgroundProcessed:   ps.Processed,
		BackgroundHandlerTime: ps.TotalDuration,
		RegisteredHandlers:    b.registry.Count(),
		RegisteredEventTypes:  len(b.registry.Types()),
		QueueDepth:            ps.QueueDepth,
	}
}

// Close stops the Background pool, waiting for queued invocations or until
// ctx is done, then removes all handlers. Closing twice is a no-op.
func (b *bus) Close(ctx context.Context) error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	err := b.pool.Stop(ctx)
	b.registry.Clear()
	if errors.Is(err, dispatch.ErrNotRunning) {
		return nil
	}
	return err
}

func checkSubscriber(subscriber any) error {
	if subscriber == nil {
		return fmt.Errorf("%w: nil subscriber", ErrInvalidArgument)
	}
	if !reflect.ValueOf(subscriber).Comparable() {
		return fmt.Errorf("%w: subscriber %T is not comparable", ErrInvalidArgument, subscriber)
	}
	return nil
}

// panicLogger logs every recovered panic at debug level with its stack.
func panicLogger(logger *zap.Logger) dispatch.PanicHandler {
	return func(event any, value any, stack []byte) {
		logger.Debug("recovered panic",
			zap.String("event_type", fmt.Sprintf("%T", event)),
			zap.Any("panic", value),
			zap.ByteString("stack", stack),
		)
	}
}

func subscriberName(subscriber any) string {
	if s, ok := subscriber.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", subscriber)
}
