package event_test

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/eventbus/internal/event"
	"github.com/dshills/eventbus/internal/event/binder"
)

type OrderPlaced struct {
	event.Base
	OrderID string
}

type auditLog struct{}

func (a *auditLog) EventHandlers() []binder.Spec {
	return []binder.Spec{
		{Method: "Record", Priority: event.PriorityHigh},
	}
}

func (a *auditLog) Record(o OrderPlaced) {
	fmt.Println("audit:", o.OrderID)
}

type mailer struct{}

func (m *mailer) OnOrderPlaced(_ context.Context, o OrderPlaced) error {
	fmt.Println("mail:", o.OrderID)
	return nil
}

func Example() {
	bus, err := event.NewBus(event.WithLogger(zap.NewNop()))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer bus.Close(context.Background())

	if err := binder.Register(bus, &mailer{}); err != nil {
		fmt.Println(err)
		return
	}
	if err := binder.Register(bus, &auditLog{}); err != nil {
		fmt.Println(err)
		return
	}

	_ = bus.Publish(context.Background(), OrderPlaced{Base: event.NewBase(), OrderID: "A-1"})
	// Output:
	// audit: A-1
	// mail: A-1
}

func Example_deadEvent() {
	cfg := event.DefaultConfig()
	cfg.SendNoSubscriberEvent = true
	bus, err := event.NewBus(event.WithConfig(cfg), event.WithLogger(zap.NewNop()))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer bus.Close(context.Background())

	sub := &struct{ name string }{"dead letters"}
	d, err := binder.Func(sub, func(_ context.Context, de event.DeadEvent) error {
		fmt.Printf("nobody handled %T\n", de.Event)
		return nil
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	_ = bus.Register(sub, d)

	_ = bus.Publish(context.Background(), OrderPlaced{OrderID: "A-2"})
	// Output:
	// nobody handled event_test.OrderPlaced
}

func Example_throwSubscriberException() {
	cfg := event.DefaultConfig()
	cfg.ThrowSubscriberException = true
	cfg.SendSubscriberExceptionEvent = false
	bus, err := event.NewBus(event.WithConfig(cfg), event.WithLogger(zap.NewNop()))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer bus.Close(context.Background())

	errOutOfStock := errors.New("out of stock")
	sub := &mailer{}
	d, _ := binder.Func(sub, func(context.Context, OrderPlaced) error {
		return errOutOfStock
	})
	_ = bus.Register(sub, d)

	err = bus.Publish(context.Background(), OrderPlaced{OrderID: "A-3"})
	fmt.Println(errors.Is(err, errOutOfStock), errors.Is(err, event.ErrHandlerFailure))
	// Output:
	// true true
}
