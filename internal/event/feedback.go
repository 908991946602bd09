package event

// DeadEvent is published when an event had no matching handler and
// SendNoSubscriberEvent is enabled. Handlers for DeadEvent can log or
// forward events nobody consumed.
type DeadEvent struct {
	// Event is the original event that had no handler.
	Event any

	// Bus is the bus the event was published on.
	Bus Bus
}

// SubscriberExceptionEvent is published when a handler returned an error or
// panicked and SendSubscriberExceptionEvent is enabled.
type SubscriberExceptionEvent struct {
	// Bus is the bus the failing handler was invoked by.
	Bus Bus

	// Err is the handler's original error. For a panic it is a *PanicError.
	Err error

	// CausingEvent is the event the handler was processing.
	CausingEvent any

	// CausingSubscriber is the subscriber owning the failing handler.
	CausingSubscriber any
}

// isFeedback reports whether ev is one of the bus's own feedback events.
// Feedback events are delivered on a direct path that never produces
// further feedback.
func isFeedback(ev any) bool {
	switch ev.(type) {
	case DeadEvent, *DeadEvent, SubscriberExceptionEvent, *SubscriberExceptionEvent:
		return true
	}
	return false
}
