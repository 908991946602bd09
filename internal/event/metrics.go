package event

import (
	"github.com/prometheus/client_golang/prometheus"
)

// collector exports bus Stats as Prometheus metrics.
type collector struct {
	bus Bus

	eventsPublished     *prometheus.Desc
	handlersExecuted    *prometheus.Desc
	handlerErrors       *prometheus.Desc
	handlerPanics       *prometheus.Desc
	deadEvents          *prometheus.Desc
	exceptionEvents     *prometheus.Desc
	feedbackFailures    *prometheus.Desc
	inlineDispatched    *prometheus.Desc
	inlineSeconds       *prometheus.Desc
	backgroundSubmitted *prometheus.Desc
	overflow            *prometheus.Desc
	backgroundProcessed *prometheus.Desc
	backgroundSeconds   *prometheus.Desc
	registered          *prometheus.Desc
	registeredTypes     *prometheus.Desc
	queueDepth          *prometheus.Desc
}

// NewCollector returns a prometheus.Collector reading b.Stats on every
// scrape. Metric names are prefixed with namespace when it is not empty.
func NewCollector(b Bus, namespace string) prometheus.Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "eventbus", name), help, nil, nil)
	}
	return &collector{
		bus:                 b,
		eventsPublished:     desc("events_published_total", "Events published, feedback events excluded."),
		handlersExecuted:    desc("handlers_executed_total", "Handler invocations across all thread modes."),
		handlerErrors:       desc("handler_errors_total", "Handler invocations that returned an error."),
		handlerPanics:       desc("handler_panics_total", "Handler invocations that panicked."),
		deadEvents:          desc("dead_events_total", "DeadEvent values emitted."),
		exceptionEvents:     desc("subscriber_exception_events_total", "SubscriberExceptionEvent values emitted."),
		feedbackFailures:    desc("feedback_failures_total", "Feedback handler failures that were swallowed."),
		inlineDispatched:    desc("inline_dispatched_total", "Handler invocations run on the publisher's goroutine."),
		inlineSeconds:       desc("inline_handler_seconds_total", "Time spent in inline handler invocations."),
		backgroundSubmitted: desc("background_submitted_total", "Background invocations handed to the worker pool."),
		overflow:            desc("background_overflow_total", "Background invocations run outside the worker pool."),
		backgroundProcessed: desc("background_processed_total", "Background invocations that finished."),
		backgroundSeconds:   desc("background_handler_seconds_total", "Time spent in Background handler invocations."),
		registered:          desc("registered_handlers", "Currently registered handler descriptors."),
		registeredTypes:     desc("registered_event_types", "Event types that currently have handlers."),
		queueDepth:          desc("background_queue_depth", "Background invocations waiting for a worker."),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.eventsPublished
	ch <- c.handlersExecuted
	ch <- c.handlerErrors
	ch <- c.handlerPanics
	ch <- c.deadEvents
	ch <- c.exceptionEvents
	ch <- c.feedbackFailures
	ch <- c.inlineDispatched
	ch <- c.inlineSeconds
	ch <- c.backgroundSubmitted
	ch <- c.overflow
	ch <- c.backgroundProcessed
	ch <- c.backgroundSeconds
	ch <- c.registered
	ch <- c.registeredTypes
	ch <- c.queueDepth
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	s := c.bus.Stats()

	counter := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v)
	}
	gauge := func(d *prometheus.Desc, v int) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v))
	}

	counter(c.eventsPublished, float64(s.EventsPublished))
	counter(c.handlersExecuted, float64(s.HandlersExecuted))
	counter(c.handlerErrors, float64(s.HandlerErrors))
	counter(c.handlerPanics, float64(s.HandlerPanics))
	counter(c.deadEvents, float64(s.DeadEvents))
	counter(c.exceptionEvents, float64(s.ExceptionEvents))
	counter(c.feedbackFailures, float64(s.FeedbackFailures))
	counter(c.inlineDispatched, float64(s.InlineDispatched))
	counter(c.inlineSeconds, s.InlineHandlerTime.Seconds())
	counter(c.backgroundSubmitted, float64(s.BackgroundSubmitted))
	counter(c.overflow, float64(s.BackgroundOverflow))
	counter(c.backgroundProcessed, float64(s.BackgroundProcessed))
	counter(c.backgroundSeconds, s.BackgroundHandlerTime.Seconds())
	gauge(c.registered, s.RegisteredHandlers)
	gauge(c.registeredTypes, s.RegisteredEventTypes)
	gauge(c.queueDepth, s.QueueDepth)
}
