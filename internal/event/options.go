package event

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// BusOption configures a Bus.
type BusOption func(*busOptions)

type busOptions struct {
	config         Config
	logger         *zap.Logger
	tracerProvider trace.TracerProvider
}

// WithConfig sets the bus configuration. It is validated by NewBus.
func WithConfig(cfg Config) BusOption {
	return func(o *busOptions) {
		o.config = cfg
	}
}

// WithLogger sets the logger used for bus diagnostics.
func WithLogger(l *zap.Logger) BusOption {
	return func(o *busOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTracerProvider sets the tracer provider for publish spans. The
// default is the otel global provider.
func WithTracerProvider(tp trace.TracerProvider) BusOption {
	return func(o *busOptions) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}
