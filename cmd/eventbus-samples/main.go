// Package main runs the event bus sample programs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/eventbus/internal/event"
	"github.com/dshills/eventbus/internal/event/binder"
	"github.com/dshills/eventbus/internal/logging"
	"github.com/dshills/eventbus/internal/sample/console"
	"github.com/dshills/eventbus/internal/sample/news"
	"github.com/dshills/eventbus/internal/sample/sensor"
)

// Version information (set via ldflags during build).
var version = "dev"

type options struct {
	sample      string
	duration    time.Duration
	configPath  string
	logLevel    string
	metricsAddr string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	logger, err := logging.New(logging.Config{Level: opts.logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	cfg := event.DefaultConfig()
	if opts.configPath != "" {
		cfg, err = event.LoadConfig(opts.configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	bus, err := event.NewBus(event.WithConfig(cfg), event.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create event bus: %v\n", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := bus.Close(ctx); err != nil {
			logger.Warn("event bus close", zap.Error(err))
		}
	}()

	if err := registerFeedback(bus, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	if opts.metricsAddr != "" {
		srv := metricsServer(opts.metricsAddr, bus)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", zap.String("addr", opts.metricsAddr))
	}

	out := console.New(os.Stdout)
	if err := runSamples(ctx, opts.sample, bus, out, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	stats := bus.Stats()
	logger.Info("samples finished",
		zap.Uint64("events_published", stats.EventsPublished),
		zap.Uint64("handlers_executed", stats.HandlersExecuted),
		zap.Uint64("handler_errors", stats.HandlerErrors),
	)
	return 0
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("eventbus-samples", flag.ContinueOnError)

	fs.StringVar(&opts.sample, "sample", "both", "Sample to run (sensor, news, both)")
	fs.DurationVar(&opts.duration, "duration", 30*time.Second, "How long to run; 0 runs until interrupted")
	fs.StringVar(&opts.configPath, "config", "", "Path to event bus YAML configuration")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	showVersion := fs.Bool("version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "eventbus-samples - event bus sample programs\n\n")
		fmt.Fprintf(fs.Output(), "Usage: eventbus-samples [options]\n\n")
		fmt.Fprintf(fs.Output(), "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\nExamples:\n")
		fmt.Fprintf(fs.Output(), "  eventbus-samples -sample sensor -duration 1m\n")
		fmt.Fprintf(fs.Output(), "  eventbus-samples -metrics-addr :9090 -duration 0\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if *showVersion {
		fmt.Printf("eventbus-samples %s\n", version)
		os.Exit(0)
	}

	switch opts.sample {
	case "sensor", "news", "both":
	default:
		return opts, fmt.Errorf("invalid sample %q (must be sensor, news, or both)", opts.sample)
	}
	if _, err := logging.ParseLevel(opts.logLevel); err != nil {
		return opts, err
	}
	if opts.duration < 0 {
		return opts, fmt.Errorf("duration must not be negative")
	}
	return opts, nil
}

func runSamples(ctx context.Context, sample string, bus event.Bus, out *console.Console, logger *zap.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	if sample == "sensor" || sample == "both" {
		g.Go(func() error {
			return sensor.Run(ctx, bus, out, logging.Component(logger, "sensor"))
		})
	}
	if sample == "news" || sample == "both" {
		g.Go(func() error {
			return news.Run(ctx, bus, out, logging.Component(logger, "news"))
		})
	}
	return g.Wait()
}

// feedbackLogger reports the bus's feedback events.
type feedbackLogger struct {
	logger *zap.Logger
}

func (f *feedbackLogger) OnDeadEvent(d event.DeadEvent) {
	f.logger.Warn("dead event", zap.String("event_type", fmt.Sprintf("%T", d.Event)))
}

func (f *feedbackLogger) OnSubscriberException(e event.SubscriberExceptionEvent) {
	f.logger.Warn("subscriber exception",
		zap.String("event_type", fmt.Sprintf("%T", e.CausingEvent)),
		zap.String("subscriber", fmt.Sprintf("%T", e.CausingSubscriber)),
		zap.Error(e.Err),
	)
}

func registerFeedback(bus event.Bus, logger *zap.Logger) error {
	return binder.Register(bus, &feedbackLogger{logger: logging.Component(logger, "feedback")})
}

func metricsServer(addr string, bus event.Bus) *http.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		event.NewCollector(bus, "samples"),
		collectors.NewGoCollector(),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
