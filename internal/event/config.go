package event

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls bus behavior. The zero value is not the default; start
// from DefaultConfig.
type Config struct {
	// ThrowSubscriberException makes Publish return a *PublishError when a
	// handler fails, aborting the remaining handlers of that call.
	ThrowSubscriberException bool `yaml:"throw_subscriber_exception"`

	// SendSubscriberExceptionEvent publishes a SubscriberExceptionEvent for
	// every handler failure.
	SendSubscriberExceptionEvent bool `yaml:"send_subscriber_exception_event"`

	// LogSubscriberExceptions logs every handler failure.
	LogSubscriberExceptions bool `yaml:"log_subscriber_exceptions"`

	// LogNoSubscriberMessages logs events that had no handler.
	LogNoSubscriberMessages bool `yaml:"log_no_subscriber_messages"`

	// SendNoSubscriberEvent publishes a DeadEvent for events that had no
	// handler.
	SendNoSubscriberEvent bool `yaml:"send_no_subscriber_event"`

	// UseWeakReferences is accepted and reported but has no effect: a
	// handler callback bound to its subscriber keeps the subscriber
	// reachable until it is unregistered.
	UseWeakReferences bool `yaml:"use_weak_references"`

	// EventInheritanceDepth is how many supertype levels dispatch
	// considers. 0 matches the exact type only; negative is unlimited.
	EventInheritanceDepth int `yaml:"event_inheritance_depth"`

	// BackgroundWorkers is the number of worker goroutines serving
	// Background handlers.
	BackgroundWorkers int `yaml:"background_workers"`

	// BackgroundQueueSize bounds the Background queue. When it is full the
	// invocation runs on its own goroutine.
	BackgroundQueueSize int `yaml:"background_queue_size"`
}

// DefaultConfig returns the default bus configuration.
func DefaultConfig() Config {
	return Config{
		ThrowSubscriberException:     false,
		SendSubscriberExceptionEvent: true,
		LogSubscriberExceptions:      true,
		LogNoSubscriberMessages:      false,
		SendNoSubscriberEvent:        false,
		UseWeakReferences:            false,
		EventInheritanceDepth:        0,
		BackgroundWorkers:            8,
		BackgroundQueueSize:          1024,
	}
}

// Validate checks the configuration. The returned error wraps
// ErrConfiguration and one ValidationError per invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.BackgroundWorkers < 1 {
		errs = append(errs, ValidationError{
			Field:   "background_workers",
			Message: fmt.Sprintf("must be at least 1, got %d", c.BackgroundWorkers),
		})
	}
	if c.BackgroundQueueSize < 1 {
		errs = append(errs, ValidationError{
			Field:   "background_queue_size",
			Message: fmt.Sprintf("must be at least 1, got %d", c.BackgroundQueueSize),
		})
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrConfiguration, errors.Join(errs...))
}

// DecodeConfig reads a YAML configuration from r. Fields not present keep
// their defaults; unknown fields are rejected.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: decode: %w", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := DecodeConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
