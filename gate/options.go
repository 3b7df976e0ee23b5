package gate

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/rategate/stats"
)

// Option is a functional option for configuring a [Gate] via [New].
type Option func(*options) error

type options struct {
	poll          time.Duration
	maxWait       time.Duration
	saturationLog time.Duration
	logFn         func() *slog.Logger
	recorder      stats.Recorder
	tracer        trace.Tracer
}

// WithPollInterval sets how often a waiting caller re-evaluates the window.
// A waiter never sleeps past the moment the oldest admission expires.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("poll interval[%s] must be greater than zero: %w", d, ErrInvalidConfig)
		}
		o.poll = d
		return nil
	}
}

// WithMaxWait bounds how long a caller may wait for a slot. Zero, the
// default, waits until the caller's context ends.
func WithMaxWait(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("max wait[%s] must not be negative: %w", d, ErrInvalidConfig)
		}
		o.maxWait = d
		return nil
	}
}

// WithLogger sets the logger, resolved lazily on every use. A nil-returning
// logFn silences the gate.
func WithLogger(logFn func() *slog.Logger) Option {
	return func(o *options) error {
		if logFn == nil {
			return fmt.Errorf("logger func must not be nil: %w", ErrInvalidConfig)
		}
		o.logFn = logFn
		return nil
	}
}

// WithRecorder sends every admission event to r.
func WithRecorder(r stats.Recorder) Option {
	return func(o *options) error {
		o.recorder = r
		return nil
	}
}

// WithTracer overrides the tracer used for admission spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) error {
		if t == nil {
			return fmt.Errorf("tracer must not be nil: %w", ErrInvalidConfig)
		}
		o.tracer = t
		return nil
	}
}

// WithSaturationLogInterval limits how often the gate logs that it is full.
func WithSaturationLogInterval(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("saturation log interval[%s] must be greater than zero: %w", d, ErrInvalidConfig)
		}
		o.saturationLog = d
		return nil
	}
}
