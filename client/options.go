package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/adamwoolhether/rategate/gate"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error

type options struct {
	client            *http.Client
	rt                http.RoundTripper
	timeout           *time.Duration
	userAgent         string
	throttle          *throttleConfig
	sharedGate        *gate.Gate
	requestID         bool
	propagate         bool
	noFollowRedirects bool
	logger            *slog.Logger
}

// throttleConfig is the gate requested by WithThrottle, built once the
// client's logger is known.
type throttleConfig struct {
	limit  int
	window time.Duration
	opts   []gate.Option
}

// WithClient replaces the default [http.Client]. Its Transport, if set,
// becomes the base of the transport chain.
func WithClient(hc *http.Client) Option {
	return func(o *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		o.client = hc
		return nil
	}
}

// WithTransport sets the base [http.RoundTripper], taking precedence over
// the Transport of a client given to WithClient.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		o.rt = rt
		return nil
	}
}

// WithTimeout sets [http.Client.Timeout]. For a throttled client the
// timeout also covers time spent waiting at the gate.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("timeout[%s] must not be negative", d)
		}
		o.timeout = &d
		return nil
	}
}

// WithUserAgent sets the User-Agent header on every outgoing request.
func WithUserAgent(header string) Option {
	return func(o *options) error {
		o.userAgent = header
		return nil
	}
}

// WithThrottle admits at most limit requests in any trailing window. Requests
// beyond the limit block until the window has room. gateOpts tune the
// underlying [gate.Gate]; [Client.Gate] exposes it once built.
func WithThrottle(limit int, window time.Duration, gateOpts ...gate.Option) Option {
	return func(o *options) error {
		if limit <= 0 || window <= 0 {
			return fmt.Errorf("limit[%d] and window[%s] must be greater than zero: %w", limit, window, gate.ErrInvalidConfig)
		}
		o.throttle = &throttleConfig{limit: limit, window: window, opts: gateOpts}
		return nil
	}
}

// WithGate throttles requests through an existing gate, letting several
// clients share one quota.
func WithGate(g *gate.Gate) Option {
	return func(o *options) error {
		if g == nil {
			return errors.New("gate must not be nil")
		}
		o.sharedGate = g
		return nil
	}
}

// WithRequestID stamps every outgoing request with a fresh X-Request-ID
// header unless the request already carries one.
func WithRequestID() Option {
	return func(o *options) error {
		o.requestID = true
		return nil
	}
}

// WithTracePropagation injects the request context's trace into outgoing
// headers using the global otel text map propagator.
func WithTracePropagation() Option {
	return func(o *options) error {
		o.propagate = true
		return nil
	}
}

// WithNoFollowRedirects returns redirect responses to the caller as-is.
func WithNoFollowRedirects() Option {
	return func(o *options) error {
		o.noFollowRedirects = true
		return nil
	}
}

// WithLogger sets the logger used by the client, its throttle and, unless
// overridden through WithThrottle's gate options, its gate.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}
