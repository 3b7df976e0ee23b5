package client

import (
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}

// requestID is an http.RoundTripper that tags each request with a uuid so
// throttled calls can be matched to server side logs.
type requestID struct {
	base http.RoundTripper
}

func (rid requestID) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.Header.Get(requestIDHeader) != "" {
		return rid.base.RoundTrip(r)
	}

	cpy := r.Clone(r.Context())
	cpy.Header.Set(requestIDHeader, uuid.NewString())
	return rid.base.RoundTrip(cpy)
}

// propagator is an http.RoundTripper writing the caller's trace context
// into the outgoing headers with the global otel propagator.
type propagator struct {
	base http.RoundTripper
}

func (p propagator) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	otel.GetTextMapPropagator().Inject(r.Context(), propagation.HeaderCarrier(cpy.Header))
	return p.base.RoundTrip(cpy)
}
