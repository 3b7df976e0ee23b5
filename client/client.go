package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/adamwoolhether/rategate/client/throttle"
	"github.com/adamwoolhether/rategate/gate"
)

// Client wraps the std-lib *http.Client, optionally throttled by a
// [gate.Gate]. The defaults can be customized via optional funcs.
type Client struct {
	c      *http.Client
	logger *slog.Logger
	gate   *gate.Gate
}

// Build returns a Client configured by optFns. When throttling is enabled the
// gate wraps the whole transport chain, so every attempt, including ones
// that fail in the transport, takes a slot.
func Build(optFns ...Option) (*Client, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}
	if opts.throttle != nil && opts.sharedGate != nil {
		return nil, ErrThrottleConflict
	}

	cl := &Client{
		c:      opts.client,
		logger: opts.logger,
		gate:   opts.sharedGate,
	}
	if cl.c == nil {
		cl.c = &http.Client{}
	}
	if cl.logger == nil {
		cl.logger = slog.Default()
	}
	logFn := func() *slog.Logger { return cl.logger }

	if opts.timeout != nil {
		cl.c.Timeout = *opts.timeout
	}
	if opts.noFollowRedirects {
		cl.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	if opts.throttle != nil {
		g, err := opts.throttle.newGate(logFn)
		if err != nil {
			return nil, fmt.Errorf("configuring gate: %w", err)
		}
		cl.gate = g
	}

	transport := opts.transport(cl.c.Transport)
	if cl.gate != nil {
		rt, err := throttle.NewRoundTripper(cl.gate, logFn, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	cl.c.Transport = transport

	return cl, nil
}

// transport layers the header decorators over the base round tripper,
// innermost first: User-Agent, X-Request-ID, trace context.
func (o options) transport(clientRT http.RoundTripper) http.RoundTripper {
	base := o.rt
	if base == nil {
		base = clientRT
	}
	if base == nil {
		base = http.DefaultTransport
	}

	if o.userAgent != "" {
		base = userAgent{value: o.userAgent, base: base}
	}
	if o.requestID {
		base = requestID{base: base}
	}
	if o.propagate {
		base = propagator{base: base}
	}

	return base
}

// newGate builds the gate requested by WithThrottle. The client's logger is
// installed first so gate options given by the caller can override it.
func (tc *throttleConfig) newGate(logFn func() *slog.Logger) (*gate.Gate, error) {
	opts := make([]gate.Option, 0, len(tc.opts)+1)
	opts = append(opts, gate.WithLogger(logFn))
	opts = append(opts, tc.opts...)

	return gate.New(tc.limit, tc.window, opts...)
}

// Gate returns the gate throttling the client, or nil when the client is
// unthrottled.
func (c *Client) Gate() *gate.Gate {
	return c.gate
}

// Do fires req, checks the status against expCode and decodes the JSON
// body into the destination given by WithDestination, if any.
func (c *Client) Do(req *http.Request, expCode int, opts ...DoOption) error {
	var settings doOpts
	for _, opt := range opts {
		if err := opt(&settings); err != nil {
			return err
		}
	}

	return c.exec(req, expCode, settings.decode)
}

// decode reads the response body into the configured destination.
func (o doOpts) decode(resp *http.Response) error {
	if o.responseBody == nil {
		return nil
	}

	d := json.NewDecoder(resp.Body)
	if o.useJSONNum {
		d.UseNumber()
	}
	if err := d.Decode(o.responseBody); err != nil {
		return fmt.Errorf("decoding body: %w", err)
	}

	return nil
}

// Request is a convenience method that wraps the package level Request.
func (c *Client) Request(ctx context.Context, reqURL *url.URL, method string, opts ...RequestOption) (*http.Request, error) {
	return Request(ctx, reqURL, method, opts...)
}

// URL is a convenience method that wraps the package level URL.
func (c *Client) URL(scheme, host, path string, opts ...URLOption) *url.URL {
	return URL(scheme, host, path, opts...)
}

// exec sends req and hands the response to fn when the status matches.
// The body is always drained and closed, except after fn fails mid-read.
func (c *Client) exec(req *http.Request, expCode int, fn execFn) error {
	resp, err := c.c.Do(req)
	if err != nil {
		return fmt.Errorf("exec http do: %w", err)
	}

	drain := true
	defer func() {
		if drain {
			if _, err := io.Copy(io.Discard, resp.Body); err != nil {
				c.logger.Error("failed to discard unused body", "error", err)
			}
		}
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != expCode {
		return statusError(resp)
	}

	if err := fn(resp); err != nil {
		drain = false
		return fmt.Errorf("exec fn: %w", err)
	}

	return nil
}

// statusError captures at most maxErrBodySize of the body of an
// unexpected response.
func statusError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
	if err != nil {
		body = []byte("unable to read body")
	}

	sentinel := ErrUnexpectedStatusCode
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		sentinel = errors.Join(ErrUnexpectedStatusCode, ErrAuthFailure)
	}

	return &UnexpectedStatusError{
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Err:        sentinel,
	}
}

// Request instantiates an *http.Request with the provided information.
// Content-Type defaults to `application/json` if unspecified via WithContentType.
func Request(ctx context.Context, reqURL *url.URL, method string, opts ...RequestOption) (*http.Request, error) {
	settings := requestOpts{contentType: "application/json"}
	for _, opt := range opts {
		if err := opt(&settings); err != nil {
			return nil, err
		}
	}

	body := io.Reader(http.NoBody)
	if settings.body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(settings.body); err != nil {
			return nil, fmt.Errorf("encoding request payload: %w", err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	req.Header.Set("Content-Type", settings.contentType)
	for k, vals := range settings.headers {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	for _, cookie := range settings.cookies {
		req.AddCookie(cookie)
	}

	return req, nil
}

// URL creates a url.URL for use in Request.
func URL(scheme, host, path string, opts ...URLOption) *url.URL {
	var settings urlOpts
	for _, opt := range opts {
		opt(&settings)
	}

	if settings.port != nil {
		host += ":" + strconv.Itoa(*settings.port)
	}

	endpoint := &url.URL{Scheme: scheme, Host: host, Path: path}
	if len(settings.queryStrings) > 0 {
		q := make(url.Values, len(settings.queryStrings))
		for k, v := range settings.queryStrings {
			q.Set(k, v)
		}
		endpoint.RawQuery = q.Encode()
	}

	return endpoint
}
