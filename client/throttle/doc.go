// Package throttle provides an [http.RoundTripper] that admits outbound
// HTTP requests through a sliding-window [gate.Gate].
//
// # Usage
//
// Wrap an existing transport with [NewRoundTripper]:
//
//	g, err := gate.New(30, time.Minute) // 30 requests per trailing minute
//	rt, err := throttle.NewRoundTripper(
//		g,
//		func() *slog.Logger { return slog.Default() },
//		http.DefaultTransport,
//	)
//	httpClient := &http.Client{Transport: rt}
//
// When the window is full, outbound requests block until a slot frees up or
// the request context is cancelled. Every round trip, including one that
// fails, holds its slot for a full window after it returns.
//
// [gate.Gate]: github.com/adamwoolhether/rategate/gate.Gate
package throttle
