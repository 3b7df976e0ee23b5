// Package client provides a JSON HTTP client built on [net/http] whose
// outbound requests can be throttled by a sliding window [gate.Gate].
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(10 * time.Second),
//		client.WithUserAgent("myapp/1.0"),
//		client.WithThrottle(30, time.Minute),
//	)
//
// Requests beyond the limit block in the transport until the window has
// room, or until the request context ends. Several clients can share one
// quota by passing the same gate to [WithGate].
//
// # Making Requests
//
// Construct a [URL] and [Request], then execute with [Client.Do]:
//
//	u := client.URL("https", "api.example.com", "/v1/documents")
//	req, err := client.Request(ctx, u, http.MethodPost, client.WithPayload(doc))
//	err = c.Do(req, http.StatusCreated, client.WithDestination(&result))
//
// # Inspecting the Gate
//
// [Client.Gate] exposes the gate so callers can read [gate.Gate.Stats]:
//
//	st := c.Gate().Stats()
//	fmt.Println(st.Used, "of", st.Limit, "slots in use")
//
// For lower-level control see the
// [github.com/adamwoolhether/rategate/client/throttle] package.
package client
