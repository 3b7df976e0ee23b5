// Package rategate exposes the gate and client builders.
package rategate

import (
	"time"

	"github.com/adamwoolhether/rategate/client"
	"github.com/adamwoolhether/rategate/gate"
)

// NewGate returns a gate admitting at most limit operations in any
// trailing window.
func NewGate(limit int, window time.Duration, opts ...gate.Option) (*gate.Gate, error) {
	return gate.New(limit, window, opts...)
}

// NewClient instantiates a new *Client with the provided options.
// If not specified, the default http.Client and http.Transport are used.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}
