package throttle

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/adamwoolhether/rategate/gate"
)

// NewRoundTripper returns an http.RoundTripper that admits each outbound
// request through g. logFn lazily resolves the logger at request time, making
// option ordering irrelevant. A nil-returning logFn disables logging.
func NewRoundTripper(g *gate.Gate, logFn func() *slog.Logger, next http.RoundTripper) (http.RoundTripper, error) {
	if g == nil {
		return nil, ErrNilGate
	}
	if next == nil {
		next = http.DefaultTransport
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	t := &throttle{
		gate:  g,
		next:  next,
		logFn: logFn,
	}

	return t, nil
}

func (t *throttle) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	start := time.Now()
	admitted := false

	resp, err := gate.Run(ctx, t.gate, func(_ context.Context) (*http.Response, error) {
		admitted = true

		if waited := time.Since(start); waited >= time.Millisecond {
			if logger := t.logFn(); logger != nil {
				logger.Info("throttle wait complete", "waited", waited.String(), "limit", t.gate.Limit(), "window", t.gate.Window().String(), "path", r.URL.Path)
			}
		}

		if err := ctx.Err(); err != nil { // Check context hasn't expired again.
			return nil, fmt.Errorf("%w post-wait: %w", ErrContextEnded, err)
		}

		return t.next.RoundTrip(r)
	})
	if err != nil && !admitted {
		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	return resp, err
}
