package throttle

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/adamwoolhether/rategate/gate"
)

var (
	ErrNilGate       = errors.New("gate must not be nil")
	ErrWaitingFailed = errors.New("gate waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// throttle is an http.RoundTripper, using a sliding-window gate
// to restrict outbound calls.
type throttle struct {
	gate  *gate.Gate
	next  http.RoundTripper
	logFn func() *slog.Logger
}
