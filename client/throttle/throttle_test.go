package throttle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/adamwoolhether/rategate/gate"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func nopLogger() *slog.Logger { return nil }

func newGate(t *testing.T, limit int, window time.Duration) *gate.Gate {
	t.Helper()

	g, err := gate.New(limit, window, gate.WithLogger(nopLogger))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func okTransport(calls *atomic.Int32) http.RoundTripper {
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls.Add(1)
		rec := httptest.NewRecorder()
		rec.WriteHeader(http.StatusOK)
		return rec.Result(), nil
	})
}

func TestNewRoundTripper_Validation(t *testing.T) {
	testCases := []struct {
		name   string
		gate   func(t *testing.T) *gate.Gate
		expErr error
	}{
		{
			name:   "Nil gate",
			gate:   func(*testing.T) *gate.Gate { return nil },
			expErr: ErrNilGate,
		},
		{
			name: "Valid input",
			gate: func(t *testing.T) *gate.Gate { return newGate(t, 10, time.Second) },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rt, err := NewRoundTripper(tc.gate(t), nil, nil)

			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Errorf("exp err %v; got: %v", tc.expErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("exp nil err, got: %v", err)
			}
			if rt == nil {
				t.Error("exp non-nil RoundTripper")
			}
		})
	}
}

func TestThrottleRoundTripper_Behavior(t *testing.T) {
	checkWaitingFailed := func(t *testing.T, err error, caseName string) {
		if !errors.Is(err, ErrWaitingFailed) {
			t.Errorf("%s should have returned ErrWaitingFailed, got: %v", caseName, err)
		}
		if !errors.Is(err, gate.ErrWaitCanceled) || !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("%s should wrap gate.ErrWaitCanceled and context.DeadlineExceeded, got: %v", caseName, err)
		}
	}
	checkContextEnded := func(t *testing.T, err error, caseName string) {
		if !errors.Is(err, ErrContextEnded) || !errors.Is(err, context.Canceled) {
			t.Errorf("%s should have returned ErrContextEnded wrapping context.Canceled, got: %v", caseName, err)
		}
	}

	testCases := []struct {
		name             string
		limit            int
		window           time.Duration
		numRequests      int
		reqTimeout       time.Duration
		cancelContextIdx int // index of request to pre-cancel (-1 means none)
		expectReqErrs    int
		expectCalls      int32
		expectDuration   time.Duration
		errorCheck       func(t *testing.T, err error, caseName string)
	}{
		{
			name:             "Within Limit",
			limit:            5,
			window:           time.Second,
			numRequests:      5,
			cancelContextIdx: -1,
			expectCalls:      5,
		},
		{
			name:             "Exceed Limit - Succeed Waiting",
			limit:            2,
			window:           time.Second,
			numRequests:      5, // 2 immediately, 2 at 1s, 1 at 2s
			cancelContextIdx: -1,
			expectCalls:      5,
			expectDuration:   2 * time.Second,
		},
		{
			name:             "Exceed Limit - Timeout Waiting",
			limit:            2,
			window:           time.Second,
			numRequests:      5,
			reqTimeout:       500 * time.Millisecond,
			cancelContextIdx: -1,
			expectReqErrs:    3,
			expectCalls:      2,
			expectDuration:   500 * time.Millisecond,
			errorCheck:       checkWaitingFailed,
		},
		{
			name:             "Pre-Cancelled Context Fails Early",
			limit:            5,
			window:           time.Second,
			numRequests:      1,
			cancelContextIdx: 0,
			expectReqErrs:    1,
			expectCalls:      0,
			errorCheck:       checkContextEnded,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				var calls atomic.Int32

				rt, err := NewRoundTripper(newGate(t, tc.limit, tc.window), nopLogger, okTransport(&calls))
				if err != nil {
					t.Fatal(err)
				}

				var wg sync.WaitGroup
				errs := make([]error, tc.numRequests)
				start := time.Now()

				for i := range tc.numRequests {
					wg.Go(func() {
						ctx, cancel := context.Background(), context.CancelFunc(func() {})
						switch {
						case i == tc.cancelContextIdx:
							ctx, cancel = context.WithCancel(ctx)
							cancel()
						case tc.reqTimeout > 0:
							ctx, cancel = context.WithTimeout(ctx, tc.reqTimeout)
						}
						defer cancel()

						req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://gate.test/documents", nil)
						if err != nil {
							errs[i] = fmt.Errorf("failed create req %d: %w", i, err)
							return
						}

						resp, err := rt.RoundTrip(req)
						errs[i] = err
						if err == nil {
							resp.Body.Close()
						}
					})
				}

				wg.Wait()
				duration := time.Since(start)

				failed := 0
				for i, err := range errs {
					if err != nil {
						failed++
						t.Logf("Request %d failed with: %v", i, err)
						if tc.errorCheck != nil {
							tc.errorCheck(t, err, tc.name)
						}
					}
				}

				if failed != tc.expectReqErrs {
					t.Errorf("expected %d failed requests; got %d", tc.expectReqErrs, failed)
				}
				if got := calls.Load(); got != tc.expectCalls {
					t.Errorf("expected %d calls to reach the transport; got %d", tc.expectCalls, got)
				}
				if duration != tc.expectDuration {
					t.Errorf("expected requests to finish after %v; took %v", tc.expectDuration, duration)
				}
			})
		})
	}
}

func TestThrottleRoundTripper_FailedTripConsumesSlot(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		errTransport := errors.New("connection refused")
		var calls atomic.Int32

		next := roundTripFunc(func(*http.Request) (*http.Response, error) {
			calls.Add(1)
			return nil, errTransport
		})

		rt, err := NewRoundTripper(newGate(t, 1, time.Minute), nopLogger, next)
		if err != nil {
			t.Fatal(err)
		}

		req, _ := http.NewRequest(http.MethodPost, "http://gate.test/documents", nil)
		_, err = rt.RoundTrip(req)
		if !errors.Is(err, errTransport) {
			t.Fatalf("exp transport error passed through; got %v", err)
		}
		if errors.Is(err, ErrWaitingFailed) {
			t.Errorf("transport errors must not be reported as waiting failures: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		req, _ = http.NewRequestWithContext(ctx, http.MethodPost, "http://gate.test/documents", nil)
		if _, err := rt.RoundTrip(req); !errors.Is(err, ErrWaitingFailed) {
			t.Errorf("exp the failed trip to hold the only slot; got %v", err)
		}
		if got := calls.Load(); got != 1 {
			t.Errorf("exp 1 transport call; got %d", got)
		}
	})
}

func TestThrottleRoundTripper_Server(t *testing.T) {
	var callCount atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount.Add(1)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	const window = 200 * time.Millisecond
	g, err := gate.New(3, window, gate.WithLogger(nopLogger), gate.WithPollInterval(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	rt, err := NewRoundTripper(g, nopLogger, http.DefaultTransport)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{Transport: rt}

	start := time.Now()
	var wg sync.WaitGroup
	for i := range 6 {
		wg.Go(func() {
			resp, err := client.Get(server.URL)
			if err != nil {
				t.Errorf("request %d: %v", i, err)
				return
			}
			resp.Body.Close()
		})
	}
	wg.Wait()

	if got := callCount.Load(); got != 6 {
		t.Errorf("exp 6 server calls; got %d", got)
	}
	if d := time.Since(start); d < window {
		t.Errorf("second batch should wait a full window (>= %v); took %v", window, d)
	}
}
