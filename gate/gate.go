package gate

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/adamwoolhether/rategate/stats"
)

const tracerName = "github.com/adamwoolhether/rategate/gate"

// Gate admits at most limit operations in any trailing window, blocking
// callers until the window has room.
type Gate struct {
	limit   int
	window  time.Duration
	poll    time.Duration
	maxWait time.Duration

	logFn     func() *slog.Logger
	recorder  stats.Recorder
	tracer    trace.Tracer
	saturated *rate.Sometimes

	// mu guards everything below. It is never held while sleeping or while
	// a throttled operation runs.
	mu       sync.Mutex
	history  []entry
	seq      uint64
	waiting  int
	granted  uint64
	canceled uint64
}

// New returns a Gate admitting at most limit operations per window.
func New(limit int, window time.Duration, optFns ...Option) (*Gate, error) {
	if limit <= 0 || window <= 0 {
		return nil, fmt.Errorf("limit[%d] and window[%s] must be greater than zero: %w", limit, window, ErrInvalidConfig)
	}

	opts := options{
		poll:          DefaultPollInterval,
		saturationLog: time.Second,
		logFn:         slog.Default,
	}
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying gate option: %w", err)
		}
	}

	if opts.tracer == nil {
		opts.tracer = otel.Tracer(tracerName)
	}

	g := &Gate{
		limit:     limit,
		window:    window,
		poll:      opts.poll,
		maxWait:   opts.maxWait,
		logFn:     opts.logFn,
		recorder:  opts.recorder,
		tracer:    opts.tracer,
		saturated: &rate.Sometimes{Interval: opts.saturationLog},
		history:   make([]entry, 0, limit),
	}

	return g, nil
}

// Limit returns the maximum admissions per window.
func (g *Gate) Limit() int { return g.limit }

// Window returns the length of the trailing window.
func (g *Gate) Window() time.Duration { return g.window }

// Admit blocks until a slot is reserved and recorded, or ctx ends.
func (g *Gate) Admit(ctx context.Context) error {
	_, err := g.reserve(ctx)
	return err
}

// TryAdmit evaluates the window once and reserves a slot if one is free.
// It never blocks.
func (g *Gate) TryAdmit() bool {
	g.mu.Lock()
	_, _, ok := g.evaluate(time.Now())
	g.mu.Unlock()

	if ok {
		g.record(context.Background(), stats.Event{Outcome: stats.Granted, At: time.Now()})
	}

	return ok
}

// Stats prunes expired admissions and reports the gate's current state.
func (g *Gate) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prune(time.Now())

	return Stats{
		Limit:    g.limit,
		Window:   g.window,
		Used:     len(g.history),
		Waiting:  g.waiting,
		Granted:  g.granted,
		Canceled: g.canceled,
	}
}

// reserve runs the wait loop and returns the id of the reserved entry.
func (g *Gate) reserve(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w early: %w", ErrWaitCanceled, err)
	}

	ctx, span := g.tracer.Start(ctx, "gate.admit", trace.WithAttributes(
		attribute.Int("gate.limit", g.limit),
		attribute.String("gate.window", g.window.String()),
	))
	defer span.End()

	if g.maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, g.maxWait, ErrWaitExceeded)
		defer cancel()
	}

	start := time.Now()
	var timer *time.Timer

	for {
		g.mu.Lock()
		id, retryIn, ok := g.evaluate(time.Now())
		switch {
		case ok && timer != nil:
			g.waiting--
		case !ok && timer == nil:
			g.waiting++
		}
		g.mu.Unlock()

		if ok {
			waited := time.Since(start)
			span.SetAttributes(attribute.Int64("gate.waited_ms", waited.Milliseconds()))

			ev := stats.Event{Outcome: stats.Granted, At: time.Now()}
			if timer != nil {
				timer.Stop()
				ev.Outcome = stats.Delayed
				ev.Waited = waited
				if logger := g.logFn(); logger != nil {
					logger.Info("gate wait complete", "waited", waited.String(), "limit", g.limit, "window", g.window.String())
				}
			}
			g.record(ctx, ev)

			return id, nil
		}

		delay := min(g.poll, retryIn)
		if timer == nil {
			g.saturated.Do(func() {
				if logger := g.logFn(); logger != nil {
					logger.Info("gate saturated, waiting for capacity", "limit", g.limit, "window", g.window.String(), "retryIn", retryIn.String())
				}
			})
			timer = time.NewTimer(delay)
		} else {
			timer.Reset(delay)
		}

		select {
		case <-ctx.Done():
			timer.Stop()

			g.mu.Lock()
			g.waiting--
			g.canceled++
			g.mu.Unlock()

			waited := time.Since(start)
			err := fmt.Errorf("%w: %w", ErrWaitCanceled, context.Cause(ctx))

			span.RecordError(err)
			span.SetStatus(codes.Error, "admission canceled")
			if logger := g.logFn(); logger != nil {
				logger.Warn("gate wait canceled", "waited", waited.String(), "error", err)
			}
			g.record(ctx, stats.Event{Outcome: stats.Canceled, Waited: waited, At: time.Now()})

			return 0, err
		case <-timer.C:
		}
	}
}

// evaluate prunes stale history and appends an entry stamped now when the
// window has room. Otherwise it reports how long until the oldest live entry
// expires. Callers must hold mu.
func (g *Gate) evaluate(now time.Time) (id uint64, retryIn time.Duration, ok bool) {
	g.prune(now)

	if len(g.history) < g.limit {
		g.seq++
		g.granted++
		g.history = append(g.history, entry{id: g.seq, at: now})
		return g.seq, 0, true
	}

	return 0, g.history[0].at.Add(g.window).Sub(now), false
}

// prune drops every entry at or before now-window. History is sorted, so
// stale entries form a prefix. Callers must hold mu.
func (g *Gate) prune(now time.Time) {
	cutoff := now.Add(-g.window)

	i := 0
	for i < len(g.history) && !g.history[i].at.After(cutoff) {
		i++
	}
	if i > 0 {
		g.history = slices.Delete(g.history, 0, i)
	}
}

// restamp moves the reservation id to the end of the history with the
// current time. A reservation that already expired stays gone, so the live
// count can never exceed limit.
func (g *Gate) restamp(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	g.prune(now)

	i := slices.IndexFunc(g.history, func(e entry) bool { return e.id == id })
	if i < 0 {
		return
	}

	g.history = append(slices.Delete(g.history, i, i+1), entry{id: id, at: now})
}

// record forwards ev to the recorder, detached from ctx cancellation.
func (g *Gate) record(ctx context.Context, ev stats.Event) {
	if g.recorder == nil {
		return
	}

	if err := g.recorder.Record(context.WithoutCancel(ctx), ev); err != nil {
		if logger := g.logFn(); logger != nil {
			logger.Warn("recording gate event", "outcome", string(ev.Outcome), "error", err)
		}
	}
}
