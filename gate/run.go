package gate

import (
	"context"
	"time"

	"github.com/adamwoolhether/rategate/stats"
)

// Run admits through g, then invokes op outside the gate's lock. Once op
// returns, success or failure, its slot is stamped with the completion time
// and expired history is pruned. The result and error of op are returned
// unchanged. If admission fails, op is not called and the zero T is returned
// with the admission error. A panicking op keeps its slot, is recorded as
// failed, and the panic is re-raised.
func Run[T any](ctx context.Context, g *Gate, op func(context.Context) (T, error)) (res T, err error) {
	id, err := g.reserve(ctx)
	if err != nil {
		return res, err
	}

	defer func() {
		p := recover()
		g.restamp(id)

		outcome := stats.Completed
		if err != nil || p != nil {
			outcome = stats.Failed
		}
		g.record(ctx, stats.Event{Outcome: outcome, At: time.Now()})

		if p != nil {
			panic(p)
		}
	}()

	return op(ctx)
}

// Do is Run for operations without a result.
func (g *Gate) Do(ctx context.Context, fn func(context.Context) error) error {
	_, err := Run(ctx, g, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
