package stats

import (
	"context"
	"time"
)

// Outcome classifies a single admission event.
type Outcome string

const (
	// Granted is an admission that did not have to wait.
	Granted Outcome = "granted"
	// Delayed is an admission granted after waiting for capacity.
	Delayed Outcome = "delayed"
	// Canceled is a waiting request whose context ended first.
	Canceled Outcome = "canceled"
	// Completed is a throttled operation that returned without error.
	Completed Outcome = "completed"
	// Failed is a throttled operation that returned an error.
	Failed Outcome = "failed"
)

// Event is one admission lifecycle step.
type Event struct {
	Outcome Outcome
	Waited  time.Duration
	At      time.Time
}

// Recorder persists admission events.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Counters aggregates events by outcome.
type Counters struct {
	Granted   int64
	Delayed   int64
	Canceled  int64
	Completed int64
	Failed    int64
}

// Admitted is the number of requests that obtained a slot.
func (c Counters) Admitted() int64 {
	return c.Granted + c.Delayed
}

func (c *Counters) add(o Outcome, n int64) {
	switch o {
	case Granted:
		c.Granted += n
	case Delayed:
		c.Delayed += n
	case Canceled:
		c.Canceled += n
	case Completed:
		c.Completed += n
	case Failed:
		c.Failed += n
	}
}
