package batch

import (
	"context"
	"errors"
)

// ErrQueueShutdown is returned for jobs that had not started when
// [Queue.Shutdown] was called.
var ErrQueueShutdown = errors.New("queue is shut down")

// WorkFunc is the signature for queued work.
type WorkFunc func(ctx context.Context) error
