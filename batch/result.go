package batch

import "context"

// Result represents an in-flight or completed job.
type Result struct {
	done   chan struct{}
	err    error
	cancel context.CancelFunc
}

// Done returns a channel that is closed when the job completes.
func (r *Result) Done() <-chan struct{} { return r.done }

// Err blocks until the job completes and returns its error.
func (r *Result) Err() error {
	<-r.done
	return r.err
}

// Cancel cancels the job's context.
func (r *Result) Cancel() {
	r.cancel()
}
