// Package gate provides a blocking sliding-window admission gate for
// outbound operations.
//
// A [Gate] admits at most limit operations within any trailing window. A
// caller that finds the window full is suspended and re-evaluates
// periodically until a slot frees up or its context ends; it is never
// rejected for being over quota.
//
// # Usage
//
//	g, err := gate.New(30, time.Minute)
//	if err != nil { ... }
//
//	body, err := gate.Run(ctx, g, func(ctx context.Context) ([]byte, error) {
//		return callRemote(ctx)
//	})
//
// [Gate.Admit] reserves a slot without running anything. [Run] and [Gate.Do]
// reserve a slot, invoke the operation outside the gate's lock, and stamp the
// slot with the time the attempt finished, whether it succeeded or failed.
//
// # Ordering
//
// Waiting callers are not queued. Each one polls on its own and the first to
// re-evaluate after a slot expires takes it, so admission among waiters is
// not first-in first-out.
//
// # Cancellation
//
// A waiting caller whose context is cancelled returns an error matching
// [ErrWaitCanceled] and the context's cause, and leaves no trace in the
// gate's history. [WithMaxWait] bounds every wait; exceeding it returns an
// error matching both [ErrWaitCanceled] and [ErrWaitExceeded].
package gate
